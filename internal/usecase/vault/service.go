package vault

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
)

// シークレットの封緘・開封。保存するのは常に封緘済みペイロード
type SecretCipher interface {
	Seal(plaintext string) (string, error)
	Open(payload string) (string, error)
}

// UUID等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// VaultUsecaseは保管庫のCRUD。すべての操作は所有者スコープで行う
type VaultUsecase struct {
	vault  repository.VaultRepository
	cipher SecretCipher
	idGen  IDGenerator
}

// DI
func NewVaultUsecase(vault repository.VaultRepository, cipher SecretCipher, idGen IDGenerator) *VaultUsecase {
	return &VaultUsecase{vault: vault, cipher: cipher, idGen: idGen}
}

// APIに返す1件分。パスワードはここで開封済み
type CredentialView struct {
	ID       string `json:"id"`
	Site     string `json:"site"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type DivisionView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Credentials []CredentialView `json:"credentials"`
}

// ListDivisions は自分の保管庫全体を返す
func (u *VaultUsecase) ListDivisions(ctx context.Context, userID string) ([]DivisionView, error) {
	divisions, err := u.vault.ListDivisions(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]DivisionView, 0, len(divisions))
	for _, d := range divisions {
		view := DivisionView{
			ID:          d.ID,
			Name:        d.Name,
			Credentials: make([]CredentialView, 0, len(d.Credentials)),
		}
		for _, c := range d.Credentials {
			password, err := u.cipher.Open(c.PasswordSealed)
			if err != nil {
				// 開封できないレコードは鍵違いか破損。リストごと失敗させる
				return nil, err
			}
			view.Credentials = append(view.Credentials, CredentialView{
				ID:       c.ID,
				Site:     c.Site,
				Username: c.Username,
				Password: password,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// CreateDivision は新しいグループを作る
func (u *VaultUsecase) CreateDivision(ctx context.Context, userID string, name string) (*DivisionView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	division := &model.Division{
		ID:     u.idGen.NewID(),
		UserID: userID,
		Name:   name,
	}
	if err := u.vault.CreateDivision(ctx, division); err != nil {
		if errors.Is(err, repository.ErrDivisionNameTaken) {
			return nil, ErrDivisionNameTaken
		}
		return nil, err
	}

	return &DivisionView{ID: division.ID, Name: division.Name, Credentials: []CredentialView{}}, nil
}

// DeleteDivision はグループを中身ごと消す
func (u *VaultUsecase) DeleteDivision(ctx context.Context, userID string, divisionID string) error {
	err := u.vault.DeleteDivision(ctx, userID, divisionID)
	if errors.Is(err, repository.ErrDivisionNotFound) {
		return ErrDivisionNotFound
	}
	return err
}

// AddCredential は認証情報を1件保存する。パスワードは封緘してから書く
func (u *VaultUsecase) AddCredential(ctx context.Context, userID string, divisionID string, site string, username string, password string) (*CredentialView, error) {
	if strings.TrimSpace(site) == "" || strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrMissingFields
	}

	// 所有者チェック。他人のdivisionには書けない
	if _, err := u.vault.FindDivision(ctx, userID, divisionID); err != nil {
		if errors.Is(err, repository.ErrDivisionNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, err
	}

	sealed, err := u.cipher.Seal(password)
	if err != nil {
		return nil, err
	}

	credential := &model.Credential{
		ID:             u.idGen.NewID(),
		DivisionID:     divisionID,
		Site:           site,
		Username:       username,
		PasswordSealed: sealed,
	}
	if err := u.vault.CreateCredential(ctx, credential); err != nil {
		return nil, err
	}

	return &CredentialView{
		ID:       credential.ID,
		Site:     credential.Site,
		Username: credential.Username,
		Password: password,
	}, nil
}

// UpdateCredential は1件を書き換える。パスワードが空なら据え置き
func (u *VaultUsecase) UpdateCredential(ctx context.Context, userID string, credentialID string, site string, username string, password string) (*CredentialView, error) {
	credential, err := u.findOwned(ctx, userID, credentialID)
	if err != nil {
		return nil, err
	}

	if site = strings.TrimSpace(site); site != "" {
		credential.Site = site
	}
	if username = strings.TrimSpace(username); username != "" {
		credential.Username = username
	}
	if password != "" {
		sealed, err := u.cipher.Seal(password)
		if err != nil {
			return nil, err
		}
		credential.PasswordSealed = sealed
	}

	if err := u.vault.UpdateCredential(ctx, credential); err != nil {
		return nil, err
	}

	plain, err := u.cipher.Open(credential.PasswordSealed)
	if err != nil {
		return nil, err
	}
	return &CredentialView{
		ID:       credential.ID,
		Site:     credential.Site,
		Username: credential.Username,
		Password: plain,
	}, nil
}

// DeleteCredential は1件削除
func (u *VaultUsecase) DeleteCredential(ctx context.Context, userID string, credentialID string) error {
	credential, err := u.findOwned(ctx, userID, credentialID)
	if err != nil {
		return err
	}
	return u.vault.DeleteCredential(ctx, credential.ID)
}

// credentialを引いて、親divisionの所有者が本人であることを確かめる
func (u *VaultUsecase) findOwned(ctx context.Context, userID string, credentialID string) (*model.Credential, error) {
	credential, err := u.vault.FindCredential(ctx, credentialID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}

	if _, err := u.vault.FindDivision(ctx, userID, credential.DivisionID); err != nil {
		if errors.Is(err, repository.ErrDivisionNotFound) {
			// 他人のものは「存在しない」のと同じ応答にする
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return credential, nil
}

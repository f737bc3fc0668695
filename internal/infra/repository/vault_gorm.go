package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type vaultGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewVaultRepository(db *gorm.DB) repo.VaultRepository {
	return &vaultGormRepository{db: db}
}

// 所有divisionをcredential込みで全部返す
func (r *vaultGormRepository) ListDivisions(ctx context.Context, userID string) ([]model.Division, error) {
	var divisions []model.Division

	err := r.db.WithContext(ctx).
		Preload("Credentials").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&divisions).Error

	if err != nil {
		return nil, err
	}

	return divisions, nil
}

// division作成。同一ユーザー内の同名はuniqueインデックスで弾く
func (r *vaultGormRepository) CreateDivision(ctx context.Context, division *model.Division) error {
	if err := r.db.WithContext(ctx).Create(division).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.ErrDivisionNameTaken
		}
		return err
	}
	return nil
}

// 所有者チェック込みで1件取得
func (r *vaultGormRepository) FindDivision(ctx context.Context, userID string, divisionID string) (*model.Division, error) {
	var d model.Division

	err := r.db.WithContext(ctx).
		Preload("Credentials").
		Where("id = ? AND user_id = ?", divisionID, userID).
		First(&d).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrDivisionNotFound
		}
		return nil, err
	}

	return &d, nil
}

// divisionを削除。credentialはON DELETE CASCADEで消える
func (r *vaultGormRepository) DeleteDivision(ctx context.Context, userID string, divisionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", divisionID, userID).
		Delete(&model.Division{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrDivisionNotFound
	}

	return nil
}

func (r *vaultGormRepository) CreateCredential(ctx context.Context, credential *model.Credential) error {
	return r.db.WithContext(ctx).Create(credential).Error
}

func (r *vaultGormRepository) FindCredential(ctx context.Context, credentialID string) (*model.Credential, error) {
	var c model.Credential

	err := r.db.WithContext(ctx).
		Where("id = ?", credentialID).
		First(&c).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrCredentialNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *vaultGormRepository) UpdateCredential(ctx context.Context, credential *model.Credential) error {
	return r.db.WithContext(ctx).Save(credential).Error
}

func (r *vaultGormRepository) DeleteCredential(ctx context.Context, credentialID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", credentialID).
		Delete(&model.Credential{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrCredentialNotFound
	}

	return nil
}

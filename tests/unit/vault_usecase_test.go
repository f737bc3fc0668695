package unit

import (
	"bytes"
	"context"
	"testing"
	"time"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/repository"
	vault "app/internal/usecase/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: VaultRepository
// =====================

type MockVaultRepository struct {
	mock.Mock
}

func (m *MockVaultRepository) ListDivisions(ctx context.Context, userID string) ([]model.Division, error) {
	args := m.Called(ctx, userID)
	d, _ := args.Get(0).([]model.Division)
	return d, args.Error(1)
}

func (m *MockVaultRepository) CreateDivision(ctx context.Context, division *model.Division) error {
	args := m.Called(ctx, division)
	return args.Error(0)
}

func (m *MockVaultRepository) FindDivision(ctx context.Context, userID string, divisionID string) (*model.Division, error) {
	args := m.Called(ctx, userID, divisionID)
	d, _ := args.Get(0).(*model.Division)
	return d, args.Error(1)
}

func (m *MockVaultRepository) DeleteDivision(ctx context.Context, userID string, divisionID string) error {
	args := m.Called(ctx, userID, divisionID)
	return args.Error(0)
}

func (m *MockVaultRepository) CreateCredential(ctx context.Context, credential *model.Credential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *MockVaultRepository) FindCredential(ctx context.Context, credentialID string) (*model.Credential, error) {
	args := m.Called(ctx, credentialID)
	c, _ := args.Get(0).(*model.Credential)
	return c, args.Error(1)
}

func (m *MockVaultRepository) UpdateCredential(ctx context.Context, credential *model.Credential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *MockVaultRepository) DeleteCredential(ctx context.Context, credentialID string) error {
	args := m.Called(ctx, credentialID)
	return args.Error(0)
}

func newVaultUC(t *testing.T) (*vault.VaultUsecase, *MockVaultRepository, *crypto.Cipher) {
	t.Helper()

	cipher, err := crypto.NewCipher(bytes.Repeat([]byte{0x22}, 32))
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}

	repo := new(MockVaultRepository)
	return vault.NewVaultUsecase(repo, cipher, &seqIDGenerator{}), repo, cipher
}

func TestVault_AddCredential_SealsPassword(t *testing.T) {
	ctx := context.Background()
	uc, repo, cipher := newVaultUC(t)

	repo.On("FindDivision", mock.Anything, "u-1", "div-1").Return(&model.Division{
		ID: "div-1", UserID: "u-1", Name: "Work",
	}, nil)

	repo.On("CreateCredential", mock.Anything, mock.MatchedBy(func(c *model.Credential) bool {
		if c.DivisionID != "div-1" || c.Site != "github.com" {
			return false
		}
		// 平文は保存されない
		if c.PasswordSealed == "hunter2!" {
			return false
		}
		opened, err := cipher.Open(c.PasswordSealed)
		return err == nil && opened == "hunter2!"
	})).Return(nil)

	view, err := uc.AddCredential(ctx, "u-1", "div-1", "github.com", "taro", "hunter2!")
	assert.NoError(t, err)
	assert.Equal(t, "hunter2!", view.Password)

	repo.AssertExpectations(t)
}

func TestVault_AddCredential_ForeignDivision(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newVaultUC(t)

	repo.On("FindDivision", mock.Anything, "u-1", "div-other").
		Return(nil, repository.ErrDivisionNotFound)

	_, err := uc.AddCredential(ctx, "u-1", "div-other", "github.com", "taro", "hunter2!")
	assert.ErrorIs(t, err, vault.ErrDivisionNotFound)
	repo.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything)
}

func TestVault_ListDivisions_OpensPasswords(t *testing.T) {
	ctx := context.Background()
	uc, repo, cipher := newVaultUC(t)

	sealed, err := cipher.Seal("s3cr3t")
	assert.NoError(t, err)

	repo.On("ListDivisions", mock.Anything, "u-1").Return([]model.Division{
		{
			ID: "div-1", UserID: "u-1", Name: "Work",
			Credentials: []model.Credential{
				{ID: "cred-1", DivisionID: "div-1", Site: "github.com", Username: "taro", PasswordSealed: sealed},
			},
			CreatedAt: time.Now(),
		},
	}, nil)

	views, err := uc.ListDivisions(ctx, "u-1")
	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "s3cr3t", views[0].Credentials[0].Password)
}

func TestVault_UpdateCredential_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	uc, repo, cipher := newVaultUC(t)

	sealed, _ := cipher.Seal("old-pass")
	repo.On("FindCredential", mock.Anything, "cred-1").Return(&model.Credential{
		ID: "cred-1", DivisionID: "div-1", Site: "github.com", Username: "taro", PasswordSealed: sealed,
	}, nil)
	// 親divisionが本人のものかをここで確かめる
	repo.On("FindDivision", mock.Anything, "u-2", "div-1").
		Return(nil, repository.ErrDivisionNotFound)

	_, err := uc.UpdateCredential(ctx, "u-2", "cred-1", "", "", "new-pass")
	assert.ErrorIs(t, err, vault.ErrCredentialNotFound)
	repo.AssertNotCalled(t, "UpdateCredential", mock.Anything, mock.Anything)
}

func TestVault_CreateDivision_DuplicateName(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newVaultUC(t)

	repo.On("CreateDivision", mock.Anything, mock.AnythingOfType("*model.Division")).
		Return(repository.ErrDivisionNameTaken)

	_, err := uc.CreateDivision(ctx, "u-1", "Work")
	assert.ErrorIs(t, err, vault.ErrDivisionNameTaken)
}

func TestVault_CreateDivision_EmptyName(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newVaultUC(t)

	_, err := uc.CreateDivision(ctx, "u-1", "   ")
	assert.ErrorIs(t, err, vault.ErrNameRequired)
	repo.AssertNotCalled(t, "CreateDivision", mock.Anything, mock.Anything)
}

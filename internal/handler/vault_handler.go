package handler

import (
	"errors"
	"net/http"

	"app/internal/logging"
	"app/internal/middleware"
	vault "app/internal/usecase/vault"

	"github.com/labstack/echo/v4"
)

// 保管庫（ダッシュボード）のハンドラ。全ルートがJWT必須
type VaultHandler struct {
	uc *vault.VaultUsecase
}

// DIコンストラクタ
func NewVaultHandler(uc *vault.VaultUsecase) *VaultHandler {
	return &VaultHandler{uc: uc}
}

type createDivisionRequest struct {
	Name string `json:"name"`
}

type credentialRequest struct {
	Site     string `json:"site"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// GET /api/dashboard
func (h *VaultHandler) GetVault(c echo.Context) error {
	views, err := h.uc.ListDivisions(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"divisions": views})
}

// POST /api/dashboard/divisions
func (h *VaultHandler) CreateDivision(c echo.Context) error {
	var req createDivisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("Division name required."))
	}

	view, err := h.uc.CreateDivision(c.Request().Context(), middleware.UserID(c), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, vault.ErrNameRequired):
			return c.JSON(http.StatusBadRequest, msg("Division name required."))
		case errors.Is(err, vault.ErrDivisionNameTaken):
			return c.JSON(http.StatusBadRequest, msg("Division already exists."))
		default:
			return serverError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, view)
}

// DELETE /api/dashboard/divisions/:id
func (h *VaultHandler) DeleteDivision(c echo.Context) error {
	err := h.uc.DeleteDivision(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, vault.ErrDivisionNotFound) {
			return c.JSON(http.StatusNotFound, msg("Division not found."))
		}
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, msg("Division deleted successfully."))
}

// POST /api/dashboard/divisions/:id/credentials
func (h *VaultHandler) AddCredential(c echo.Context) error {
	var req credentialRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("All fields are required."))
	}

	view, err := h.uc.AddCredential(c.Request().Context(), middleware.UserID(c),
		c.Param("id"), req.Site, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, vault.ErrMissingFields):
			return c.JSON(http.StatusBadRequest, msg("All fields are required."))
		case errors.Is(err, vault.ErrDivisionNotFound):
			return c.JSON(http.StatusNotFound, msg("Division not found."))
		default:
			return serverError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, view)
}

// PUT /api/dashboard/credentials/:id
func (h *VaultHandler) UpdateCredential(c echo.Context) error {
	var req credentialRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("All fields are required."))
	}

	view, err := h.uc.UpdateCredential(c.Request().Context(), middleware.UserID(c),
		c.Param("id"), req.Site, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, vault.ErrCredentialNotFound) {
			return c.JSON(http.StatusNotFound, msg("Credential not found."))
		}
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

// DELETE /api/dashboard/credentials/:id
func (h *VaultHandler) DeleteCredential(c echo.Context) error {
	err := h.uc.DeleteCredential(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, vault.ErrCredentialNotFound) {
			return c.JSON(http.StatusNotFound, msg("Credential not found."))
		}
		return serverError(c, err)
	}

	return c.JSON(http.StatusOK, msg("Credential deleted successfully."))
}

// 想定外のエラー。詳細はログにだけ出して、外には出さない
func serverError(c echo.Context, err error) error {
	logging.FromContext(c.Request().Context()).Error("internal error", "error", err)
	return c.JSON(http.StatusInternalServerError, msg("Server error."))
}

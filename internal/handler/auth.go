package handler

import (
	"net/http"
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/middleware"
	"github.com/mauropillox/chorilocal-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		// Always the same message and status: no credential oracle.
		c.JSON(http.StatusUnauthorized, apierror.New("Credenciales invalidas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token de refresco invalido"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout revokes the current access token's jti. Idempotent: revoking an
// already-revoked session still returns 200.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.ID == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Token sin identificador de sesion"))
		return
	}
	expiresAt := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	nueva, err := h.svc.RevocarToken(c.Request.Context(), claims.ID, expiresAt, claims.Username)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revocado": true, "nueva": nueva})
}

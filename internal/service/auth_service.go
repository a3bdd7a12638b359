package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/config"
	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrNoAutorizado is what every failed session check collapses into: the
// caller learns "not authorized", never which of the three facts (active
// account, role, non-revoked token) failed.
var ErrNoAutorizado = errors.New("no autorizado")

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// ValidarSesion checks the three session facts as one unit: account
	// active, role attached, jti not revoked. Any failure → ErrNoAutorizado.
	ValidarSesion(ctx context.Context, userID uuid.UUID, jti string) (*model.Usuario, error)

	// Session revocation store
	RevocarToken(ctx context.Context, jti string, expiresAt time.Time, username string) (bool, error)
	EstaRevocado(ctx context.Context, jti string) (bool, error)
	LimpiarExpirados(ctx context.Context) (int64, error)

	// Usuarios
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, id uuid.UUID) error
	ReactivarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	usuarios repository.UsuarioRepository
	tokens   repository.TokenRepository
	cfg      *config.Config
}

func NewAuthService(usuarios repository.UsuarioRepository, tokens repository.TokenRepository, cfg *config.Config) AuthService {
	return &authService{usuarios: usuarios, tokens: tokens, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.usuarios.FindByUsername(ctx, req.Username)
	if err != nil || !user.Activo {
		return nil, apierror.Validationf("Credenciales invalidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Validationf("Credenciales invalidas")
	}
	return s.emitirTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apierror.Validationf("Refresh token invalido o expirado")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.Validationf("Token mal formado")
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apierror.Validationf("Token mal formado")
	}

	// A revoked refresh token stays dead even if it has not expired.
	if jti, _ := claims["jti"].(string); jti != "" {
		if revocado, err := s.tokens.Exists(ctx, jti); err == nil && revocado {
			return nil, apierror.Validationf("Refresh token invalido o expirado")
		}
	}

	user, err := s.usuarios.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, apierror.Validationf("Usuario no encontrado o inactivo")
	}
	return s.emitirTokens(user)
}

func (s *authService) ValidarSesion(ctx context.Context, userID uuid.UUID, jti string) (*model.Usuario, error) {
	user, err := s.usuarios.FindByID(ctx, userID)
	if err != nil || !user.Activo || user.Rol == "" {
		return nil, ErrNoAutorizado
	}
	revocado, err := s.tokens.Exists(ctx, jti)
	if err != nil || revocado {
		return nil, ErrNoAutorizado
	}
	return user, nil
}

// ── Revocation list ──────────────────────────────────────────────────────────

func (s *authService) RevocarToken(ctx context.Context, jti string, expiresAt time.Time, username string) (bool, error) {
	if jti == "" {
		return false, apierror.Validationf("jti requerido")
	}
	inserted, err := s.tokens.Insert(ctx, &model.TokenRevocado{
		JTI:       jti,
		ExpiresAt: expiresAt,
		RevokedAt: time.Now().UTC(),
		Username:  username,
	})
	if err != nil {
		return false, apierror.Unexpected(err)
	}
	return inserted, nil
}

func (s *authService) EstaRevocado(ctx context.Context, jti string) (bool, error) {
	revocado, err := s.tokens.Exists(ctx, jti)
	if err != nil {
		return false, apierror.Unexpected(err)
	}
	return revocado, nil
}

func (s *authService) LimpiarExpirados(ctx context.Context) (int64, error) {
	count, err := s.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, apierror.Unexpected(err)
	}
	return count, nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	user := &model.Usuario{
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.usuarios.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apierror.Conflictf("El username %q ya existe", req.Username)
		}
		return nil, apierror.Unexpected(err)
	}
	return usuarioToResponse(user), nil
}

func (s *authService) ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	var users []model.Usuario
	var err error
	if incluirInactivos {
		users, err = s.usuarios.ListAll(ctx)
	} else {
		users, err = s.usuarios.List(ctx)
	}
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = *usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.usuarios.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Usuario no encontrado")
	}
	if req.Nombre != "" {
		user.Nombre = req.Nombre
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Rol != "" {
		user.Rol = req.Rol
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, apierror.Unexpected(err)
		}
		user.PasswordHash = string(hash)
	}
	if err := s.usuarios.Update(ctx, user); err != nil {
		return nil, apierror.Unexpected(err)
	}
	return usuarioToResponse(user), nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	if _, err := s.usuarios.FindByID(ctx, id); err != nil {
		return mapNotFound(err, "Usuario no encontrado")
	}
	return s.usuarios.SoftDelete(ctx, id)
}

func (s *authService) ReactivarUsuario(ctx context.Context, id uuid.UUID) error {
	if _, err := s.usuarios.FindByID(ctx, id); err != nil {
		return mapNotFound(err, "Usuario no encontrado")
	}
	return s.usuarios.Reactivar(ctx, id)
}

// ── Token emission ───────────────────────────────────────────────────────────

func (s *authService) emitirTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	access, err := s.generarToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	refresh, err := s.generarToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *usuarioToResponse(user),
	}, nil
}

func (s *authService) generarToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"rol":      user.Rol,
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) *dto.UsuarioResponse {
	return &dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nombre:   u.Nombre,
		Email:    u.Email,
		Rol:      u.Rol,
		Activo:   u.Activo,
	}
}

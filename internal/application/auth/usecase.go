package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// dummyHash se compara cuando el usuario no existe para que la respuesta tarde lo mismo.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3QZ8j5e3W6Dnq0aZ0PnU7G.")

// CredentialVerifier valida usuario y contraseña contra hashes bcrypt cargados de configuración.
type CredentialVerifier struct {
	users map[string]entity.User
}

// NewCredentialVerifier construye el verificador. Un username repetido reemplaza al anterior.
func NewCredentialVerifier(users ...entity.User) *CredentialVerifier {
	m := make(map[string]entity.User, len(users))
	for _, u := range users {
		if u.Username == "" {
			continue
		}
		if u.Role == "" {
			u.Role = entity.RoleVendedor
		}
		m[u.Username] = u
	}
	return &CredentialVerifier{users: m}
}

// Verify devuelve el usuario si la contraseña coincide. Usuario desconocido o
// contraseña errónea: ErrUnauthorized. Usuario deshabilitado: ErrForbidden.
func (v *CredentialVerifier) Verify(username, password string) (*entity.User, error) {
	u, ok := v.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !u.Active {
		return nil, domain.ErrForbidden
	}
	return &u, nil
}

// SessionService emite, valida y revoca sesiones JWT.
type SessionService struct {
	verifier    *CredentialVerifier
	revocations repository.RevocationStore
	jwtCfg      JWTConfig
}

// NewSessionService construye el servicio de sesiones.
func NewSessionService(verifier *CredentialVerifier, revocations repository.RevocationStore, jwtCfg JWTConfig) *SessionService {
	return &SessionService{verifier: verifier, revocations: revocations, jwtCfg: jwtCfg}
}

// Login verifica credenciales y genera el token.
func (s *SessionService) Login(_ context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.verifier.Verify(in.Username, in.Password)
	if err != nil {
		return nil, err
	}
	token, claims, err := jwt.Generate(s.jwtCfg.Secret, user.Username, user.Role, s.jwtCfg.Issuer, s.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      dto.UserResponse{Username: user.Username, Role: user.Role},
	}, nil
}

// Validate verifica el token y que no haya sido revocado.
func (s *SessionService) Validate(ctx context.Context, token string) (*entity.Session, error) {
	claims, err := jwt.Parse(s.jwtCfg.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return toSession(claims), nil
}

// Logout revoca el token hasta su vencimiento. Un token ya revocado no es error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	claims, err := jwt.Parse(s.jwtCfg.Secret, token)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}

func toSession(c *jwt.Claims) *entity.Session {
	s := &entity.Session{TokenID: c.ID, Username: c.Subject, Role: c.Role}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

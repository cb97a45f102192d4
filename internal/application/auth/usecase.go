package auth

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
	"github.com/chabs-app/chabs-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Session sesión activa creada en el login y destruida en el logout.
type Session struct {
	UserID    string
	Email     string
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthUseCase casos de uso de autenticación: registro, login y logout.
// Las sesiones activas se llevan en memoria; el token JWT sigue siendo
// la credencial que viaja en cada request.
type AuthUseCase struct {
	users  repository.Repository[*entity.User]
	jwtCfg JWTConfig

	mu       sync.Mutex
	sessions map[string]Session // userID -> sesión
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.Repository[*entity.User], jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{
		users:    users,
		jwtCfg:   jwtCfg,
		sessions: make(map[string]Session),
	}
}

// Register crea un usuario. El primer usuario del sistema se crea como admin
// sin autenticación (bootstrap); después solo un admin puede registrar.
// Devuelve ErrEmailAlreadyExists si el email ya está tomado.
func (uc *AuthUseCase) Register(in dto.RegisterRequest, callerRole string) (*dto.UserResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrValidation
	}
	existing, err := uc.users.List()
	if err != nil {
		return nil, err
	}
	role := in.Role
	if len(existing) == 0 {
		// Bootstrap: el primer usuario siempre es admin.
		role = entity.RoleAdmin
	} else if callerRole != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if role == "" {
		role = entity.RoleSales
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		name = in.Email
	}
	user := &entity.User{
		Email:        in.Email,
		Name:         name,
		Role:         role,
		Status:       "active",
		PasswordHash: string(hash),
	}
	stored, err := uc.users.Create(user)
	if err != nil {
		return nil, err
	}
	out := dto.ToUserResponse(stored)
	return &out, nil
}

// Login verifica email/password, genera JWT, registra la sesión y retorna
// token + usuario.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.findByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	expires := now.Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute)
	uc.mu.Lock()
	uc.sessions[user.ID] = Session{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	uc.mu.Unlock()
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      dto.ToUserResponse(user),
	}, nil
}

// Logout destruye la sesión del usuario. Es idempotente.
func (uc *AuthUseCase) Logout(userID string) {
	uc.mu.Lock()
	delete(uc.sessions, userID)
	uc.mu.Unlock()
}

// ActiveSessions sesiones vigentes (las expiradas se descartan al consultar).
func (uc *AuthUseCase) ActiveSessions() []Session {
	now := time.Now()
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]Session, 0, len(uc.sessions))
	for id, s := range uc.sessions {
		if now.After(s.ExpiresAt) {
			delete(uc.sessions, id)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (uc *AuthUseCase) findByEmail(email string) (*entity.User, error) {
	users, err := uc.users.List()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chabs-app/chabs-api/internal/application/auth"
	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/storage/local"
	"github.com/chabs-app/chabs-api/internal/storage/recordstore"
	"github.com/chabs-app/chabs-api/pkg/logger"
)

func newAuthUseCase(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	store, err := recordstore.New(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	p := local.NewProvider(store, logger.Nop())
	return auth.NewAuthUseCase(p.Users(), auth.JWTConfig{
		Secret:     "test-secret",
		ExpMinutes: 60,
		Issuer:     "chabs-api-test",
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Register
// ──────────────────────────────────────────────────────────────────────────────

// El primer usuario se registra sin autenticación y queda como admin,
// sin importar el rol que pida.
func TestRegister_PrimerUsuarioEsAdmin(t *testing.T) {
	uc := newAuthUseCase(t)

	out, err := uc.Register(dto.RegisterRequest{
		Email:    "dueño@chabs.cl",
		Password: "clave-segura",
		Name:     "Dueño",
		Role:     entity.RoleSales, // ignorado en el bootstrap
	}, "")
	require.NoError(t, err)

	assert.Equal(t, entity.RoleAdmin, out.Role, "el primer usuario siempre es admin")
	assert.NotEmpty(t, out.ID)
}

// Con usuarios existentes, solo un admin puede registrar nuevos usuarios.
func TestRegister_SoloAdminDespuesDelBootstrap(t *testing.T) {
	uc := newAuthUseCase(t)
	_, err := uc.Register(dto.RegisterRequest{Email: "admin@chabs.cl", Password: "clave"}, "")
	require.NoError(t, err)

	_, err = uc.Register(dto.RegisterRequest{Email: "otro@chabs.cl", Password: "clave"}, entity.RoleSales)
	assert.ErrorIs(t, err, domain.ErrForbidden, "un no-admin no puede registrar")

	_, err = uc.Register(dto.RegisterRequest{Email: "otro@chabs.cl", Password: "clave"}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden, "sin token tampoco")

	out, err := uc.Register(dto.RegisterRequest{Email: "otro@chabs.cl", Password: "clave"}, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSales, out.Role, "sin rol explícito el nuevo usuario queda como sales")
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc := newAuthUseCase(t)
	_, err := uc.Register(dto.RegisterRequest{Email: "admin@chabs.cl", Password: "clave"}, "")
	require.NoError(t, err)

	_, err = uc.Register(dto.RegisterRequest{Email: "admin@chabs.cl", Password: "otra"}, entity.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_CamposObligatorios(t *testing.T) {
	uc := newAuthUseCase(t)
	_, err := uc.Register(dto.RegisterRequest{Email: "", Password: "clave"}, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Register(dto.RegisterRequest{Email: "a@b.cl", Password: ""}, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Login / Logout
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidas(t *testing.T) {
	uc := newAuthUseCase(t)
	reg, err := uc.Register(dto.RegisterRequest{Email: "admin@chabs.cl", Password: "clave-segura"}, "")
	require.NoError(t, err)

	out, err := uc.Login(dto.LoginRequest{Email: "admin@chabs.cl", Password: "clave-segura"})
	require.NoError(t, err)

	assert.NotEmpty(t, out.Token)
	assert.Equal(t, reg.ID, out.User.ID)
	assert.Equal(t, entity.RoleAdmin, out.User.Role)

	sessions := uc.ActiveSessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, reg.ID, sessions[0].UserID)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	uc := newAuthUseCase(t)
	_, err := uc.Register(dto.RegisterRequest{Email: "admin@chabs.cl", Password: "clave-segura"}, "")
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "admin@chabs.cl", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc := newAuthUseCase(t)
	_, err := uc.Login(dto.LoginRequest{Email: "nadie@chabs.cl", Password: "clave"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogout_Idempotente(t *testing.T) {
	uc := newAuthUseCase(t)
	reg, err := uc.Register(dto.RegisterRequest{Email: "admin@chabs.cl", Password: "clave"}, "")
	require.NoError(t, err)
	_, err = uc.Login(dto.LoginRequest{Email: "admin@chabs.cl", Password: "clave"})
	require.NoError(t, err)

	uc.Logout(reg.ID)
	assert.Empty(t, uc.ActiveSessions())

	// Un segundo logout no falla ni altera el estado.
	uc.Logout(reg.ID)
	assert.Empty(t, uc.ActiveSessions())
}

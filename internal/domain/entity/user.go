package entity

import (
	"fmt"
	"time"

	"github.com/chabs-app/chabs-api/internal/domain"
)

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleWarehouse = "warehouse"
	RoleSales     = "sales"
)

// User representa un usuario del sistema.
// PasswordHash (bcrypt) nunca sale de la capa de dominio: las respuestas HTTP
// usan dto.UserResponse, que no lo incluye.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`   // admin, warehouse, sales
	Status       string    `json:"status"` // active, inactive
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) RecordID() string      { return u.ID }
func (u *User) SetRecordID(id string) { u.ID = id }

func (u *User) Touch(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// ValidRole verifica que el rol sea uno de los reconocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleWarehouse || role == RoleSales
}

// Validate reglas de negocio del usuario.
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("%w: email es requerido", domain.ErrValidation)
	}
	if !ValidRole(u.Role) {
		return fmt.Errorf("%w: rol desconocido: %q", domain.ErrValidation, u.Role)
	}
	return nil
}

package entity

import (
	"fmt"
	"time"

	"github.com/chabs-app/chabs-api/internal/domain"
)

// Supplier representa un proveedor. ProductIDs referencia productos por ID, nunca embebidos.
type Supplier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	ProductIDs  []string  `json:"product_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Supplier) RecordID() string      { return s.ID }
func (s *Supplier) SetRecordID(id string) { s.ID = id }

func (s *Supplier) Touch(now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
}

// Validate reglas de negocio del proveedor.
func (s *Supplier) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name es requerido", domain.ErrValidation)
	}
	return nil
}

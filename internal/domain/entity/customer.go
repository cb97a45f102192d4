package entity

import (
	"fmt"
	"time"

	"github.com/chabs-app/chabs-api/internal/domain"
)

// Customer representa un cliente (órdenes y cotizaciones lo referencian por ID).
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"` // requerido
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) RecordID() string      { return c.ID }
func (c *Customer) SetRecordID(id string) { c.ID = id }

func (c *Customer) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// Validate reglas de negocio del cliente.
func (c *Customer) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name es requerido", domain.ErrValidation)
	}
	return nil
}

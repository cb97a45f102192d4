package dto

// CreateSupplierRequest datos para crear un proveedor.
type CreateSupplierRequest struct {
	Name        string   `json:"name"`
	ContactName string   `json:"contact_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Address     string   `json:"address"`
	ProductIDs  []string `json:"product_ids"`
}

// UpdateSupplierRequest actualización parcial de un proveedor.
type UpdateSupplierRequest struct {
	Name        *string  `json:"name,omitempty"`
	ContactName *string  `json:"contact_name,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Address     *string  `json:"address,omitempty"`
	ProductIDs  []string `json:"product_ids,omitempty"`
}

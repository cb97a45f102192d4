package repository

// Repository define el puerto CRUD genérico de una colección (DIP).
// T es un puntero a entidad (*entity.Product, *entity.Customer, ...).
//
// Semántica compartida por todos los proveedores:
//   - List: orden de inserción, estable.
//   - GetByID: (nil, nil) si no existe.
//   - Create: asigna ID si el borrador no trae uno y devuelve la entidad almacenada.
//   - Update: merge superficial del patch JSON sobre el registro existente
//     (los campos ausentes del patch se preservan); domain.ErrNotFound si no existe.
//   - Delete: domain.ErrNotFound si no existe, también en una segunda llamada.
type Repository[T any] interface {
	List() ([]T, error)
	GetByID(id string) (T, error)
	Create(e T) (T, error)
	Update(id string, patch []byte) (T, error)
	Delete(id string) error
}

package domain

import "errors"

// Errores de dominio y de almacenamiento (sin dependencias externas).
//
// Los errores de regla de negocio (ErrNotFound, ErrDuplicateSKU, ErrValidation)
// siempre llegan al llamador sin transformar, en cualquier modo de almacenamiento.
// ErrRemoteUnavailable nunca sale de una mutación del coordinador híbrido: solo
// aparece en llamadas directas al proveedor remoto (modo "cloud").
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrDuplicateSKU       = errors.New("sku duplicado")
	ErrValidation         = errors.New("entrada inválida")
	ErrStorageWrite       = errors.New("escritura en el medio local fallida")
	ErrStorageUnavailable = errors.New("medio de almacenamiento no disponible")
	ErrRemoteUnavailable  = errors.New("backend remoto no disponible")
	ErrInvalidBackup      = errors.New("respaldo inválido o incompatible")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

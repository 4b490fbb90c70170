package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidKind        = errors.New("tipo de movimiento desconocido")
	ErrInvalidQuantity    = errors.New("cantidad inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrNoOpMovement       = errors.New("el movimiento no produce ningún cambio")
	ErrStorage            = errors.New("fallo de almacenamiento")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrUnauthorized       = errors.New("no autorizado")
)

// InsufficientStockError detalla un rechazo por stock insuficiente: el caller
// recibe el saldo actual y el delta solicitado para decidir si reintenta.
type InsufficientStockError struct {
	ComponentID string
	Kind        string
	Current     int64
	Requested   int64 // delta con signo que se intentó aplicar
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: componente %s, saldo actual %d, delta solicitado %d",
		e.ComponentID, e.Current, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StorageError envuelve un fallo del almacén subyacente preservando la causa.
// errors.Is(err, ErrStorage) identifica la categoría; Unwrap expone la causa.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IsClientError indica si el error se debe a datos del caller (no reintentar).
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrNoOpMovement) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrNotFound)
}

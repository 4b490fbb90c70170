package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementKindEntrada    = "entrada"    // ingreso manual
	MovementKindSalida     = "salida"     // egreso manual
	MovementKindAjuste     = "ajuste"     // fija un saldo objetivo; se guarda el delta
	MovementKindCompra     = "compra"     // entrada por compra recibida
	MovementKindConsumo    = "consumo"    // salida por consumo en mantenimiento
	MovementKindDevolucion = "devolucion" // reingreso por devolución
)

// ValidKind indica si el tipo de movimiento es conocido.
func ValidKind(kind string) bool {
	switch kind {
	case MovementKindEntrada, MovementKindSalida, MovementKindAjuste,
		MovementKindCompra, MovementKindConsumo, MovementKindDevolucion:
		return true
	}
	return false
}

// KindSign devuelve el signo del delta para el tipo: +1 suma stock, -1 resta.
// Para ajuste devuelve 0: el delta se calcula contra el saldo objetivo.
func KindSign(kind string) int {
	switch kind {
	case MovementKindEntrada, MovementKindCompra, MovementKindDevolucion:
		return 1
	case MovementKindSalida, MovementKindConsumo:
		return -1
	}
	return 0
}

// Movement es el registro inmutable de un cambio en el stock de un componente.
// Nunca se actualiza ni se borra; las correcciones se hacen con un nuevo ajuste.
// Invariante: BalanceAfter = BalanceBefore + Quantity, y BalanceAfter >= 0.
type Movement struct {
	ID            int64
	ComponentID   string
	Kind          string
	Quantity      int64 // delta con signo realmente aplicado (nunca cero)
	BalanceBefore int64
	BalanceAfter  int64
	UnitPrice     *decimal.Decimal // opcional, para valorización (compras)
	Reason        string
	Actor         string
	Reference     string // documento externo, ej. ID de compra
	CreatedAt     time.Time
}

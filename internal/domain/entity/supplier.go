package entity

import "time"

// Supplier representa un proveedor de repuestos.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string // NIT / RUT
	Email     string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

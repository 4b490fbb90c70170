package entity

import "time"

// Machine representa una máquina o equipo agrícola (tractor, cosechadora, etc.).
type Machine struct {
	ID           string
	Name         string
	Brand        string
	Model        string
	SerialNumber string
	Year         int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

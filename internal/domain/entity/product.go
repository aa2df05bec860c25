package entity

import "time"

// Product representa un medicamento del catálogo.
// El stock no vive aquí: se deriva de sus lotes activos en cada consulta.
type Product struct {
	ID              string
	Name            string
	Description     string
	ActiveSubstance string // principio activo
	Laboratory      string
	CategoryID      string
	MinStock        int // umbral de stock mínimo (BAJO por debajo)
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

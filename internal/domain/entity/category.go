package entity

import "time"

// Category agrupa medicamentos (analgésicos, antibióticos...).
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

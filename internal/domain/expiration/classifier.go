// Package expiration clasifica fechas de vencimiento en niveles de riesgo.
package expiration

import (
	"math"
	"time"
)

// Status nivel de riesgo por vencimiento.
type Status string

const (
	StatusExpired  Status = "VENCIDO"
	StatusCritical Status = "CRITICO"
	StatusWarning  Status = "ADVERTENCIA"
	StatusNormal   Status = "NORMAL"
	StatusUnknown  Status = "DESCONOCIDO"
)

// Umbrales en días restantes.
const (
	CriticalDays = 30
	WarningDays  = 90
)

const day = 24 * time.Hour

// DaysUntil devuelve floor((expiration - now) / 1 día). Negativo si ya venció.
func DaysUntil(expiration, now time.Time) int {
	return int(math.Floor(float64(expiration.Sub(now)) / float64(day)))
}

// Classify asigna el nivel de riesgo. Sin fecha devuelve StatusUnknown.
//
//	d < 0        VENCIDO
//	0 <= d < 30  CRITICO
//	30 <= d < 90 ADVERTENCIA
//	d >= 90      NORMAL
func Classify(expiration *time.Time, now time.Time) Status {
	if expiration == nil || expiration.IsZero() {
		return StatusUnknown
	}
	d := DaysUntil(*expiration, now)
	switch {
	case d < 0:
		return StatusExpired
	case d < CriticalDays:
		return StatusCritical
	case d < WarningDays:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// IsExpired indica si la fecha ya pasó (días restantes negativos).
func IsExpired(expiration, now time.Time) bool {
	return DaysUntil(expiration, now) < 0
}

// IsNearExpiration indica si vence dentro de los próximos `days` días sin estar vencido.
func IsNearExpiration(expiration, now time.Time, days int) bool {
	d := DaysUntil(expiration, now)
	return d >= 0 && d < days
}

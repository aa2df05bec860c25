package expiration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Farmacia-api/internal/domain/expiration"
)

var now = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func daysFromNow(d int) *time.Time {
	t := now.Add(time.Duration(d) * 24 * time.Hour)
	return &t
}

func TestClassify_Limites(t *testing.T) {
	cases := []struct {
		name string
		exp  *time.Time
		want expiration.Status
	}{
		{"ayer", daysFromNow(-1), expiration.StatusExpired},
		{"hoy", daysFromNow(0), expiration.StatusCritical},
		{"29 días", daysFromNow(29), expiration.StatusCritical},
		{"30 días", daysFromNow(30), expiration.StatusWarning},
		{"89 días", daysFromNow(89), expiration.StatusWarning},
		{"90 días", daysFromNow(90), expiration.StatusNormal},
		{"un año", daysFromNow(365), expiration.StatusNormal},
		{"sin fecha", nil, expiration.StatusUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, expiration.Classify(tc.exp, now))
		})
	}
}

func TestClassify_FraccionDeDiaRedondeaHaciaAbajo(t *testing.T) {
	// Una hora antes del vencimiento aún quedan 0 días completos → CRITICO.
	exp := now.Add(time.Hour)
	assert.Equal(t, expiration.StatusCritical, expiration.Classify(&exp, now))

	// Una hora después del vencimiento: floor(-1/24) = -1 → VENCIDO.
	past := now.Add(-time.Hour)
	assert.Equal(t, expiration.StatusExpired, expiration.Classify(&past, now))
}

func TestClassify_Determinista(t *testing.T) {
	exp := daysFromNow(45)
	assert.Equal(t, expiration.Classify(exp, now), expiration.Classify(exp, now))
}

func TestIsNearExpiration(t *testing.T) {
	assert.True(t, expiration.IsNearExpiration(*daysFromNow(10), now, 30))
	assert.False(t, expiration.IsNearExpiration(*daysFromNow(30), now, 30))
	assert.False(t, expiration.IsNearExpiration(*daysFromNow(-2), now, 30), "vencido no cuenta como próximo")
	assert.True(t, expiration.IsExpired(*daysFromNow(-2), now))
}

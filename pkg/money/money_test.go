package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatBs(t *testing.T) {
	assert.Equal(t, "Bs 7,50", FormatBs(decimal.RequireFromString("7.5")))
	assert.Equal(t, "Bs 0,00", FormatBs(decimal.Zero))
	assert.Equal(t, "Bs 0,69", FormatBs(decimal.RequireFromString("0.686")))
}

func TestFormatBs_Miles(t *testing.T) {
	got := FormatBs(decimal.RequireFromString("12345.5"))
	assert.True(t, strings.HasPrefix(got, Prefix), got)
	assert.Contains(t, got, "12.345")
	assert.True(t, strings.HasSuffix(got, ",50"), got)
}

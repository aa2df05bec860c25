package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, issued, err := Generate("secreto", "ana", "admin", "farmacia-api", 60)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "farmacia-api", claims.Issuer)
}

func TestGenerate_JTIUnico(t *testing.T) {
	_, a, err := Generate("secreto", "ana", "admin", "", 60)
	require.NoError(t, err)
	_, b, err := Generate("secreto", "ana", "admin", "", 60)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, _, err := Generate("secreto", "ana", "admin", "", 60)
	require.NoError(t, err)
	_, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, _, err := Generate("secreto", "ana", "admin", "", -5)
	require.NoError(t, err)
	_, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, _, err := Generate("", "ana", "admin", "", 60)
	assert.Error(t, err)
	_, err = Parse("", "x.y.z")
	assert.Error(t, err)
}

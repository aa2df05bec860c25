package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/cart"
)

func TestCart_AddFusionaLineas(t *testing.T) {
	c := cart.New("caja1")
	require.NoError(t, c.Add("p1", 2))
	require.NoError(t, c.Add("p2", 1))
	require.NoError(t, c.Add("p1", 3))

	require.Len(t, c.Items, 2)
	assert.Equal(t, cart.Item{ProductID: "p1", Quantity: 5}, c.Items[0])
	assert.Equal(t, cart.Item{ProductID: "p2", Quantity: 1}, c.Items[1])
	assert.Equal(t, 6, c.Units())
}

func TestCart_AddCantidadInvalida(t *testing.T) {
	c := cart.New("caja1")
	assert.ErrorIs(t, c.Add("p1", 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.Add("", 1), domain.ErrInvalidInput)
	assert.True(t, c.IsEmpty())
}

func TestCart_TopeDeUnidadesPorLinea(t *testing.T) {
	c := cart.New("caja1")
	require.NoError(t, c.Add("p1", cart.MaxLineQuantity-1))

	assert.ErrorIs(t, c.Add("p1", 2), domain.ErrInvalidInput)
	assert.Equal(t, cart.MaxLineQuantity-1, c.Items[0].Quantity, "la línea no cambia si se rechaza la fusión")

	require.NoError(t, c.Add("p1", 1))
	assert.Equal(t, cart.MaxLineQuantity, c.Items[0].Quantity)

	assert.ErrorIs(t, c.Add("p2", cart.MaxLineQuantity+1), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.SetQuantity("p1", cart.MaxLineQuantity+1), domain.ErrInvalidInput)

	big := &cart.Cart{Owner: "api", Items: []cart.Item{{ProductID: "p1", Quantity: cart.MaxLineQuantity + 1}}}
	assert.ErrorIs(t, big.Validate(), domain.ErrInvalidInput)
}

func TestCart_SetQuantityYRemove(t *testing.T) {
	c := cart.New("caja1")
	require.NoError(t, c.Add("p1", 2))
	require.NoError(t, c.Add("p2", 4))

	require.NoError(t, c.SetQuantity("p2", 7))
	assert.Equal(t, 7, c.Items[1].Quantity)

	require.NoError(t, c.SetQuantity("p1", 0))
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)

	assert.ErrorIs(t, c.SetQuantity("p9", 1), domain.ErrNotFound)
	assert.ErrorIs(t, c.SetQuantity("p2", -1), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.Remove("p9"), domain.ErrNotFound)

	require.NoError(t, c.Remove("p2"))
	assert.True(t, c.IsEmpty())
}

func TestCart_ClearYValidate(t *testing.T) {
	c := cart.New("caja1")
	assert.ErrorIs(t, c.Validate(), domain.ErrInvalidInput)

	require.NoError(t, c.Add("p1", 1))
	assert.NoError(t, c.Validate())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Items)

	bad := &cart.Cart{Items: []cart.Item{{ProductID: "p1", Quantity: -2}}}
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidInput)
}

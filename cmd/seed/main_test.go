package main

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

const sampleCSV = `producto;principio_activo;laboratorio;categoria;stock_minimo;lote;vencimiento;cantidad;costo;precio
Paracetamol 500mg;Paracetamol;Bayer;Analgésicos;10;P-001;2030-03-31;20;1,50;3,00
Paracetamol 500mg;Paracetamol;Bayer;Analgésicos;10;P-002;15/06/2030;12;1,60;3,00
Amoxicilina 500mg;Amoxicilina;Genfar;Antibióticos;5;A-100;2030-01-10;8;1.250,00;2.000,50
`

// ──────────────────────────────────────────────────────────────────────────────
// Lectura del CSV
// ──────────────────────────────────────────────────────────────────────────────

func TestParseRows_SeparadorPuntoYComa(t *testing.T) {
	rows, err := parseRows(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Paracetamol 500mg", rows[0].Product)
	assert.Equal(t, "Analgésicos", rows[0].Category)
	assert.Equal(t, 10, rows[0].MinStock)
	assert.Equal(t, time.Date(2030, 3, 31, 0, 0, 0, 0, time.UTC), rows[0].Expiration)
	assert.True(t, decimal.RequireFromString("1.5").Equal(rows[0].UnitCost))

	assert.Equal(t, time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC), rows[1].Expiration)
	assert.True(t, decimal.RequireFromString("1250").Equal(rows[2].UnitCost))
	assert.True(t, decimal.RequireFromString("2000.5").Equal(rows[2].UnitPrice))
}

func TestParseRows_SeparadorComa(t *testing.T) {
	csv := "producto,principio_activo,laboratorio,categoria,stock_minimo,lote,vencimiento,cantidad,costo,precio\n" +
		"Loratadina,Loratadina,MK,,3,L-1,2026-02-01,4,2.5,5\n"
	rows, err := parseRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Category)
	assert.True(t, decimal.RequireFromString("2.5").Equal(rows[0].UnitCost))
}

func TestParseRows_ErrorIndicaLinea(t *testing.T) {
	csv := "producto;principio_activo;laboratorio;categoria;stock_minimo;lote;vencimiento;cantidad;costo;precio\n" +
		"Loratadina;Loratadina;MK;;3;L-1;mañana;4;2;5\n"
	_, err := parseRows(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "línea 2")
	assert.Contains(t, err.Error(), "vencimiento")
}

func TestParseRows_SinFilas(t *testing.T) {
	_, err := parseRows(strings.NewReader("producto;lote\n"))
	assert.Error(t, err)
}

func TestDecodeCharset_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("Antibióticos;Niño")
	require.NoError(t, err)

	out, err := io.ReadAll(decodeCharset([]byte(latin1)))
	require.NoError(t, err)
	assert.Equal(t, "Antibióticos;Niño", string(out))
}

func TestDecodeCharset_QuitaBOM(t *testing.T) {
	out, err := io.ReadAll(decodeCharset([]byte("\xef\xbb\xbfproducto")))
	require.NoError(t, err)
	assert.Equal(t, "producto", string(out))
}

// ──────────────────────────────────────────────────────────────────────────────
// Importación
// ──────────────────────────────────────────────────────────────────────────────

func newTestImporter() (*importer, *memory.MovementRepo) {
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	categories := memory.NewCategoryRepository(s)
	lots := memory.NewLotRepository(s)
	movs := memory.NewMovementRepository(s)
	return &importer{
		products:   catalog.NewProductUseCase(products, categories, lots),
		categories: catalog.NewCategoryUseCase(categories),
		lots:       inventory.NewLotUseCase(memory.NewTxRunner(s), lots, products, movs, nil, nil),
		log:        logger.Nop(),
	}, movs
}

func TestImport_CreaCatalogoYLotes(t *testing.T) {
	imp, movs := newTestImporter()
	rows, err := parseRows(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	sum, err := imp.Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, summary{Products: 2, Lots: 3}, sum)

	entradas, err := movs.List(context.Background(), entity.MovementFilter{Kind: entity.MovementEntrada}, 0)
	require.NoError(t, err)
	assert.Len(t, entradas, 3)

	list, err := imp.products.List(context.Background(), dto.ProductQuery{Q: "paracetamol"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 32, list.Items[0].Available)

	cats, err := imp.categories.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}

func TestImport_RepetirOmiteLotesCargados(t *testing.T) {
	imp, movs := newTestImporter()
	rows, err := parseRows(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	_, err = imp.Import(context.Background(), rows)
	require.NoError(t, err)
	sum, err := imp.Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, summary{Skipped: 3}, sum)

	entradas, err := movs.List(context.Background(), entity.MovementFilter{Kind: entity.MovementEntrada}, 0)
	require.NoError(t, err)
	assert.Len(t, entradas, 3)
}

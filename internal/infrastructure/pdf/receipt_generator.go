// Package pdf genera el comprobante imprimible de una venta con Maroto v2.
//
// Layout de la página A5:
//
//	┌──────────────────────────────────────────────┐
//	│  Farmacia           │  COMPROBANTE N° + Fecha │
//	│  Vendedor                                      │
//	│  ────────────────────────────────────────────  │
//	│  Cant | Producto | Lote | Vence | P.Unit | Sub │
//	│  ────────────────────────────────────────────  │
//	│  TOTAL                                         │
//	│  Advertencias (lotes vencidos)                 │
//	│  QR con el ID de la venta                      │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/pkg/money"
)

var _ sales.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarning = &props.Color{Red: 180, Green: 60, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa sales.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct {
	storeName string
}

// NewReceiptGenerator construye el generador; storeName encabeza el comprobante.
func NewReceiptGenerator(storeName string) *ReceiptGenerator {
	return &ReceiptGenerator{storeName: storeName}
}

// RenderSaleReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) RenderSaleReceipt(_ context.Context, sale *entity.Sale) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Comprobante de venta", true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(sale)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(sale))

	if len(sale.Warnings) > 0 {
		m.AddRows(warningRows(sale.Warnings)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: farmacia y vendedor (izq), número y fecha (der).
func (g *ReceiptGenerator) headerRow(sale *entity.Sale) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("Atendido por: "+nonEmpty(sale.SoldBy, "—"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+receiptNumber(sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 6,
			}),
			text.New(sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(6).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 4, align.Left),
		h("Lote", 2, align.Left),
		h("Vence", 2, align.Center),
		h("P. Unit.", 1, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

// tableDetailRows: una fila por lote consumido, agrupadas por línea de la venta.
func tableDetailRows(sale *entity.Sale) []core.Row {
	out := make([]core.Row, 0, len(sale.Lines))
	for _, ln := range sale.Lines {
		for i, it := range ln.Plan.Items {
			name := ""
			if i == 0 {
				name = ln.ProductName
			}
			subtotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			out = append(out, row.New(5).Add(
				col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 7, Align: align.Center})),
				col.New(4).Add(text.New(name, props.Text{Size: 7, Align: align.Left})),
				col.New(2).Add(text.New(it.LotCode, props.Text{Size: 7, Align: align.Left})),
				col.New(2).Add(text.New(it.Expiration.Format("02/01/2006"), props.Text{Size: 7, Align: align.Center})),
				col.New(1).Add(text.New(it.UnitPrice.StringFixed(2), props.Text{Size: 7, Align: align.Right})),
				col.New(2).Add(text.New(money.FormatBs(subtotal), props.Text{Size: 7, Align: align.Right})),
			))
		}
	}
	return out
}

func totalRow(sale *entity.Sale) core.Row {
	return row.New(10).Add(
		col.New(7),
		col.New(2).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
		col.New(3).Add(text.New(money.FormatBs(sale.Revenue), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
	)
}

func warningRows(warnings []string) []core.Row {
	out := []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("ADVERTENCIAS", props.Text{
			Style: fontstyle.Bold, Size: 7, Color: colorWarning, Top: 1,
		}))),
	}
	for _, w := range warnings {
		out = append(out, row.New(4).Add(col.New(12).Add(text.New("• "+w, props.Text{
			Size: 6.5, Color: colorWarning, Left: 2,
		}))))
	}
	return out
}

// footerRow: QR con el ID completo de la venta para buscarla en el kardex.
func footerRow(sale *entity.Sale) core.Row {
	return row.New(30).Add(
		col.New(4).Add(code.NewQr(sale.ID, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New("Venta "+sale.ID, props.Text{Size: 6.5, Color: colorGray, Top: 4, Left: 3}),
			text.New("Conserve este comprobante. Los medicamentos no tienen devolución.", props.Text{
				Size: 7, Top: 12, Left: 3,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// receiptNumber primeros 8 caracteres del ID en mayúsculas.
func receiptNumber(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

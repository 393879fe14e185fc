// Package pdf genera el documento imprimible de la orden de compra con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: ORDEN DE COMPRA + N° │  Estado + Fechas            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR: Código + Nombre                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Descripción | Cant | P.Unit | Total | Recibido │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuesto / Descuento / TOTAL            │
//	│  FOOTER: QR con el número (lectura en bodega) + notas        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
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

	"github.com/jhoicas/Mantenimiento-api/internal/application/procurement"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ procurement.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa procurement.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string // encabezado y autor del documento
}

// NewMarotoPDFGenerator construye el generador. company aparece en el encabezado.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// GeneratePurchaseOrder genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GeneratePurchaseOrder(doc procurement.PurchaseOrderDocument) ([]byte, error) {
	if doc.Order == nil {
		return nil, fmt.Errorf("pdf: orden vacía")
	}
	po := doc.Order

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de compra "+po.PONumber, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.company, po))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(doc.Supplier))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(po.Items, doc.Products)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(po))
	m.AddRows(row.New(3))
	m.AddRows(footerRow(po))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company string, po *entity.PurchaseOrder) core.Row {
	dates := "Fecha: " + po.OrderDate.Format("02/01/2006")
	if po.ExpectedDate != nil {
		dates += "   Entrega: " + po.ExpectedDate.Format("02/01/2006")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company, "Mantenimiento"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Sucursal: "+po.BranchID, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(po.PONumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
			text.New(dates, props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

func supplierRow(s *entity.Supplier) core.Row {
	name, code := "-", "-"
	if s != nil {
		name = nonEmpty(s.Name, s.ID)
		code = nonEmpty(s.Code, "-")
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("PROVEEDOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%s   |   Código: %s", name, code), props.Text{Size: 9, Top: 6}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Cant.", 1, align.Center),
		h("P. Unit.", 2, align.Right),
		h("Total", 2, align.Right),
		h("Recib.", 1, align.Center),
	)
}

func itemRows(items []*entity.PurchaseOrderItem, products map[string]*entity.Product) []core.Row {
	rows := make([]core.Row, 0, len(items))
	cell := func(a align.Type) props.Text {
		return props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}
	}
	for _, it := range items {
		sku, name := "-", it.ProductID
		if p, ok := products[it.ProductID]; ok {
			sku, name = p.SKU, p.Name
		}
		rows = append(rows, row.New(7).Add(
			col.New(2).Add(text.New(sku, cell(align.Left))),
			col.New(4).Add(text.New(name, cell(align.Left))),
			col.New(1).Add(text.New(it.Quantity.String(), cell(align.Center))),
			col.New(2).Add(text.New(formatMoney(it.UnitPrice), cell(align.Right))),
			col.New(2).Add(text.New(formatMoney(it.TotalPrice), cell(align.Right))),
			col.New(1).Add(text.New(it.ReceivedQty.String(), cell(align.Center))),
		))
	}
	return rows
}

func totalsRow(po *entity.PurchaseOrder) core.Row {
	lines := []struct {
		label string
		value string
	}{
		{"Subtotal:", formatMoney(po.Subtotal)},
		{"Impuesto:", formatMoney(po.TaxAmount)},
		{"Descuento:", "-" + formatMoney(po.DiscountAmount)},
		{"TOTAL:", formatMoney(po.TotalAmount)},
	}
	labels := col.New(3)
	values := col.New(3)
	for i, l := range lines {
		top := float64(i * 6)
		lp := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}
		vp := props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}
		if i == len(lines)-1 {
			lp.Size, lp.Color = 10, colorPrimary
			vp.Style, vp.Size, vp.Color = fontstyle.Bold, 10, colorPrimary
		}
		labels.Add(text.New(l.label, lp))
		values.Add(text.New(l.value, vp))
	}
	return row.New(26).Add(col.New(6), labels, values)
}

func footerRow(po *entity.PurchaseOrder) core.Row {
	notes := nonEmpty(po.Notes, "Sin observaciones.")
	approval := "Pendiente de aprobación"
	if po.ApprovedAt != nil {
		approval = fmt.Sprintf("Aprobada por %s el %s", nonEmpty(po.ApprovedBy, "-"), po.ApprovedAt.Format("02/01/2006 15:04"))
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(po.PONumber, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Estado: "+string(po.Status), props.Text{Style: fontstyle.Bold, Size: 9, Top: 2, Left: 3}),
			text.New(approval, props.Text{Size: 8, Top: 8, Left: 3}),
			text.New("Notas: "+notes, props.Text{Size: 8, Top: 15, Left: 3, Color: colorGray}),
			text.New("Presente este código al entregar la mercancía.", props.Text{
				Size: 7, Top: 30, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// formatMoney "$" + miles con punto y dos decimales con coma. Ej: 1234567.5 → "$1.234.567,50".
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign, d = "-", d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + "," + frac
}

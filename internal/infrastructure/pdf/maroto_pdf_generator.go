// Package pdf genera el informe de movimientos en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Informe de movimientos  │  Rango + fecha de corte  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Fecha | Origen | Destino | Usuario | Uds.  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: movimientos / unidades                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/bodegas-api/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoPDFGenerator implementa reports.MovementPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador; company aparece en el encabezado.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// GenerateMovementReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateMovementReportPDF(_ context.Context, report *dto.MovementReportDTO) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: informe vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Informe de movimientos", true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.company, report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(report.Movements) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company string, report *dto.MovementReportDTO) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company, "Bodegas"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("INFORME DE MOVIMIENTOS", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Rango: "+rangeLabel(report.From, report.To), props.Text{
				Size: 8, Align: align.Right, Top: 2,
			}),
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Fecha", 2, align.Left),
		h("Origen", 2, align.Left),
		h("Destino", 2, align.Left),
		h("Usuario", 2, align.Left),
		h("Líneas", 1, align.Right),
		h("Uds.", 1, align.Right),
	)
}

// tableRows: una fila por movimiento.
func tableRows(movements []dto.MovementSummaryDTO) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1}))
	}
	out := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		out = append(out, row.New(6).Add(
			cell(mv.Code, 2, align.Left),
			cell(mv.CreatedAt.Format("02/01/2006 15:04"), 2, align.Left),
			cell(nonEmpty(mv.Origin, "Ingreso"), 2, align.Left),
			cell(nonEmpty(mv.Destination, "—"), 2, align.Left),
			cell(mv.Username, 2, align.Left),
			cell(strconv.FormatInt(mv.Lines, 10), 1, align.Right),
			cell(formatUnits(mv.Units), 1, align.Right),
		))
	}
	return out
}

func totalsRow(report *dto.MovementReportDTO) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(4).Add(
			text.New(fmt.Sprintf("Movimientos: %d", len(report.Movements)), props.Text{
				Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Unidades: "+formatUnits(report.TotalUnits), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 5,
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

func rangeLabel(from, to *time.Time) string {
	f, t := "inicio", "hoy"
	if from != nil {
		f = from.Format("02/01/2006")
	}
	if to != nil {
		t = to.Format("02/01/2006")
	}
	return f + " – " + t
}

// formatUnits inserta puntos de miles. Ej: 25000 -> "25.000".
func formatUnits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg, s = true, s[1:]
	}
	l := len(s)
	if l <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, l+l/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

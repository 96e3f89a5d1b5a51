// Package pdf genera el comprobante PDF de una solicitud de aprobación.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tenant + Título       │  Estado + Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITUD: Solicitante / Ruta v / Descripción              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PASOS: Orden | Quórum | Aprobadores | Estado               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HISTORIAL: Fecha | Actor | Acción | Comentario             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + ID                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

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

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorGreen   = &props.Color{Red: 30, Green: 130, Blue: 60}
	colorRed     = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var statusLabels = map[entity.ApprovalStatus]string{
	entity.StatusPending:   "PENDIENTE",
	entity.StatusApproved:  "APROBADA",
	entity.StatusRejected:  "RECHAZADA",
	entity.StatusWithdrawn: "RETIRADA",
}

var actionLabels = map[entity.HistoryAction]string{
	entity.ActionApproved:  "Aprobó",
	entity.ActionRejected:  "Rechazó",
	entity.ActionWithdrawn: "Retiró",
	entity.ActionCommented: "Comentó",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

// MarotoReceiptGenerator implementa ports.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	loc *time.Location
}

// NewMarotoReceiptGenerator construye el generador. Las fechas se imprimen en loc (UTC si es nil).
func NewMarotoReceiptGenerator(loc *time.Location) *MarotoReceiptGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &MarotoReceiptGenerator{loc: loc}
}

// GenerateApprovalReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateApprovalReceipt(_ context.Context, data ports.ReceiptData) ([]byte, error) {
	if data.Instance == nil {
		return nil, fmt.Errorf("pdf: solicitud nula")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de aprobación", true).
		WithAuthor(nonEmpty(data.TenantName, "Aprobaciones"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(requestRows(data)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("PASOS DE APROBACIÓN"))
	m.AddRows(stepsHeaderRow())
	m.AddRows(stepRows(data.Steps)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("HISTORIAL"))
	m.AddRows(historyHeaderRow())
	m.AddRows(g.historyRows(data)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(data.Instance))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tenant y título (izq), estado y fecha de creación (der).
func (g *MarotoReceiptGenerator) headerRow(data ports.ReceiptData) core.Row {
	inst := data.Instance
	statusColor := colorPrimary
	switch inst.Status {
	case entity.StatusApproved:
		statusColor = colorGreen
	case entity.StatusRejected:
		statusColor = colorRed
	}

	return row.New(18).Add(
		col.New(8).Add(
			text.New(nonEmpty(data.TenantName, inst.TenantID), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(inst.Title, props.Text{
				Size: 10, Top: 9,
			}),
		),
		col.New(4).Add(
			text.New("SOLICITUD DE APROBACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(statusLabels[inst.Status], string(inst.Status)), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7, Color: statusColor,
			}),
			text.New("Creada: "+inst.CreatedAt.In(g.loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// requestRows: solicitante, ruta y descripción.
func requestRows(data ports.ReceiptData) []core.Row {
	inst := data.Instance
	rows := []core.Row{
		row.New(12).Add(col.New(12).Add(
			text.New("SOLICITANTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%s   |   Ruta %s (versión %d)   |   Paso %d de %d",
				nonEmpty(data.ApplicantName, inst.ApplicantID), inst.RouteID, inst.RouteVersion,
				min(inst.CurrentStep, inst.TotalSteps), inst.TotalSteps,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		)),
	}
	if desc := strings.TrimSpace(inst.Description); desc != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New(desc, props.Text{Size: 8, Top: 1}),
		)))
	}
	return rows
}

func sectionTitle(label string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
	}))
}

func stepsHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Orden", 1, align.Center),
		headerCell("Quórum", 2, align.Center),
		headerCell("Aprobadores", 7, align.Left),
		headerCell("Estado", 2, align.Center),
	)
}

// stepRows: una fila por grupo de pasos.
func stepRows(steps []ports.ReceiptStep) []core.Row {
	result := make([]core.Row, 0, len(steps))
	for _, s := range steps {
		quorum := "Todos"
		if s.Quorum == entity.QuorumAny {
			quorum = "Cualquiera"
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", s.Order), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(quorum, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(7).Add(text.New(strings.Join(s.Approvers, ", "), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(s.Status, props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

func historyHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Fecha", 3, align.Left),
		headerCell("Actor", 3, align.Left),
		headerCell("Acción", 2, align.Center),
		headerCell("Comentario", 4, align.Left),
	)
}

// historyRows: una fila por entrada del historial, en orden cronológico.
func (g *MarotoReceiptGenerator) historyRows(data ports.ReceiptData) []core.Row {
	if len(data.History) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin acciones registradas.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		))}
	}
	result := make([]core.Row, 0, len(data.History))
	for _, h := range data.History {
		actor := nonEmpty(data.UserNames[h.ActorID], h.ActorID)
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(h.CreatedAt.In(g.loc).Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(actor, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(actionLabels[h.Action], string(h.Action)), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(nonEmpty(h.Comment, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return result
}

// footerRow: QR con la referencia de verificación + ID completo.
func footerRow(inst *entity.ApprovalInstance) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(VerificationRef(inst), props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("ID de la solicitud:", props.Text{Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3}),
			text.New(inst.ID, props.Text{Size: 8, Top: 9, Left: 3, Color: colorGray}),
			text.New("Documento generado a partir del historial de auditoría de la solicitud.", props.Text{
				Size: 7, Top: 20, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// VerificationRef contenido del QR: identifica solicitud y estado al momento de emitir el comprobante.
func VerificationRef(inst *entity.ApprovalInstance) string {
	return fmt.Sprintf("aprobacion:%s:%s:%s:%d", inst.TenantID, inst.ID, inst.Status, inst.CurrentStep)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

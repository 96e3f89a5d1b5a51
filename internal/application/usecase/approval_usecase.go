package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Aprobaciones-api/internal/application/approval"
	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
)

// ApprovalUseCase adapta el motor de aprobaciones a los DTOs de la API.
type ApprovalUseCase struct {
	engine         *approval.Engine
	txRunner       ports.TxRunner
	generator      ports.ReceiptGenerator
	historyPageMax int
}

// NewApprovalUseCase construye el caso de uso. historyPageMax acota las páginas de historial.
// generator puede ser nil si el comprobante PDF no está habilitado.
func NewApprovalUseCase(engine *approval.Engine, txRunner ports.TxRunner, generator ports.ReceiptGenerator, historyPageMax int) *ApprovalUseCase {
	if historyPageMax <= 0 {
		historyPageMax = approval.MaxLimit
	}
	return &ApprovalUseCase{engine: engine, txRunner: txRunner, generator: generator, historyPageMax: historyPageMax}
}

// Create abre una solicitud contra una ruta.
func (uc *ApprovalUseCase) Create(ctx context.Context, caller entity.Caller, in dto.CreateApprovalRequest) (*dto.ApprovalResponse, error) {
	input := approval.CreateInput{
		RouteID:     strings.TrimSpace(in.RouteID),
		Title:       in.Title,
		Description: in.Description,
		TemplateID:  in.TemplateID,
	}
	if in.Form != nil {
		input.Form = entity.FormPayload{Kind: in.Form.Kind, Data: in.Form.Data}
	}
	inst, err := uc.engine.Create(ctx, caller, input)
	if err != nil {
		return nil, err
	}
	return toApprovalResponse(inst), nil
}

// Approve registra la aprobación del llamador en el paso actual.
func (uc *ApprovalUseCase) Approve(ctx context.Context, caller entity.Caller, id, comment string) (*dto.ActionResponse, error) {
	return uc.act(ctx, caller, id, entity.DecisionApprove, comment)
}

// Reject rechaza la solicitud en el paso actual.
func (uc *ApprovalUseCase) Reject(ctx context.Context, caller entity.Caller, id, comment string) (*dto.ActionResponse, error) {
	return uc.act(ctx, caller, id, entity.DecisionReject, comment)
}

func (uc *ApprovalUseCase) act(ctx context.Context, caller entity.Caller, id string, decision entity.Decision, comment string) (*dto.ActionResponse, error) {
	res, err := uc.engine.Act(ctx, caller, id, decision, comment)
	if err != nil {
		return nil, err
	}
	return &dto.ActionResponse{
		Approval:  *toApprovalResponse(res.Instance),
		Entry:     toHistoryEntryResponse(res.Entry),
		Advanced:  res.Advanced,
		Completed: res.Completed,
		Duplicate: res.Duplicate,
	}, nil
}

// Withdraw retira la solicitud (solo el solicitante, mientras esté pendiente).
func (uc *ApprovalUseCase) Withdraw(ctx context.Context, caller entity.Caller, id, comment string) (*dto.ApprovalResponse, error) {
	inst, err := uc.engine.Withdraw(ctx, caller, id, comment)
	if err != nil {
		return nil, err
	}
	return toApprovalResponse(inst), nil
}

// Comment agrega un comentario sin alterar el estado.
func (uc *ApprovalUseCase) Comment(ctx context.Context, caller entity.Caller, id, comment string) (*dto.HistoryEntryResponse, error) {
	entry, err := uc.engine.Comment(ctx, caller, id, comment)
	if err != nil {
		return nil, err
	}
	out := toHistoryEntryResponse(entry)
	return &out, nil
}

// Get devuelve el detalle con avance por paso e historial.
func (uc *ApprovalUseCase) Get(ctx context.Context, caller entity.Caller, id string) (*dto.ApprovalDetailResponse, error) {
	detail, err := uc.engine.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	out := &dto.ApprovalDetailResponse{
		ApprovalResponse: *toApprovalResponse(detail.Instance),
		Steps:            make([]dto.StepProgressResponse, 0, len(detail.Steps)),
		History:          toHistoryResponses(detail.History),
	}
	for _, s := range detail.Steps {
		sp := dto.StepProgressResponse{Order: s.Order, Quorum: string(s.Quorum), Status: s.Status}
		for _, a := range s.Approvers {
			sp.Approvers = append(sp.Approvers, dto.ApproverProgressResponse{
				ApproverID:          a.Nominal,
				EffectiveApproverID: a.Effective,
				Approved:            a.Approved,
			})
		}
		out.Steps = append(out.Steps, sp)
	}
	return out, nil
}

// List lista solicitudes según el alcance pedido.
func (uc *ApprovalUseCase) List(ctx context.Context, caller entity.Caller, q dto.ListApprovalsQuery) (*dto.ApprovalListResponse, error) {
	res, err := uc.engine.List(ctx, caller, approval.ListInput{
		Scope:  q.Scope,
		Status: entity.ApprovalStatus(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ApprovalListResponse{
		Items: make([]dto.ApprovalResponse, 0, len(res.Items)),
		Page:  dto.PageResponse{Limit: res.Limit, Offset: res.Offset, Total: res.Total},
	}
	for _, inst := range res.Items {
		out.Items = append(out.Items, *toApprovalResponse(inst))
	}
	return out, nil
}

// History devuelve una página del historial, acotada a historyPageMax.
func (uc *ApprovalUseCase) History(ctx context.Context, caller entity.Caller, id string, limit, offset int) (*dto.HistoryListResponse, error) {
	if limit <= 0 || limit > uc.historyPageMax {
		limit = uc.historyPageMax
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := uc.engine.History(ctx, caller, id, limit, offset)
	if err != nil {
		return nil, err
	}
	return &dto.HistoryListResponse{
		Items: toHistoryResponses(entries),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Verify compara el estado persistido con el reconstruido desde el historial.
func (uc *ApprovalUseCase) Verify(ctx context.Context, caller entity.Caller, id string) (*dto.VerificationResponse, error) {
	v, err := uc.engine.Verify(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return &dto.VerificationResponse{
		ID:                  id,
		Consistent:          v.Consistent(),
		StoredStatus:        string(v.Stored.Status),
		StoredCurrentStep:   v.Stored.CurrentStep,
		ReplayedStatus:      string(v.Replayed.Status),
		ReplayedCurrentStep: v.Replayed.CurrentStep,
		Entries:             v.Entries,
	}, nil
}

// DownloadReceipt genera el comprobante PDF de la solicitud.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrInstanceNotFound si la solicitud no existe en el tenant.
//   - domain.ErrInvalidInput     si el comprobante no está habilitado.
func (uc *ApprovalUseCase) DownloadReceipt(ctx context.Context, caller entity.Caller, id string) (pdfBytes []byte, filename string, err error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("%w: comprobante PDF no habilitado", domain.ErrInvalidInput)
	}

	// ── 1. Detalle (valida tenant y existencia) ──────────────────────────────
	detail, err := uc.engine.Get(ctx, caller, id)
	if err != nil {
		return nil, "", err
	}
	inst := detail.Instance

	// ── 2. Nombres de tenant, solicitante y actores ──────────────────────────
	data := ports.ReceiptData{Instance: inst, History: detail.History, UserNames: map[string]string{}}
	err = uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		tenant, err := repos.Tenants.GetByID(ctx, inst.TenantID)
		if err != nil {
			return err
		}
		if tenant != nil {
			data.TenantName = tenant.Name
		}
		ids := []string{inst.ApplicantID}
		for _, h := range detail.History {
			ids = append(ids, h.ActorID)
		}
		for _, s := range detail.Steps {
			for _, a := range s.Approvers {
				ids = append(ids, a.Effective)
			}
		}
		for _, uid := range ids {
			if _, ok := data.UserNames[uid]; ok {
				continue
			}
			data.UserNames[uid] = uid // fallback
			u, err := repos.Users.GetByID(ctx, uid)
			if err != nil {
				return err
			}
			if u != nil && u.TenantID == inst.TenantID && u.Name != "" {
				data.UserNames[uid] = u.Name
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener datos: %w", err)
	}
	data.ApplicantName = data.UserNames[inst.ApplicantID]
	for _, s := range detail.Steps {
		rs := ports.ReceiptStep{Order: s.Order, Quorum: s.Quorum, Status: s.Status}
		for _, a := range s.Approvers {
			rs.Approvers = append(rs.Approvers, data.UserNames[a.Effective])
		}
		data.Steps = append(data.Steps, rs)
	}

	// ── 3. Generar PDF ───────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateApprovalReceipt(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("aprobacion_%s_%s.pdf", workflow.FormatDate(inst.CreatedAt), shortID(inst.ID))
	return pdfBytes, filename, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func toApprovalResponse(inst *entity.ApprovalInstance) *dto.ApprovalResponse {
	out := &dto.ApprovalResponse{
		ID:           inst.ID,
		TenantID:     inst.TenantID,
		RouteID:      inst.RouteID,
		RouteVersion: inst.RouteVersion,
		ApplicantID:  inst.ApplicantID,
		Title:        inst.Title,
		Description:  inst.Description,
		TemplateID:   inst.TemplateID,
		Status:       string(inst.Status),
		CurrentStep:  inst.CurrentStep,
		TotalSteps:   inst.TotalSteps,
		CreatedAt:    inst.CreatedAt,
		UpdatedAt:    inst.UpdatedAt,
	}
	if !inst.Form.Empty() {
		out.Form = &dto.FormPayload{Kind: inst.Form.Kind, Data: inst.Form.Data}
	}
	return out
}

func toHistoryEntryResponse(h *entity.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:          h.ID,
		Seq:         h.Seq,
		StepOrder:   h.StepOrder,
		ActorID:     h.ActorID,
		Action:      string(h.Action),
		Comment:     h.Comment,
		StatusAfter: string(h.StatusAfter),
		StepAfter:   h.StepAfter,
		CreatedAt:   h.CreatedAt,
	}
}

func toHistoryResponses(entries []*entity.HistoryEntry) []dto.HistoryEntryResponse {
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, toHistoryEntryResponse(h))
	}
	return out
}

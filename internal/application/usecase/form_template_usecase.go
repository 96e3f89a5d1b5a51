package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/form"
)

// FormTemplateUseCase alta y consulta de plantillas de formulario.
type FormTemplateUseCase struct {
	txRunner ports.TxRunner
	clock    ports.Clock
}

// NewFormTemplateUseCase construye el caso de uso.
func NewFormTemplateUseCase(txRunner ports.TxRunner, clock ports.Clock) *FormTemplateUseCase {
	return &FormTemplateUseCase{txRunner: txRunner, clock: clock}
}

// Create valida la definición de campos y persiste la plantilla.
func (uc *FormTemplateUseCase) Create(ctx context.Context, caller entity.Caller, in dto.CreateFormTemplateRequest) (*dto.FormTemplateResponse, error) {
	now := uc.clock.Now().UTC()
	tpl := &entity.FormTemplate{
		ID:          uuid.New().String(),
		TenantID:    caller.TenantID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Lifecycle:   entity.LifecycleActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, f := range in.Fields {
		tpl.Fields = append(tpl.Fields, entity.FormField{
			Key:      strings.TrimSpace(f.Key),
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
			Options:  f.Options,
			Min:      f.Min,
			Max:      f.Max,
			Pattern:  f.Pattern,
			Position: i + 1,
		})
	}
	if err := form.ValidateTemplate(tpl); err != nil {
		return nil, err
	}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		return repos.Templates.Create(ctx, tpl)
	})
	if err != nil {
		return nil, err
	}
	return toFormTemplateResponse(tpl), nil
}

// GetByID obtiene una plantilla activa del tenant.
func (uc *FormTemplateUseCase) GetByID(ctx context.Context, caller entity.Caller, id string) (*dto.FormTemplateResponse, error) {
	var out *dto.FormTemplateResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		tpl, err := repos.Templates.GetByID(ctx, caller.TenantID, id)
		if err != nil {
			return err
		}
		if tpl == nil || !tpl.Lifecycle.IsActive() {
			return domain.ErrNotFound
		}
		out = toFormTemplateResponse(tpl)
		return nil
	})
	return out, err
}

// List lista las plantillas del tenant.
func (uc *FormTemplateUseCase) List(ctx context.Context, caller entity.Caller, limit, offset int) (*dto.FormTemplateListResponse, error) {
	resp := &dto.FormTemplateListResponse{Items: []dto.FormTemplateResponse{}, Page: dto.PageResponse{Limit: limit, Offset: offset}}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		list, err := repos.Templates.ListByTenant(ctx, caller.TenantID, limit, offset)
		if err != nil {
			return err
		}
		for _, t := range list {
			resp.Items = append(resp.Items, *toFormTemplateResponse(t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func toFormTemplateResponse(t *entity.FormTemplate) *dto.FormTemplateResponse {
	fields := make([]dto.FormFieldResponse, 0, len(t.Fields))
	for _, f := range t.Fields {
		fields = append(fields, dto.FormFieldResponse{
			Key:      f.Key,
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
			Options:  f.Options,
			Min:      f.Min,
			Max:      f.Max,
			Pattern:  f.Pattern,
		})
	}
	return &dto.FormTemplateResponse{
		ID:          t.ID,
		TenantID:    t.TenantID,
		Name:        t.Name,
		Description: t.Description,
		Fields:      fields,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

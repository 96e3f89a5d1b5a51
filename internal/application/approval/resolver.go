package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/repository"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/workflow"
)

// ResolveApprover devuelve quién actúa por nominal en la fecha asOf: su delegado si hay una
// delegación activa que la cubra, o el propio nominal. asOf debe ser una fecha civil normalizada.
func ResolveApprover(ctx context.Context, delegations repository.DelegationRepository, tenantID, nominal string, asOf time.Time) (string, error) {
	covering, err := delegations.ListCovering(ctx, tenantID, nominal, asOf)
	if err != nil {
		return "", fmt.Errorf("resolver delegación de %s: %w", nominal, err)
	}
	return workflow.PickDelegate(nominal, covering)
}

// EffectiveApprovers resuelve el grupo de pasos de un orden con sus aprobadores efectivos en asOf.
func EffectiveApprovers(
	ctx context.Context,
	delegations repository.DelegationRepository,
	tenantID string,
	steps []entity.Step,
	order int,
	asOf time.Time,
) (workflow.Group, error) {
	cache := make(map[string]string)
	return workflow.ResolveGroup(steps, order, func(nominal string) (string, error) {
		if eff, ok := cache[nominal]; ok {
			return eff, nil
		}
		eff, err := ResolveApprover(ctx, delegations, tenantID, nominal, asOf)
		if err != nil {
			return "", err
		}
		cache[nominal] = eff
		return eff, nil
	})
}

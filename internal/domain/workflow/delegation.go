package workflow

import (
	"fmt"
	"time"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// ValidateWindow valida la ventana de una delegación nueva. Las fechas ya deben venir normalizadas.
func ValidateWindow(userID, delegateID string, start, end time.Time) error {
	if userID == "" || delegateID == "" {
		return fmt.Errorf("%w: delegante y delegado son obligatorios", domain.ErrInvalidInput)
	}
	if userID == delegateID {
		return domain.ErrSelfDelegationForbidden
	}
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: fechas de inicio y fin son obligatorias", domain.ErrInvalidInput)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: la fecha de fin es anterior a la de inicio", domain.ErrInvalidInput)
	}
	return nil
}

// FindOverlap devuelve la primera delegación activa que se superpone con [start, end], o nil.
func FindOverlap(existing []*entity.Delegation, start, end time.Time) *entity.Delegation {
	for _, d := range existing {
		if d == nil || !d.Lifecycle.IsActive() {
			continue
		}
		if d.Overlaps(start, end) {
			return d
		}
	}
	return nil
}

// PickDelegate elige el aprobador efectivo de nominal a partir de las delegaciones que cubren la fecha.
// Sin coincidencias actúa el nominal. No hay encadenamiento: el delegado de un delegado no se sigue.
// Más de una coincidencia viola la regla de no superposición y se reporta como error de integridad.
func PickDelegate(nominal string, covering []*entity.Delegation) (string, error) {
	var active []*entity.Delegation
	for _, d := range covering {
		if d != nil && d.Lifecycle.IsActive() && d.UserID == nominal {
			active = append(active, d)
		}
	}
	switch len(active) {
	case 0:
		return nominal, nil
	case 1:
		return active[0].DelegateUserID, nil
	default:
		return "", fmt.Errorf("%w: usuario %s tiene %d delegaciones", domain.ErrDelegationIntegrity, nominal, len(active))
	}
}

package workflow

import (
	"fmt"
	"sort"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// NormalizeSteps valida los pasos de una ruta y los devuelve ordenados con órdenes contiguos desde 1.
//
// Reglas:
//   - al menos un paso, cada uno con aprobador y Order >= 1;
//   - un aprobador no se repite dentro del mismo orden;
//   - todos los pasos de un orden comparten la regla de quórum. Un paso sin quórum hereda el
//     declarado por su grupo; si el grupo no declara ninguno se usa defaultQuorum.
//
// Los órdenes originales no necesitan ser contiguos: se consumen en forma ascendente y se renumeran.
func NormalizeSteps(steps []entity.Step, defaultQuorum entity.Quorum) ([]entity.Step, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: la ruta debe tener al menos un paso", domain.ErrInvalidInput)
	}
	if !defaultQuorum.Valid() {
		defaultQuorum = entity.QuorumAll
	}

	declared := make(map[int]entity.Quorum)
	seen := make(map[int]map[string]bool)
	for i, s := range steps {
		if s.Order < 1 {
			return nil, fmt.Errorf("%w: paso %d con orden inválido (%d)", domain.ErrInvalidInput, i+1, s.Order)
		}
		if s.ApproverID == "" {
			return nil, fmt.Errorf("%w: paso %d sin aprobador", domain.ErrInvalidInput, i+1)
		}
		if s.Quorum != "" && !s.Quorum.Valid() {
			return nil, fmt.Errorf("%w: quórum desconocido %q", domain.ErrInvalidInput, s.Quorum)
		}
		if seen[s.Order] == nil {
			seen[s.Order] = make(map[string]bool)
		}
		if seen[s.Order][s.ApproverID] {
			return nil, fmt.Errorf("%w: aprobador repetido en el orden %d", domain.ErrInvalidInput, s.Order)
		}
		seen[s.Order][s.ApproverID] = true

		if s.Quorum == "" {
			continue
		}
		if q, ok := declared[s.Order]; ok && q != s.Quorum {
			return nil, fmt.Errorf("%w: orden %d declara %s y %s", domain.ErrInconsistentQuorum, s.Order, q, s.Quorum)
		}
		declared[s.Order] = s.Quorum
	}

	out := make([]entity.Step, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })

	position := 0
	last := 0
	for i := range out {
		original := out[i].Order
		if original != last {
			position++
			last = original
		}
		q, ok := declared[original]
		if !ok {
			q = defaultQuorum
		}
		out[i].Order = position
		out[i].Quorum = q
	}
	return out, nil
}

// Orders devuelve los órdenes distintos de los pasos, en forma ascendente.
func Orders(steps []entity.Step) []int {
	set := make(map[int]struct{}, len(steps))
	for _, s := range steps {
		set[s.Order] = struct{}{}
	}
	orders := make([]int, 0, len(set))
	for o := range set {
		orders = append(orders, o)
	}
	sort.Ints(orders)
	return orders
}

// TotalSteps cantidad de etapas secuenciales: número de órdenes distintos,
// independiente de cuántos aprobadores tenga cada etapa.
func TotalSteps(steps []entity.Step) int {
	return len(Orders(steps))
}

// FirstOrder devuelve el menor orden, o false si no hay pasos.
func FirstOrder(steps []entity.Step) (int, bool) {
	orders := Orders(steps)
	if len(orders) == 0 {
		return 0, false
	}
	return orders[0], true
}

// NextOrder devuelve el siguiente orden mayor que current, o false si current es la última etapa.
func NextOrder(steps []entity.Step, current int) (int, bool) {
	for _, o := range Orders(steps) {
		if o > current {
			return o, true
		}
	}
	return 0, false
}

// LastOrder devuelve el mayor orden (0 si no hay pasos).
func LastOrder(steps []entity.Step) int {
	orders := Orders(steps)
	if len(orders) == 0 {
		return 0
	}
	return orders[len(orders)-1]
}

// StepsAt devuelve los pasos que comparten el orden indicado (el grupo).
func StepsAt(steps []entity.Step, order int) []entity.Step {
	var group []entity.Step
	for _, s := range steps {
		if s.Order == order {
			group = append(group, s)
		}
	}
	return group
}

// SoleApproverGroups devuelve los órdenes cuyo único aprobador nominal es userID.
// Una solicitud de userID contra esa ruta no podría avanzar nunca.
func SoleApproverGroups(steps []entity.Step, userID string) []int {
	var blocked []int
	for _, o := range Orders(steps) {
		group := StepsAt(steps, o)
		only := true
		for _, s := range group {
			if s.ApproverID != userID {
				only = false
				break
			}
		}
		if only {
			blocked = append(blocked, o)
		}
	}
	return blocked
}

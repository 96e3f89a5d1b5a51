package workflow

import "github.com/jhoicas/Aprobaciones-api/internal/domain/entity"

// Slot un puesto de aprobación dentro de un grupo: el aprobador nominal de la ruta y
// quien efectivamente actúa por él en la fecha de evaluación (él mismo o su delegado).
type Slot struct {
	Nominal   string
	Effective string
}

// Group etapa resuelta: los puestos que comparten un orden y su regla de quórum.
type Group struct {
	Order  int
	Quorum entity.Quorum
	Slots  []Slot
}

// ResolveGroup arma el grupo de un orden aplicando resolve a cada aprobador nominal.
// resolve devuelve el aprobador efectivo del nominal (el propio nominal si no hay delegación).
func ResolveGroup(steps []entity.Step, order int, resolve func(nominal string) (string, error)) (Group, error) {
	g := Group{Order: order, Quorum: entity.QuorumAll}
	for i, s := range StepsAt(steps, order) {
		if i == 0 && s.Quorum.Valid() {
			g.Quorum = s.Quorum
		}
		effective, err := resolve(s.ApproverID)
		if err != nil {
			return Group{}, err
		}
		g.Slots = append(g.Slots, Slot{Nominal: s.ApproverID, Effective: effective})
	}
	return g, nil
}

// IsEffective indica si userID es aprobador efectivo de algún puesto del grupo.
func (g Group) IsEffective(userID string) bool {
	for _, s := range g.Slots {
		if s.Effective == userID {
			return true
		}
	}
	return false
}

// IsNominal indica si userID figura como aprobador nominal del grupo.
func (g Group) IsNominal(userID string) bool {
	for _, s := range g.Slots {
		if s.Nominal == userID {
			return true
		}
	}
	return false
}

// EffectiveApprovers devuelve los aprobadores efectivos sin repetir, en el orden de los puestos.
func (g Group) EffectiveApprovers() []string {
	seen := make(map[string]bool, len(g.Slots))
	var out []string
	for _, s := range g.Slots {
		if !seen[s.Effective] {
			seen[s.Effective] = true
			out = append(out, s.Effective)
		}
	}
	return out
}

// Satisfied indica si el grupo quedó completo dadas las aprobaciones registradas en este orden.
//
// any: basta una aprobación de cualquier aprobador efectivo o nominal del grupo.
// all: cada puesto debe tener la aprobación de su efectivo o de su nominal (la que haya
// registrado el nominal antes de delegar sigue contando). Los puestos cuyo efectivo es el
// solicitante no cuentan, porque nunca podrían completarse.
func (g Group) Satisfied(approvedBy map[string]bool, applicantID string) bool {
	if g.Quorum == entity.QuorumAny {
		for _, s := range g.Slots {
			if approvedBy[s.Effective] || approvedBy[s.Nominal] {
				return true
			}
		}
		return false
	}
	for _, s := range g.Slots {
		if s.Effective == applicantID {
			continue
		}
		if !approvedBy[s.Effective] && !approvedBy[s.Nominal] {
			return false
		}
	}
	return true
}

// ApplicantSlots devuelve los aprobadores nominales cuyo puesto resolvió en el solicitante.
// Bajo all esos puestos no se exigen.
func (g Group) ApplicantSlots(applicantID string) []string {
	var out []string
	for _, s := range g.Slots {
		if s.Effective == applicantID {
			out = append(out, s.Nominal)
		}
	}
	return out
}

// ApprovalsAt devuelve el conjunto de actores con una entrada approved en el orden indicado.
func ApprovalsAt(entries []*entity.HistoryEntry, order int) map[string]bool {
	approved := make(map[string]bool)
	for _, e := range entries {
		if e.StepOrder == order && e.Action == entity.ActionApproved {
			approved[e.ActorID] = true
		}
	}
	return approved
}

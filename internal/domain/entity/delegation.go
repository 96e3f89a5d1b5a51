package entity

import "time"

// Delegation sustitución acotada en el tiempo: UserID no actúa durante [StartDate, EndDate]
// y los pasos donde figura como aprobador se resuelven a DelegateUserID.
// Las fechas son fechas civiles (medianoche UTC), ambos extremos inclusive.
type Delegation struct {
	ID             string
	TenantID       string
	UserID         string
	DelegateUserID string
	StartDate      time.Time
	EndDate        time.Time
	Reason         string
	Lifecycle      Lifecycle
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Covers indica si la fecha cae dentro del rango de la delegación.
func (d *Delegation) Covers(date time.Time) bool {
	return !date.Before(d.StartDate) && !date.After(d.EndDate)
}

// Overlaps indica si los rangos [StartDate, EndDate] de ambas delegaciones se intersectan.
func (d *Delegation) Overlaps(start, end time.Time) bool {
	return !d.StartDate.After(end) && !start.After(d.EndDate)
}

package workflow

import (
	"fmt"
	"time"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
)

// DateLayout formato de fecha civil usado en la API y en la BD.
const DateLayout = "2006-01-02"

// DateOf convierte un instante a la fecha civil en loc, representada como medianoche UTC.
// Las delegaciones se comparan siempre con fechas normalizadas así.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta una fecha civil YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q, formato esperado %s", domain.ErrInvalidInput, s, DateLayout)
	}
	return t, nil
}

// FormatDate inverso de ParseDate.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

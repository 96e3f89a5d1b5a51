package dto

// Topes de paginación de los listados de la API.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación pedida por query string.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Clamp aplica el límite por defecto si no viene, el tope MaxPageLimit y offset no negativo.
func (p PageRequest) Clamp() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageResponse metadatos de página en respuestas. Total solo se informa donde el listado lo calcula.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

package dto

import "time"

// CreateDelegationRequest entrada para crear una delegación. Fechas YYYY-MM-DD, ambas inclusive.
// UserID vacío delega al propio llamador; solo un admin puede delegar en nombre de otro.
type CreateDelegationRequest struct {
	UserID         string `json:"user_id"`
	DelegateUserID string `json:"delegate_user_id" validate:"required"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason         string `json:"reason" validate:"max=500"`
}

// DelegationResponse salida de una delegación.
type DelegationResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	DelegateUserID string    `json:"delegate_user_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DelegationListResponse delegaciones donde el llamador es delegante o delegado.
type DelegationListResponse struct {
	Items []DelegationResponse `json:"items"`
}

package dto

import "time"

// CreateUserRequest entrada para crear un usuario del tenant del llamador.
// No hay credenciales: la emisión de tokens y el hashing de contraseñas viven fuera de este servicio.
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Role  string `json:"role" validate:"required,oneof=admin manager member"`
}

// UserResponse salida de un usuario.
type UserResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Lifecycle string    `json:"lifecycle"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

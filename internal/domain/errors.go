package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del motor de aprobaciones.
var (
	ErrRouteNotFound           = errors.New("ruta de aprobación no encontrada, inactiva o sin pasos")
	ErrInstanceNotFound        = errors.New("solicitud de aprobación no encontrada")
	ErrNotPending              = errors.New("la solicitud ya no está pendiente")
	ErrSelfActionForbidden     = errors.New("el solicitante no puede aprobar ni rechazar su propia solicitud")
	ErrNotAuthorizedApprover   = errors.New("el usuario no es aprobador del paso actual")
	ErrNotApplicant            = errors.New("solo el solicitante puede retirar la solicitud")
	ErrDelegationOverlap       = errors.New("el rango de fechas se superpone con otra delegación")
	ErrSelfDelegationForbidden = errors.New("un usuario no puede delegarse a sí mismo")
	ErrDelegateNotFound        = errors.New("usuario delegado no encontrado")
	ErrTenantMismatch          = errors.New("referencia a un recurso de otro tenant")
	ErrDelegationIntegrity     = errors.New("más de una delegación activa para la misma fecha")
	ErrInconsistentQuorum      = errors.New("los pasos de un mismo orden declaran reglas de quórum distintas")
	ErrInvalidForm             = errors.New("los datos del formulario no cumplen la plantilla")
)

// ErrTxConflict indica un fallo transitorio de la transacción (serialización, deadlock, lock timeout).
// Es el único error que el llamador puede reintentar.
var ErrTxConflict = errors.New("conflicto transitorio de transacción, reintente")

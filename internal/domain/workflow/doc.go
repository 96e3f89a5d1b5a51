// Package workflow contiene los servicios de dominio del motor de aprobaciones: agrupación y
// validación de pasos de una ruta, evaluación de quórum, resolución de delegaciones y
// reconstrucción del estado de una solicitud a partir de su historial.
//
// Todo en este paquete es puro (sin I/O); la orquestación transaccional vive en
// internal/application/approval.
package workflow

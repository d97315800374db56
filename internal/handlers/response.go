package handlers

import (
	"github.com/gin-gonic/gin"
)

// Client-facing messages.
const (
	msgUserCreated        = "Usuario creado"
	msgLoggedIn           = "Inicio sesion"
	msgDuplicateEmail     = "Correo ya registrado"
	msgInvalidCredentials = "Correo o contraseña invalida"
	msgRegisterFailed     = "Error al registrar el usuario"
	msgLoginFailed        = "Error al iniciar sesion"

	msgNoToken      = "No hay token en la peticion"
	msgInvalidToken = "Token no valido"

	msgInvalidInput  = "Datos invalidos"
	msgMalformedBody = "El cuerpo de la peticion debe ser JSON valido"

	msgTaskCreated    = "Tarea Creada"
	msgTaskNotCreated = "Error al crear la tarea"
	msgTasksNotFound  = "Tareas no encontradas"
	msgTaskUpdated    = "Tarea actualizada"
	msgTaskNotUpdated = "Tarea no actualizada"
	msgTaskDeleted    = "Tarea eliminada"
	msgTaskNotDeleted = "Tarea no eliminada"
)

// errorResponse is the failure envelope every endpoint answers with.
type errorResponse struct {
	OK     bool         `json:"ok" example:"false"`
	Msg    string       `json:"msg"`
	Errors []fieldError `json:"errors,omitempty"`
}

type authResponse struct {
	OK       bool   `json:"ok" example:"true"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Msg      string `json:"msg"`
	Token    string `json:"token"`
}

// Centralized error logging and response. Client errors log at info.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...any) {
	fields := append([]any{"err", err, "status", httpCode, "request_id", c.GetString(ctxRequestIDKey)}, kv...)
	if httpCode >= 500 {
		h.log.Errorw(logKey, fields...)
	} else {
		h.log.Infow(logKey, fields...)
	}
	c.AbortWithStatusJSON(httpCode, errorResponse{Msg: userMsg})
}

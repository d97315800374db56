package handlers

import (
	"errors"
	"net/http"

	"task_api/internal/service"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email" msg:"El formato es invalido" example:"a@x.com"`
	Password string `json:"password" binding:"required,min=6,bcryptmax" msg:"La contraseña debe de ser de 6 caracteres minimo" msg_bcryptmax:"La contraseña no puede superar los 72 bytes" example:"secret1"`
	Username string `json:"username" binding:"notblank" msg:"El nombre de usuario es requerido" example:"A"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email" msg:"El formato es invalido" example:"a@x.com"`
	Password string `json:"password" binding:"required,min=6" msg:"La contraseña debe de ser de 6 caracteres minimo" example:"secret1"`
}

// register godoc
// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "New user"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Failure      501   {object}  errorResponse
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	req := payload[registerRequest](c)

	res, err := h.services.Register(c.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			h.logAndJSONError(c, http.StatusNotImplemented, msgDuplicateEmail, "auth_register_duplicate", err, "email", req.Email)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, msgRegisterFailed, "auth_register_failed", err, "email", req.Email)
		return
	}

	h.log.Infow("auth_registered", "user_id", res.ID)
	c.JSON(http.StatusOK, authResponse{OK: true, ID: res.ID, Username: res.Username, Msg: msgUserCreated, Token: res.Token})
}

// login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	req := payload[loginRequest](c)

	res, err := h.services.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logAndJSONError(c, http.StatusUnauthorized, msgInvalidCredentials, "auth_login_rejected", err, "email", req.Email)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, msgLoginFailed, "auth_login_failed", err, "email", req.Email)
		return
	}

	c.JSON(http.StatusOK, authResponse{OK: true, ID: res.ID, Username: res.Username, Msg: msgLoggedIn, Token: res.Token})
}

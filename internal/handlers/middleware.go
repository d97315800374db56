package handlers

import (
	"net/http"
	"strings"
	"time"

	"task_api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxIdentityKey  = "identity"
	ctxRequestIDKey = "requestID"
	requestIDHeader = "X-Request-ID"
)

// tokenAuth verifies the token header and stores the caller identity on the context.
func (h *Handler) tokenAuth(c *gin.Context) {
	token := strings.TrimSpace(c.GetHeader(h.opts.TokenHeader))
	if token == "" {
		h.log.Infow("token_missing", "path", c.FullPath(), "request_id", c.GetString(ctxRequestIDKey))
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Msg: msgNoToken})
		return
	}

	identity, err := h.services.ParseToken(token)
	if err != nil {
		h.log.Infow("token_rejected", "path", c.FullPath(), "err", err, "request_id", c.GetString(ctxRequestIDKey))
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Msg: msgInvalidToken})
		return
	}

	c.Set(ctxIdentityKey, identity)
	c.Next()
}

// withIdentity hands the verified caller to fn. It must run after tokenAuth.
func (h *Handler) withIdentity(fn func(*gin.Context, models.Identity)) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(ctxIdentityKey)
		identity, isIdentity := v.(models.Identity)
		if !ok || !isIdentity || identity.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Msg: msgInvalidToken})
			return
		}
		fn(c, identity)
	}
}

// requestID propagates the caller's X-Request-ID or generates one.
func (h *Handler) requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(ctxRequestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
		"request_id", c.GetString(ctxRequestIDKey),
	)
}

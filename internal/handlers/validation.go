package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"task_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const ctxPayloadKey = "payload"

// fieldError is one entry of the per-field validation report.
type fieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

var registerOnce sync.Once

// registerValidators teaches gin's validator the extra tags used by request
// payloads and makes it report json field names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("bcryptmax", bcryptMax)
		v.RegisterTagNameFunc(jsonFieldName)
	})
}

// bcryptMax rejects strings longer than bcrypt can hash.
func bcryptMax(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= service.MaxPasswordBytes
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// validated binds the JSON body into T and checks its binding tags. On
// failure it aborts with 400 and the list of offending fields; otherwise the
// payload is stored on the context for payload[T].
func validated[T any](h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		raw, err := c.GetRawData()
		if err == nil {
			if len(bytes.TrimSpace(raw)) == 0 {
				err = binding.Validator.ValidateStruct(&req)
			} else {
				err = binding.JSON.BindBody(raw, &req)
			}
		}
		if err != nil {
			errs := fieldErrors[T](err)
			h.log.Infow("request_validation_failed",
				"path", c.FullPath(), "fields", errs, "err", err, "request_id", c.GetString(ctxRequestIDKey))
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Msg: msgInvalidInput, Errors: errs})
			return
		}
		c.Set(ctxPayloadKey, req)
		c.Next()
	}
}

// payload returns the body stored by validated[T].
func payload[T any](c *gin.Context) T {
	v, _ := c.Get(ctxPayloadKey)
	p, _ := v.(T)
	return p
}

func fieldErrors[T any](err error) []fieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError{Field: fe.Field(), Msg: messageFor[T](fe.Field(), fe.Tag())})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []fieldError{{Field: typeErr.Field, Msg: messageFor[T](typeErr.Field, "type")}}
	}
	return []fieldError{{Field: "body", Msg: msgMalformedBody}}
}

// messageFor reads the msg_<tag> tag, then the msg tag, of the field whose
// json name is field.
func messageFor[T any](field, tag string) string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if jsonFieldName(f) != field {
			continue
		}
		if msg := f.Tag.Get("msg_" + tag); msg != "" {
			return msg
		}
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
		break
	}
	return fmt.Sprintf("%s failed on %s", field, tag)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/carewell/carehome-api/pkg/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Debug exposes internal error detail in responses when set. Wired from
// config at startup; never enable in production.
var Debug bool

func NewSuccessResponse(code int, data interface{}) *Response {
	return &Response{Code: code, Data: data}
}

func NewMessageResponse(code int, message string, data interface{}) *Response {
	return &Response{Code: code, Message: message, Data: data}
}

func NewErrorResponse(code int, message string) *Response {
	return &Response{Code: code, Message: message}
}

// RespondOK writes a success envelope with matching HTTP status.
func RespondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, NewSuccessResponse(status, data))
}

// RespondError maps an error onto the taxonomy and writes the envelope.
// Internal errors hide their detail unless Debug is set.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		status := appErr.StatusCode()
		message := appErr.Message
		if status >= http.StatusInternalServerError {
			logInternal(c, err)
			if Debug && appErr.Err != nil {
				message = appErr.Error()
			}
		}
		c.JSON(status, NewErrorResponse(status, message))
		return
	}

	logInternal(c, err)
	message := "internal server error"
	if Debug {
		message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse(http.StatusInternalServerError, message))
}

func logInternal(c *gin.Context, err error) {
	log.Error().
		Err(err).
		Str("path", c.Request.URL.Path).
		Str("method", c.Request.Method).
		Str("request_id", c.GetString("request_id")).
		Msg("request failed")
}

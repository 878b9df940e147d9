// Package httperr renders every error that reaches echo as a JSON body with
// a status derived from the error's kind.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/healthmanager/healthmanager/internal/platform/apperr"
	"github.com/healthmanager/healthmanager/internal/platform/errorlog"
)

const internalMessage = "internal server error"

// Body is the error response.
type Body struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      int       `json:"status"`
	Error       string    `json:"error"`
	Message     string    `json:"message"`
	RequestPath string    `json:"request_path"`
}

type Handler struct {
	logger   zerolog.Logger
	recorder *errorlog.Recorder
	now      func() time.Time
}

// New returns a handler. recorder may be nil.
func New(logger zerolog.Logger, recorder *errorlog.Recorder) *Handler {
	return &Handler{logger: logger, recorder: recorder, now: time.Now}
}

// Status maps err to an HTTP status and the message safe to show the caller.
func Status(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound, apperr.MessageOf(err)
	case apperr.KindConflict:
		return http.StatusConflict, apperr.MessageOf(err)
	case apperr.KindInvalid:
		return http.StatusBadRequest, apperr.MessageOf(err)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, internalMessage
		}
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	return http.StatusInternalServerError, internalMessage
}

// Handle is an echo.HTTPErrorHandler.
func (h *Handler) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := Status(err)
	body := Body{
		Timestamp:   h.now().UTC(),
		Status:      status,
		Error:       http.StatusText(status),
		Message:     message,
		RequestPath: c.Request().URL.Path,
	}

	rid, _ := c.Get("request_id").(string)
	evt := h.logger.Warn()
	if status >= http.StatusInternalServerError {
		evt = h.logger.Error().Err(err)
	}
	evt.Str("request_id", rid).
		Int("status", status).
		Str("kind", apperr.KindOf(err).String()).
		Str("request_path", body.RequestPath).
		Msg(message)

	h.recorder.Record(c.Request().Context(), &errorlog.Entry{
		CreatedAt:   body.Timestamp,
		Status:      body.Status,
		Error:       body.Error,
		Message:     body.Message,
		RequestPath: body.RequestPath,
	})

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		h.logger.Error().Err(writeErr).Msg("failed to write error response")
	}
}

package crud

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthmanager/healthmanager/internal/platform/apperr"
	"github.com/healthmanager/healthmanager/pkg/pagination"
)

// Handler serves a Service over REST. Errors are returned untouched so the
// server's error handler can map them to a status code.
type Handler[Req Request, View any, Ref any] struct {
	svc    Service[Req, View, Ref]
	entity string
}

// NewHandler creates a handler. entity names the aggregate in response
// messages, e.g. "Customer".
func NewHandler[Req Request, View any, Ref any](svc Service[Req, View, Ref], entity string) *Handler[Req, View, Ref] {
	return &Handler[Req, View, Ref]{svc: svc, entity: entity}
}

// Service returns the service the handler serves.
func (h *Handler[Req, View, Ref]) Service() Service[Req, View, Ref] { return h.svc }

// RegisterRoutes mounts the five CRUD routes under path on g.
func (h *Handler[Req, View, Ref]) RegisterRoutes(g *echo.Group, path string) {
	g.POST(path, h.Create)
	g.GET(path, h.List)
	g.GET(path+"/:id", h.GetByID)
	g.PUT(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}

func (h *Handler[Req, View, Ref]) Create(c echo.Context) error {
	req, err := bindRequest[Req](c)
	if err != nil {
		return err
	}
	ref, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Resource{Message: h.entity + " created successfully!", Content: ref})
}

func (h *Handler[Req, View, Ref]) GetByID(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}
	view, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Resource{Content: view})
}

func (h *Handler[Req, View, Ref]) List(c echo.Context) error {
	page, err := h.svc.List(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler[Req, View, Ref]) Update(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}
	req, err := bindRequest[Req](c)
	if err != nil {
		return err
	}
	ref, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Resource{Message: h.entity + " updated successfully!", Content: ref})
}

func (h *Handler[Req, View, Ref]) Delete(c echo.Context) error {
	id, err := ParseID(c)
	if err != nil {
		return err
	}
	ref, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Resource{Message: h.entity + " deleted successfully!", Content: ref})
}

// ParseID reads the :id path parameter.
func ParseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func bindRequest[Req Request](c echo.Context) (Req, error) {
	var req Req
	if err := c.Bind(&req); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return req, appErr
		}
		return req, apperr.Wrap(apperr.KindInvalid, err, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

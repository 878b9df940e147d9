package customer

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthmanager/healthmanager/internal/platform/crud"
	"github.com/healthmanager/healthmanager/pkg/pagination"
)

type Handler struct {
	*crud.Handler[Request, View, Ref]
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		Handler: crud.NewHandler[Request, View, Ref](svc, "Customer"),
		svc:     svc,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/customers", h.Create)
	api.GET("/customers", h.List)
	api.GET("/customers/:id", h.GetByID)
	api.PUT("/customers/:id", h.Update)
	api.DELETE("/customers/:id", h.Delete)
}

// List returns customers ordered by risk score. An optional full_name query
// parameter filters by name fragment.
func (h *Handler) List(c echo.Context) error {
	page, err := h.svc.Search(c.Request().Context(), c.QueryParam("full_name"), pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

package healthproblem

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthmanager/healthmanager/internal/platform/crud"
)

type Handler struct {
	*crud.Handler[Request, View, Ref]
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		Handler: crud.NewHandler[Request, View, Ref](svc, "Health Problem"),
		svc:     svc,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	h.Handler.RegisterRoutes(api, "/health-problems")
	api.GET("/customers/:id/health-problems", h.ListByCustomer)
}

// ListByCustomer serves the problems owned by the customer in :id.
func (h *Handler) ListByCustomer(c echo.Context) error {
	id, err := crud.ParseID(c)
	if err != nil {
		return err
	}
	views, err := h.svc.ListByCustomer(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, crud.Resource{Content: views})
}

package healthproblem

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthmanager/healthmanager/internal/platform/apperr"
)

func newTestHandler() (*Handler, *echo.Echo, mockCustomers) {
	svc, _, customers := newTestService()
	return NewHandler(svc), echo.New(), customers
}

func TestHandler_Create(t *testing.T) {
	h, e, customers := newTestHandler()
	owner := newCustomer(customers)

	body := `{"customer_id":"` + owner.String() + `","problem_name":"flu","severity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/health-problems", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Message string `json:"message"`
		Content Ref    `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Health Problem created successfully!" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Content.ID == uuid.Nil || resp.Content.ProblemName != "flu" {
		t.Errorf("unexpected content %+v", resp.Content)
	}
}

func TestHandler_Create_Invalid(t *testing.T) {
	h, e, customers := newTestHandler()
	owner := newCustomer(customers)

	body := `{"customer_id":"` + owner.String() + `","problem_name":"flu","severity":7}`
	req := httptest.NewRequest(http.MethodPost, "/api/health-problems", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Create(c)
	if !apperr.IsInvalid(err) {
		t.Errorf("expected invalid error, got %v", err)
	}
}

func TestHandler_Create_MalformedBody(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/health-problems", strings.NewReader(`{"severity":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Create(c); !apperr.IsInvalid(err) {
		t.Errorf("expected invalid error, got %v", err)
	}
}

func TestHandler_Get(t *testing.T) {
	h, e, customers := newTestHandler()
	owner := newCustomer(customers)
	ref, err := h.Handler.Service().Create(context.Background(), Request{CustomerID: owner, ProblemName: "asthma", Severity: SeverityLow})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(ref.ID.String())

	if err := h.GetByID(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"problem_name":"asthma"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_Get_BadID(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.GetByID(c); !apperr.IsInvalid(err) {
		t.Errorf("expected invalid error, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.GetByID(c); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHandler_Delete(t *testing.T) {
	h, e, customers := newTestHandler()
	owner := newCustomer(customers)
	ref, err := h.Handler.Service().Create(context.Background(), Request{CustomerID: owner, ProblemName: "flu", Severity: SeverityHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(ref.ID.String())

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Health Problem deleted successfully!") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_List(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/health-problems?page=0&size=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"content":[]`) {
		t.Errorf("expected empty content array, got %s", rec.Body.String())
	}
}

func TestHandler_ListByCustomer(t *testing.T) {
	h, e, customers := newTestHandler()
	owner := newCustomer(customers)
	other := newCustomer(customers)
	for _, r := range []Request{
		{CustomerID: owner, ProblemName: "cold", Severity: SeverityLow},
		{CustomerID: other, ProblemName: "flu", Severity: SeverityHigh},
	} {
		if _, err := h.svc.Create(context.Background(), r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(owner.String())

	if err := h.ListByCustomer(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Content []View `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Content) != 1 || resp.Content[0].ProblemName != "cold" {
		t.Errorf("unexpected content %+v", resp.Content)
	}
}

func TestHandler_ListByCustomer_Empty(t *testing.T) {
	h, e, customers := newTestHandler()
	owner := newCustomer(customers)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(owner.String())

	if err := h.ListByCustomer(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"content":[]`) {
		t.Errorf("expected empty content array, got %s", rec.Body.String())
	}
}

func TestHandler_ListByCustomer_UnknownCustomer(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.ListByCustomer(c); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHandler_RegisterRoutes_ListByCustomer(t *testing.T) {
	h, e, customers := newTestHandler()
	owner := newCustomer(customers)
	h.RegisterRoutes(e.Group("/api"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers/"+owner.String()+"/health-problems", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

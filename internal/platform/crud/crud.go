// Package crud holds the create/read/update/delete contract shared by the
// customer and health-problem aggregates, and an echo handler that serves any
// implementation of it.
package crud

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthmanager/healthmanager/pkg/pagination"
)

// Request is a create/update body. Validate enforces field-level constraints
// before the service is called.
type Request interface {
	Validate() error
}

// Service is implemented once per aggregate. Ref is the short identity
// returned by mutations; View is the full read model.
type Service[Req Request, View any, Ref any] interface {
	Create(ctx context.Context, req Req) (Ref, error)
	GetByID(ctx context.Context, id uuid.UUID) (View, error)
	List(ctx context.Context, p pagination.Params) (*pagination.Page[View], error)
	Update(ctx context.Context, id uuid.UUID, req Req) (Ref, error)
	Delete(ctx context.Context, id uuid.UUID) (Ref, error)
}

// Resource is the response envelope for single-entity responses.
type Resource struct {
	Message string      `json:"message,omitempty"`
	Content interface{} `json:"content"`
}

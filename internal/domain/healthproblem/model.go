package healthproblem

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/healthmanager/healthmanager/internal/platform/apperr"
)

// Severity is 1 (low) or 2 (high).
type Severity int

const (
	SeverityLow  Severity = 1
	SeverityHigh Severity = 2
)

func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityHigh
}

const (
	NameMinLen = 3
	NameMaxLen = 50
)

// HealthProblem maps to the health_problem table. Ownership is one-directional:
// the problem stores its customer's id and the customer side is derived by
// query.
type HealthProblem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Seq         int64     `db:"seq" json:"-"`
	CustomerID  uuid.UUID `db:"customer_id" json:"customer_id"`
	ProblemName string    `db:"problem_name" json:"problem_name"`
	Severity    Severity  `db:"severity" json:"severity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// View is the read model returned by the API and embedded in customer views.
type View struct {
	ID          uuid.UUID `json:"id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	ProblemName string    `json:"problem_name"`
	Severity    Severity  `json:"severity"`
}

func (hp *HealthProblem) ToView() View {
	return View{
		ID:          hp.ID,
		CustomerID:  hp.CustomerID,
		ProblemName: hp.ProblemName,
		Severity:    hp.Severity,
	}
}

// Ref is returned by mutations.
type Ref struct {
	ID          uuid.UUID `json:"id"`
	ProblemName string    `json:"problem_name,omitempty"`
}

// Request is the create/update body. CustomerID is required on create and
// ignored on update, since a problem never changes owner.
type Request struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	ProblemName string    `json:"problem_name"`
	Severity    Severity  `json:"severity"`
}

func (r Request) Validate() error {
	var v apperr.Violations
	if strings.TrimSpace(r.ProblemName) == "" {
		v = append(v, "Problem name shouldn't be null")
	} else {
		n := utf8.RuneCountInString(r.ProblemName)
		v.Check(n >= NameMinLen && n <= NameMaxLen,
			"Problem name must be greater than 3 and up to 50 characters")
	}
	v.Check(r.Severity.Valid(), "Invalid or null severity. Severity Check: '1' or '2'")
	return v.Err()
}

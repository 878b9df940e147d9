package customer

import (
	"bytes"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/healthmanager/healthmanager/internal/domain/healthproblem"
	"github.com/healthmanager/healthmanager/internal/domain/scoring"
	"github.com/healthmanager/healthmanager/internal/platform/apperr"
)

// Sex takes the ISO/IEC 5218 categories by name.
type Sex string

const (
	SexNotKnow       Sex = "NOT_KNOW"
	SexMale          Sex = "MALE"
	SexFemale        Sex = "FEMALE"
	SexNotApplicable Sex = "NOT_APPLICABLE"
)

func (s Sex) Valid() bool {
	switch s {
	case SexNotKnow, SexMale, SexFemale, SexNotApplicable:
		return true
	}
	return false
}

const (
	NameMinLen = 3
	NameMaxLen = 50

	DateLayout = "2006-01-02"
)

const dateBirthMessage = "Invalid or null date of birth. Format: 'yyyy-MM-dd'"

// Date is a calendar date serialized as yyyy-MM-dd.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a yyyy-MM-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, apperr.Wrap(apperr.KindInvalid, err, dateBirthMessage)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Customer maps to the customer table. Its health problems are not stored on
// the row; they are read through the health-problem store by customer id.
type Customer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Seq       int64     `db:"seq" json:"-"`
	FullName  string    `db:"full_name" json:"full_name"`
	DateBirth Date      `db:"date_birth" json:"date_birth"`
	Sex       Sex       `db:"sex" json:"sex"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// View is the composed read model: the customer, its risk score and its
// health problems ordered by severity.
type View struct {
	ID             uuid.UUID            `json:"id"`
	FullName       string               `json:"full_name"`
	DateBirth      Date                 `json:"date_birth"`
	Sex            Sex                  `json:"sex"`
	Score          scoring.Score        `json:"score"`
	HealthProblems []healthproblem.View `json:"health_problems"`
}

// Ref is returned by mutations.
type Ref struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name,omitempty"`
}

// Request is the create/update body.
type Request struct {
	FullName  string `json:"full_name"`
	DateBirth *Date  `json:"date_birth"`
	Sex       Sex    `json:"sex"`
}

func (r Request) Validate() error {
	var v apperr.Violations
	if strings.TrimSpace(r.FullName) == "" {
		v = append(v, "Name shouldn't be null")
	} else {
		n := utf8.RuneCountInString(r.FullName)
		v.Check(n >= NameMinLen && n <= NameMaxLen,
			"Name must be greater than 3 and up to 50 characters")
	}
	v.Check(r.DateBirth != nil && !r.DateBirth.IsZero(), dateBirthMessage)
	v.Check(r.Sex.Valid(),
		"Invalid or null sex. Enum Check: 'NOT_KNOW', 'MALE', 'FEMALE' or 'NOT_APPLICABLE'")
	return v.Err()
}

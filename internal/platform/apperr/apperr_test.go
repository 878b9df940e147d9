package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("customer %s not found", "x"), KindNotFound},
		{"conflict", Conflict("duplicate"), KindConflict},
		{"invalid", Invalid("bad"), KindInvalid},
		{"wrapped", fmt.Errorf("service: %w", Conflict("duplicate")), KindConflict},
		{"plain", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(KindConflict, cause, "health problem already exists")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsConflict(err))
	assert.Equal(t, "health problem already exists: duplicate key", err.Error())
	assert.Equal(t, "health problem already exists", MessageOf(err))
}

func TestMessageOf_Plain(t *testing.T) {
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestViolations(t *testing.T) {
	var v Violations
	assert.NoError(t, v.Err())

	v.Check(true, "never recorded")
	v.Check(false, "name is required")
	v.Check(false, "severity must be 1 or 2")

	err := v.Err()
	assert.True(t, IsInvalid(err))
	assert.Equal(t, "name is required, severity must be 1 or 2", err.Error())
}

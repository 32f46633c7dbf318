package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSample = Validation("weights_sum", "soma dos pesos deve ser 100%")

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("set weights: %w", errSample.Withf("atual %.0f%%", 90.0))

	assert.True(t, errors.Is(err, errSample))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "weights_sum", CodeOf(err))
	assert.Equal(t, "soma dos pesos deve ser 100%: atual 90%", MessageOf(err))
}

func TestUnclassifiedErrorIsInternal(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal_error", CodeOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
}

func TestInternalDoesNotLeakCause(t *testing.T) {
	err := Internal("store_failed", errors.New("pq: relation missing"))

	assert.Equal(t, "internal error", MessageOf(err))
	assert.ErrorContains(t, err, "relation missing")
}

func TestDifferentCodesDoNotMatch(t *testing.T) {
	other := Validation("dates", "data final anterior à inicial")
	assert.False(t, errors.Is(other, errSample))
}

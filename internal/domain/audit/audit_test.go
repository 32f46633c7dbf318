package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{Action: ActionConsensus, EntityID: "ev1"})

	assert.Equal(t, "SELECT COUNT(1) FROM audit_events WHERE 1=1 AND action = $1 AND entity_id = $2", query)
	assert.Equal(t, []any{ActionConsensus, "ev1"}, args)
}

func TestBuildBaseQueryNoFilter(t *testing.T) {
	query, args := buildBaseQuery("SELECT id", Filter{})
	assert.Equal(t, "SELECT id FROM audit_events WHERE 1=1", query)
	assert.Empty(t, args)
}

func TestMarshalOptional(t *testing.T) {
	b, err := marshalOptional(nil)
	assert.NoError(t, err)
	assert.Nil(t, b)

	b, err = marshalOptional(map[string]float64{"finalScore": 81.11})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"finalScore":81.11}`, string(b))
}

package outbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinged struct {
	ID string `json:"id"`
}

func (pinged) EventName() string { return "pinged" }

func (p pinged) PartitionKey() string { return p.ID }

type anonymous struct{}

func (anonymous) EventName() string { return "anonymous" }

func TestJSONDecoder(t *testing.T) {
	e, err := JSONDecoder[pinged]()([]byte(`{"id":"42"}`))
	require.NoError(t, err)
	assert.Equal(t, pinged{ID: "42"}, e)

	_, err = JSONDecoder[pinged]()([]byte(`{`))
	assert.ErrorContains(t, err, "decode pinged")
}

func TestPartitionKey(t *testing.T) {
	assert.Equal(t, "42", PartitionKey(pinged{ID: "42"}))
	assert.Equal(t, "pinged", PartitionKey(pinged{}))
	assert.Equal(t, "anonymous", PartitionKey(anonymous{}))
}

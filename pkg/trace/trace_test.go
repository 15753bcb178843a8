package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsure(t *testing.T) {
	assert.Equal(t, "abc-123", Ensure(" abc-123 "))
	assert.Len(t, Ensure(""), 32)
	assert.NotEqual(t, "bad\nid", Ensure("bad\nid"))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "t1")
	assert.Equal(t, "t1", FromContext(ctx))
	assert.Empty(t, FromContext(context.Background()))
}

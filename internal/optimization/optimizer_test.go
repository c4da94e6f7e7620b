package optimization

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	f := WithContext(ctx, func(x []float64) (float64, error) {
		calls++
		return sphere(x)
	})

	v, err := f([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	cancel()
	_, err = f([]float64{1, 2})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls, "a cancelled objective is not called")
}

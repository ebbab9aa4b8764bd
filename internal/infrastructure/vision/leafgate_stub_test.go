//go:build !gocv

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLeafGateStub_PassesThrough(t *testing.T) {
	next := NewMockDetector(newCatalog(t), 0)
	gate, err := NewLeafGate(next, 0.2)
	require.EqualError(t, err, "gocv build tag is not enabled")

	want, _ := next.Detect(context.Background(), []byte("leaf"))
	got, err := gate.Detect(context.Background(), []byte("leaf"))
	require.NoError(t, err)
	require.Equal(t, want.IsRiceLeaf, got.IsRiceLeaf)
}

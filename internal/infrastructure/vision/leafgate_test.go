//go:build gocv
// +build gocv

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"rice-bot/internal/domain/entity"
)

// solidPNG кодирует однотонную картинку в BGR
func solidPNG(t *testing.T, b, g, r float64) []byte {
	t.Helper()
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), 64, 64, gocv.MatTypeCV8UC3)
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	require.NoError(t, err)
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...)
}

func TestLeafGate_Undecodable(t *testing.T) {
	gate, err := NewLeafGate(NewMockDetector(newCatalog(t), 0), 0.2)
	require.NoError(t, err)

	for _, data := range [][]byte{[]byte("not an image"), {0x89, 'P', 'N', 'G'}} {
		res, err := gate.Detect(context.Background(), data)
		require.NoError(t, err)
		require.False(t, res.IsRiceLeaf)
		require.Nil(t, res.Disease)
	}
}

func TestLeafGate_GreenRatio(t *testing.T) {
	gate, err := NewLeafGate(NewMockDetector(newCatalog(t), 0), 0.2)
	require.NoError(t, err)

	red := solidPNG(t, 0, 0, 220)
	ratio, ok := gate.greenRatio(red)
	require.True(t, ok)
	require.Less(t, ratio, 0.2)

	res, err := gate.Detect(context.Background(), red)
	require.NoError(t, err)
	require.False(t, res.IsRiceLeaf)

	green := solidPNG(t, 30, 180, 40)
	ratio, ok = gate.greenRatio(green)
	require.True(t, ok)
	require.Greater(t, ratio, 0.9)
}

func TestLeafGate_EmptyImage(t *testing.T) {
	gate, err := NewLeafGate(NewMockDetector(newCatalog(t), 0), 0.2)
	require.NoError(t, err)

	_, err = gate.Detect(context.Background(), nil)
	require.ErrorIs(t, err, entity.ErrEmptyImage)
}

package vision

import (
	"context"
	"crypto/sha256"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/infrastructure/catalog"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

// imageWhere подбирает байты, хеш которых удовлетворяет условию.
func imageWhere(t *testing.T, match func(sum [32]byte) bool) []byte {
	t.Helper()
	for i := 0; i < 10000; i++ {
		data := []byte(fmt.Sprintf("leaf-%d", i))
		if match(sha256.Sum256(data)) {
			return data
		}
	}
	t.Fatal("no matching input found")
	return nil
}

func TestMockDetector_EmptyImage(t *testing.T) {
	d := NewMockDetector(newCatalog(t), 0)
	_, err := d.Detect(context.Background(), nil)
	require.ErrorIs(t, err, entity.ErrEmptyImage)
}

func TestMockDetector_Deterministic(t *testing.T) {
	d := NewMockDetector(newCatalog(t), 0)
	img := imageWhere(t, func(sum [32]byte) bool { return sum[0]%notLeafEvery != 0 })

	first, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), img)
	require.NoError(t, err)

	require.True(t, first.IsRiceLeaf)
	require.NotNil(t, first.Disease)
	require.Equal(t, first.Disease.Name, second.Disease.Name)
	require.Equal(t, first.Confidence, second.Confidence)
	require.GreaterOrEqual(t, first.Confidence, 0.85)
	require.Less(t, first.Confidence, 1.0)
	require.NotNil(t, first.ProcessingTime)
}

func TestMockDetector_NotALeaf(t *testing.T) {
	d := NewMockDetector(newCatalog(t), 0)
	img := imageWhere(t, func(sum [32]byte) bool { return sum[0]%notLeafEvery == 0 })

	result, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	require.False(t, result.IsRiceLeaf)
	require.Nil(t, result.Disease)
	require.LessOrEqual(t, result.Confidence, 0.5)
}

func TestMockDetector_DelayHonoursContext(t *testing.T) {
	d := NewMockDetector(newCatalog(t), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Detect(ctx, []byte("leaf"))
	require.ErrorIs(t, err, context.Canceled)
}

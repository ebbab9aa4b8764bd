package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClampConfidence(t *testing.T) {
	require.Equal(t, 0.0, ClampConfidence(-0.5))
	require.Equal(t, 1.0, ClampConfidence(1.7))
	require.Equal(t, 0.8532, ClampConfidence(0.8532))
	require.Equal(t, 0.0, ClampConfidence(math.NaN()))
}

func TestNormalize_DropsDiseaseForNonLeaf(t *testing.T) {
	r := &DetectionResult{IsRiceLeaf: false, Confidence: 2, Disease: &Disease{Name: "x"}}
	r.Normalize()
	require.Nil(t, r.Disease)
	require.Equal(t, 1.0, r.Confidence)
}

func TestWithProcessingTime_NegativeDropped(t *testing.T) {
	r := NewLeafResult(0.9, nil).WithProcessingTime(-3)
	require.Nil(t, r.ProcessingTime)

	r = NewLeafResult(0.9, nil).WithProcessingTime(12.5)
	require.NotNil(t, r.ProcessingTime)
	require.Equal(t, 12.5, *r.ProcessingTime)
}

func TestResolveView(t *testing.T) {
	leaf := NewLeafResult(0.99, &Disease{Name: "Rice Blast"})

	require.Equal(t, ViewIdle, ResolveView(nil, false))
	require.Equal(t, ViewProcessing, ResolveView(nil, true))
	require.Equal(t, ViewProcessing, ResolveView(leaf, true))
	require.Equal(t, ViewNotALeaf, ResolveView(NewNotLeafResult(0.1), false))
	require.Equal(t, ViewDiagnosis, ResolveView(leaf, false))
	require.Equal(t, ViewDiagnosis, ResolveView(NewLeafResult(0.7, nil), false))
}

func TestHasDiagnosis(t *testing.T) {
	require.False(t, (*DetectionResult)(nil).HasDiagnosis())
	require.False(t, NewLeafResult(0.7, nil).HasDiagnosis())
	require.True(t, NewLeafResult(0.7, &Disease{Name: "x"}).HasDiagnosis())
}

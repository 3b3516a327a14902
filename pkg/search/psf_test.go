package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianPSFNormalizedSumsToOne(t *testing.T) {
	p := NewGaussianPSF(2.0)
	assert.InDelta(t, 1.0, p.GetSum(), 1e-6)
}

func TestExplicitPSFRejectsEvenDim(t *testing.T) {
	_, err := NewExplicitPSF(4, make([]float64, 16))
	require.Error(t, err)
}

func TestExplicitPSFNormalizes(t *testing.T) {
	p, err := NewExplicitPSF(3, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.GetSum(), 1e-9)
}

func TestPSFSquaredDoesNotRenormalize(t *testing.T) {
	p := NewGaussianPSF(1.0)
	sq := p.Squared()
	assert.Less(t, sq.GetSum(), p.GetSum())
}

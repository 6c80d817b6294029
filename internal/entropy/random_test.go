package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Float(), b.Float())
		assert.Equal(t, a.Normal(2), b.Normal(2))
	}
}

func TestRestoreContinuesSequence(t *testing.T) {
	a := New(99)
	for i := 0; i < 17; i++ {
		a.Normal(1)
		a.Range(-1, 1)
	}
	st := a.State()
	require.NotZero(t, st.Draws)

	b := Restore(st)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float(), b.Float())
	}
	assert.Equal(t, a.State(), b.State())
}

func TestDeriveIsIndependent(t *testing.T) {
	root := New(1)
	sub := root.Derive(300)
	assert.Equal(t, int64(301), sub.Seed())
	assert.Zero(t, root.State().Draws)
}

func TestRangeBounds(t *testing.T) {
	s := New(3)
	for i := 0; i < 1000; i++ {
		v := s.Range(-0.15, 0.15)
		assert.GreaterOrEqual(t, v, -0.15)
		assert.Less(t, v, 0.15)
	}
}

func TestCryptoSeedNonNegative(t *testing.T) {
	assert.GreaterOrEqual(t, CryptoSeed(), int64(0))
}

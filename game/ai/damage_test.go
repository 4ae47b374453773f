package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDamageTypes(t *testing.T) {
	d, err := ParseDamageTypes([]string{"near"})
	require.NoError(t, err)
	assert.True(t, d.Has(DamageNear))
	assert.False(t, d.Has(DamageDistant))

	d, err = ParseDamageTypes([]string{" Distant ", "NEAR", "near"})
	require.NoError(t, err)
	assert.Equal(t, DamageNear|DamageDistant, d)
	assert.Equal(t, "near|distant", d.String())

	d, err = ParseDamageTypes(nil)
	require.NoError(t, err)
	assert.Equal(t, "none", d.String())
	assert.False(t, d.Has(0))

	_, err = ParseDamageTypes([]string{"laser"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTicks(t *testing.T) {
	assert.Equal(t, 20, Ticks(time.Second, 50*time.Millisecond))
	assert.Equal(t, 3, Ticks(101*time.Millisecond, 50*time.Millisecond), "rounds up")
	assert.Equal(t, 1, Ticks(0, 50*time.Millisecond))
	assert.Equal(t, 1, Ticks(time.Millisecond, 50*time.Millisecond))
	assert.Equal(t, 60, Ticks(ReacquireDelay, 50*time.Millisecond))
}

func TestHealthPool(t *testing.T) {
	h := NewHealthPool(15)
	assert.False(t, h.Apply(10))
	assert.Equal(t, 5, h.Life())
	assert.False(t, h.Apply(-20), "negative damage does not heal")
	assert.Equal(t, 5, h.Life())
	assert.True(t, h.Apply(6))
	assert.Equal(t, -1, h.Life())
	assert.True(t, h.Depleted())
	assert.Equal(t, 15, h.Max())

	exact := NewHealthPool(4)
	assert.True(t, exact.Apply(4))
	assert.Equal(t, 0, exact.Life())
}

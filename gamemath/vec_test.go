package gamemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Full3D(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(Vec3{}, Vec3{X: 3, Z: 4}), 1e-9)
	assert.InDelta(t, math.Sqrt(3), Distance(Vec3{}, Vec3{1, 1, 1}), 1e-9)
}

func TestYawTowards_IgnoresHeight(t *testing.T) {
	from := Vec3{}
	assert.InDelta(t, 0, YawTowards(from, Vec3{Y: 10, Z: 5}), 1e-9)
	assert.InDelta(t, math.Pi/2, YawTowards(from, Vec3{X: 3, Y: -2}), 1e-9)
	assert.Equal(t, 0.0, YawTowards(from, Vec3{Y: 4}))
}

func TestForward_MatchesYaw(t *testing.T) {
	f := Forward(YawTowards(Vec3{}, Vec3{X: 1, Z: 1}))
	assert.InDelta(t, math.Sqrt2/2, f.X, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, f.Z, 1e-9)
	assert.Equal(t, 0.0, f.Y)
}

func TestMoveTowards(t *testing.T) {
	p, arrived := MoveTowards(Vec3{}, Vec3{X: 10}, 4)
	assert.False(t, arrived)
	assert.InDelta(t, 4, p.X, 1e-9)

	p, arrived = MoveTowards(p, Vec3{X: 10}, 7)
	assert.True(t, arrived)
	assert.Equal(t, Vec3{X: 10}, p)
}

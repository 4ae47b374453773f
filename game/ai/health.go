package ai

// HealthPool tracks remaining life. Life only goes down; there is no reset.
type HealthPool struct {
	life int
	max  int
}

// NewHealthPool starts a pool at max.
func NewHealthPool(max int) HealthPool {
	return HealthPool{life: max, max: max}
}

// Apply subtracts amount and reports whether the pool is depleted.
// Negative amounts are ignored. Life may go below zero; any value <= 0 is
// depleted.
func (h *HealthPool) Apply(amount int) bool {
	if amount > 0 {
		h.life -= amount
	}
	return h.Depleted()
}

// Life returns the remaining life.
func (h HealthPool) Life() int { return h.life }

// Max returns the starting life.
func (h HealthPool) Max() int { return h.max }

// Depleted reports whether life has reached zero or below.
func (h HealthPool) Depleted() bool { return h.life <= 0 }

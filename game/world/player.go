package world

import (
	"sync"

	"github.com/kasuganosora/patrolbot/gamemath"
	"go.uber.org/zap"
)

// Player is the entity bots hunt. Damage from any number of bots is applied
// as independent subtractions.
type Player struct {
	mu      sync.Mutex
	pos     gamemath.Vec3
	life    int
	maxLife int
	logger  *zap.Logger
}

// PlayerSnapshot is a read-only view of the player.
type PlayerSnapshot struct {
	Position gamemath.Vec3 `json:"position"`
	Life     int           `json:"life"`
	MaxLife  int           `json:"max_life"`
	Defeated bool          `json:"defeated"`
}

// NewPlayer creates a player at pos with the given life.
func NewPlayer(pos gamemath.Vec3, life int, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{pos: pos, life: life, maxLife: life, logger: logger}
}

// Position returns the player's current position.
func (p *Player) Position() gamemath.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// MoveTo places the player at pos.
func (p *Player) MoveTo(pos gamemath.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
}

// ApplyDamage subtracts amount from the player's life.
func (p *Player) ApplyDamage(amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	wasAlive := p.life > 0
	p.life -= amount
	if wasAlive && p.life <= 0 {
		p.logger.Info("player defeated", zap.Int("life", p.life))
	}
}

// Life returns the player's remaining life.
func (p *Player) Life() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.life
}

// Snapshot captures the player's current state.
func (p *Player) Snapshot() PlayerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PlayerSnapshot{Position: p.pos, Life: p.life, MaxLife: p.maxLife, Defeated: p.life <= 0}
}

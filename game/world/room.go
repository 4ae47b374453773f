package world

import (
	"sort"
	"sync"
	"time"

	"github.com/kasuganosora/patrolbot/events"
	"github.com/kasuganosora/patrolbot/game/ai"
	"github.com/kasuganosora/patrolbot/game/nav"
	"github.com/kasuganosora/patrolbot/gamemath"
	"github.com/kasuganosora/patrolbot/resource"
	"github.com/kasuganosora/patrolbot/scheduler"
	"go.uber.org/zap"
)

const defaultTickInterval = 50 * time.Millisecond // 20 TPS

// Options tunes a Room.
type Options struct {
	TickInterval time.Duration
	StatusEvery  time.Duration // period of the room_status log; 0 disables it
	Events       events.Sink   // nil discards events
}

// BotView is the client-visible bot state for debug payloads.
type BotView struct {
	ai.Snapshot
	LastCue string `json:"last_cue,omitempty"`
}

type botEntry struct {
	bot       *ai.Bot
	agent     *nav.Agent
	lastCue   ai.Cue
	lastState ai.BotState
}

// Room runs one arena with its own game loop. All bot logic, timers and
// projectiles advance on the loop goroutine under mu.
type Room struct {
	grid             *nav.Grid
	player           *Player
	bots             []*botEntry // spawn order
	projectiles      map[int64]*Projectile
	nextProjectileID int64
	sched            *scheduler.Scheduler
	interval         time.Duration
	events           events.Sink
	mu               sync.RWMutex
	stopCh           chan struct{}
	logger           *zap.Logger
}

// NewRoom creates a Room on level but does not start the game loop.
func NewRoom(level *resource.Level, player *Player, opts Options, logger *zap.Logger) *Room {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	room := &Room{
		grid:        nav.NewGrid(level.Pass, level.CellSize),
		player:      player,
		projectiles: make(map[int64]*Projectile),
		sched:       scheduler.New(logger),
		interval:    opts.TickInterval,
		events:      opts.Events,
		stopCh:      make(chan struct{}),
		logger:      logger,
	}
	if opts.StatusEvery > 0 {
		room.sched.AddTicker("room_status", ai.Ticks(opts.StatusEvery, opts.TickInterval), room.logStatus)
	}
	return room
}

// AddBot places a bot at pos and wires it to the room.
func (room *Room) AddBot(cfg ai.BotConfig, pos gamemath.Vec3, speed float64) (*ai.Bot, error) {
	room.mu.Lock()
	defer room.mu.Unlock()

	entry := &botEntry{agent: nav.NewAgent(room.grid, pos, speed)}
	bot, err := ai.NewBot(cfg, ai.Deps{
		Nav:          entry.agent,
		Target:       &botTarget{room: room, entry: entry},
		Cues:         ai.CueFunc(func(c ai.Cue) { room.recordCue(entry, c) }),
		Projectiles:  room,
		Timers:       room.sched,
		TickInterval: room.interval,
		OnDestroyed:  room.removeBot,
		Logger:       room.logger,
	})
	if err != nil {
		return nil, err
	}
	entry.bot = bot
	entry.lastState = bot.State()
	room.bots = append(room.bots, entry)
	room.emitBot(events.KindBotSpawned, bot, map[string]any{
		"position":     pos,
		"damage_types": cfg.DamageTypes.String(),
	})
	room.logger.Info("bot spawned",
		zap.String("bot_id", bot.ID),
		zap.String("bot_name", bot.Name),
		zap.Float64("x", pos.X),
		zap.Float64("z", pos.Z))
	return bot, nil
}

// removeBot drops a destroyed bot from the world. Called with mu held.
func (room *Room) removeBot(b *ai.Bot) {
	for i, e := range room.bots {
		if e.bot == b {
			room.bots = append(room.bots[:i], room.bots[i+1:]...)
			break
		}
	}
	room.logger.Info("bot removed", zap.String("bot_id", b.ID))
	room.emitBot(events.KindBotDestroyed, b, nil)
}

// recordCue keeps the latest animation cue. Called with mu held.
func (room *Room) recordCue(e *botEntry, c ai.Cue) {
	e.lastCue = c
	if e.bot != nil {
		room.emitBot(events.KindBotCue, e.bot, map[string]any{"cue": string(c)})
	}
}

// trackState reports a state change since the last tick. Called with mu held.
func (room *Room) trackState(e *botEntry) {
	st := e.bot.State()
	if st == e.lastState {
		return
	}
	room.emitBot(events.KindBotState, e.bot, map[string]any{
		"from": e.lastState.String(),
		"to":   st.String(),
	})
	e.lastState = st
}

func (room *Room) emit(ev events.Event) {
	if room.events == nil {
		return
	}
	ev.Tick = room.sched.Now()
	room.events.Emit(ev)
}

func (room *Room) emitBot(kind string, b *ai.Bot, data map[string]any) {
	room.emit(events.Event{Kind: kind, BotID: b.ID, BotName: b.Name, Data: data})
}

// botTarget is the player as seen by one bot, so damage can be traced back to
// its source.
type botTarget struct {
	room  *Room
	entry *botEntry
}

func (t *botTarget) Position() gamemath.Vec3 { return t.room.player.Position() }

func (t *botTarget) ApplyDamage(amount int) {
	t.room.damagePlayer(amount, t.entry.bot.ID, "near")
}

// damagePlayer applies damage from source to the player. Called with mu held.
func (room *Room) damagePlayer(amount int, source, via string) {
	if amount <= 0 {
		return
	}
	wasAlive := room.player.Life() > 0
	room.player.ApplyDamage(amount)
	life := room.player.Life()
	room.emit(events.Event{Kind: events.KindPlayerDamaged, BotID: source, Data: map[string]any{
		"amount": amount,
		"life":   life,
		"via":    via,
	}})
	if wasAlive && life <= 0 {
		room.emit(events.Event{Kind: events.KindPlayerDefeated, BotID: source})
	}
}

// Run starts the fixed-interval game loop. Call in a goroutine.
func (room *Room) Run() {
	ticker := time.NewTicker(room.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			room.Tick()
		case <-room.stopCh:
			return
		}
	}
}

// Stop signals the game loop to exit.
func (room *Room) Stop() {
	select {
	case <-room.stopCh:
	default:
		close(room.stopCh)
	}
}

// StopChan returns a channel that is closed when this room is stopped.
func (room *Room) StopChan() <-chan struct{} {
	return room.stopCh
}

// Tick advances the world by one step: timers, then bot decisions, then
// movement, then projectiles.
func (room *Room) Tick() {
	room.mu.Lock()
	defer room.mu.Unlock()

	room.sched.Advance()
	bots := append([]*botEntry(nil), room.bots...)
	for _, e := range bots {
		e.bot.Tick()
		room.trackState(e)
	}
	step := room.interval.Seconds()
	for _, e := range bots {
		if !e.bot.Destroyed() {
			e.agent.Step(e.agent.Speed() * step)
		}
	}
	room.stepProjectiles()
}

// logStatus runs as a scheduler ticker inside Tick.
func (room *Room) logStatus() {
	counts := make(map[string]int)
	for _, e := range room.bots {
		counts[e.bot.State().String()]++
	}
	room.logger.Debug("room status",
		zap.Int("bots", len(room.bots)),
		zap.Int("pursuing", counts[ai.StatePursuing.String()]+counts[ai.StateBlocked.String()]),
		zap.Int("projectiles", len(room.projectiles)),
		zap.Int("player_life", room.player.Life()))
}

// ---- Debug accessors (safe from any goroutine) ----

func (e *botEntry) view() BotView {
	return BotView{Snapshot: e.bot.Snapshot(), LastCue: string(e.lastCue)}
}

func (room *Room) find(id string) *botEntry {
	for _, e := range room.bots {
		if e.bot.ID == id {
			return e
		}
	}
	return nil
}

// Bots returns every live bot in spawn order.
func (room *Room) Bots() []BotView {
	room.mu.RLock()
	defer room.mu.RUnlock()
	out := make([]BotView, 0, len(room.bots))
	for _, e := range room.bots {
		out = append(out, e.view())
	}
	return out
}

// Bot returns the bot with the given id.
func (room *Room) Bot(id string) (BotView, bool) {
	room.mu.RLock()
	defer room.mu.RUnlock()
	if e := room.find(id); e != nil {
		return e.view(), true
	}
	return BotView{}, false
}

// PatrolPreview returns the debug overlay for a bot.
func (room *Room) PatrolPreview(id string) (ai.Preview, bool) {
	room.mu.RLock()
	defer room.mu.RUnlock()
	if e := room.find(id); e != nil {
		return e.bot.PatrolPreview(), true
	}
	return ai.Preview{}, false
}

// DamageBot applies damage to a bot and returns its resulting state. A bot
// destroyed by the hit is removed from the room.
func (room *Room) DamageBot(id string, amount int) (BotView, bool) {
	room.mu.Lock()
	defer room.mu.Unlock()
	e := room.find(id)
	if e == nil {
		return BotView{}, false
	}
	life := e.bot.Life()
	if amount > 0 {
		life -= amount
	}
	room.emitBot(events.KindBotDamaged, e.bot, map[string]any{
		"amount": amount,
		"life":   life,
	})
	e.bot.ApplyDamage(amount)
	return e.view(), true
}

// Player returns the room's player.
func (room *Room) Player() *Player { return room.player }

// MovePlayer places the player at pos. It reports false, leaving the player
// where it was, when pos is not on a walkable cell.
func (room *Room) MovePlayer(pos gamemath.Vec3) bool {
	if !room.grid.Walkable(pos) {
		return false
	}
	room.player.MoveTo(pos)
	return true
}

// Timers lists outstanding bot timers.
func (room *Room) Timers() []scheduler.Pending { return room.sched.Pending() }

// Projectiles returns live projectiles ordered by id.
func (room *Room) Projectiles() []Projectile {
	room.mu.RLock()
	defer room.mu.RUnlock()
	out := make([]Projectile, 0, len(room.projectiles))
	for _, p := range room.projectiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Metrics summarises the room for the debug API.
type Metrics struct {
	Tick        uint64         `json:"tick"`
	TickMs      int64          `json:"tick_ms"`
	Bots        int            `json:"bots"`
	States      map[string]int `json:"states"`
	Projectiles int            `json:"projectiles"`
	Timers      int            `json:"timers"`
	Tickers     []string       `json:"tickers"`
}

// Metrics returns a point-in-time summary of the room.
func (room *Room) Metrics() Metrics {
	room.mu.RLock()
	defer room.mu.RUnlock()
	states := make(map[string]int)
	for _, e := range room.bots {
		states[e.bot.State().String()]++
	}
	return Metrics{
		Tick:        room.sched.Now(),
		TickMs:      room.interval.Milliseconds(),
		Bots:        len(room.bots),
		States:      states,
		Projectiles: len(room.projectiles),
		Timers:      len(room.sched.Pending()),
		Tickers:     room.sched.ListTickers(),
	}
}

// Now returns the number of ticks run so far.
func (room *Room) Now() uint64 { return room.sched.Now() }

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasuganosora/patrolbot/events"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Player   PlayerConfig   `mapstructure:"player"`
	Bots     []BotConfig    `mapstructure:"bots"`
	Events   events.Config  `mapstructure:"events"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Debug          bool          `mapstructure:"debug"`
	DebugAddr      string        `mapstructure:"debug_addr"`   // debug overlay API; empty disables it
	DebugAllow     []string      `mapstructure:"debug_allow"`  // client networks; empty allows all
	DebugSecret    string        `mapstructure:"debug_secret"` // signs operator tokens; empty leaves mutations open
	DebugTokenTTL  time.Duration `mapstructure:"debug_token_ttl"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig selects where room events and operator actions are
// recorded. An empty Mode disables recording.
type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // "" | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
	FlushEvery   time.Duration `mapstructure:"flush_every"`
	BatchSize    int           `mapstructure:"batch_size"`
}

type GameConfig struct {
	TickMs          int     `mapstructure:"tick_ms"`
	LevelPath       string  `mapstructure:"level_path"` // TMX file; empty means an open arena
	CellSize        float64 `mapstructure:"cell_size"`
	Width           int     `mapstructure:"width"`  // open arena size in cells
	Height          int     `mapstructure:"height"` // open arena size in cells
	StatusIntervalS int     `mapstructure:"status_interval_s"`
}

// TickInterval returns the fixed simulation step.
func (g GameConfig) TickInterval() time.Duration {
	return time.Duration(g.TickMs) * time.Millisecond
}

type PlayerConfig struct {
	Position PointConfig `mapstructure:"position"`
	Life     int         `mapstructure:"life"`
}

type PointConfig struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	Z float64 `mapstructure:"z"`
}

type BotConfig struct {
	Name                 string              `mapstructure:"name"`
	Position             PointConfig         `mapstructure:"position"`
	Speed                float64             `mapstructure:"speed"`
	RadiusTrigger        float64             `mapstructure:"radius_trigger"`
	Life                 int                 `mapstructure:"life"`
	Waypoints            []PointConfig       `mapstructure:"waypoints"`
	DamageTypes          []string            `mapstructure:"damage_types"` // near, distant
	Near                 NearDamageConfig    `mapstructure:"near"`
	Distant              DistantDamageConfig `mapstructure:"distant"`
	DistanceRadiusDamage float64             `mapstructure:"distance_radius_damage"`
}

type NearDamageConfig struct {
	Damage     int           `mapstructure:"damage"`
	ReloadTime time.Duration `mapstructure:"reload_time"`
}

type DistantDamageConfig struct {
	Damage        int           `mapstructure:"damage"`
	ReloadTime    time.Duration `mapstructure:"reload_time"`
	LiveTime      time.Duration `mapstructure:"live_time"`
	Speed         float64       `mapstructure:"speed"`
	LaunchForward float64       `mapstructure:"launch_forward"`
	LaunchUp      float64       `mapstructure:"launch_up"`
}

// DefaultBot returns the settings used for any field a bot entry leaves
// unset.
func DefaultBot(name string) BotConfig {
	return BotConfig{
		Name:                 name,
		Speed:                3.5,
		RadiusTrigger:        10,
		Life:                 15,
		DistanceRadiusDamage: 2,
		Near:                 NearDamageConfig{Damage: 1, ReloadTime: time.Second},
		Distant: DistantDamageConfig{
			Damage:        1,
			ReloadTime:    time.Second,
			LiveTime:      2 * time.Second,
			Speed:         10,
			LaunchForward: 0.5,
			LaunchUp:      1,
		},
	}
}

// WithDefaults fills every zero field of b from DefaultBot.
func (b BotConfig) WithDefaults() BotConfig {
	d := DefaultBot(b.Name)
	if b.Speed == 0 {
		b.Speed = d.Speed
	}
	if b.RadiusTrigger == 0 {
		b.RadiusTrigger = d.RadiusTrigger
	}
	if b.Life == 0 {
		b.Life = d.Life
	}
	if b.DistanceRadiusDamage == 0 {
		b.DistanceRadiusDamage = d.DistanceRadiusDamage
	}
	if b.Near.Damage == 0 {
		b.Near.Damage = d.Near.Damage
	}
	if b.Near.ReloadTime == 0 {
		b.Near.ReloadTime = d.Near.ReloadTime
	}
	dd, bd := d.Distant, &b.Distant
	if bd.Damage == 0 {
		bd.Damage = dd.Damage
	}
	if bd.ReloadTime == 0 {
		bd.ReloadTime = dd.ReloadTime
	}
	if bd.LiveTime == 0 {
		bd.LiveTime = dd.LiveTime
	}
	if bd.Speed == 0 {
		bd.Speed = dd.Speed
	}
	if bd.LaunchForward == 0 {
		bd.LaunchForward = dd.LaunchForward
	}
	if bd.LaunchUp == 0 {
		bd.LaunchUp = dd.LaunchUp
	}
	return b
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Game.TickMs <= 0 {
		return fmt.Errorf("%w: game.tick_ms must be > 0", ErrInvalid)
	}
	if c.Player.Life <= 0 {
		return fmt.Errorf("%w: player.life must be > 0", ErrInvalid)
	}
	switch c.Database.Mode {
	case "", "sqlite", "mysql":
	default:
		return fmt.Errorf("%w: unknown database.mode %q", ErrInvalid, c.Database.Mode)
	}
	if c.Database.Mode == "mysql" && c.Database.MySQLDSN == "" {
		return fmt.Errorf("%w: database.mysql_dsn is required for mysql", ErrInvalid)
	}
	if c.Game.LevelPath == "" && (c.Game.Width <= 0 || c.Game.Height <= 0) {
		return fmt.Errorf("%w: game.width and game.height must be > 0 without a level", ErrInvalid)
	}
	seen := make(map[string]bool)
	for i, b := range c.Bots {
		if b.Name == "" {
			return fmt.Errorf("%w: bots[%d] has no name", ErrInvalid, i)
		}
		if seen[b.Name] {
			return fmt.Errorf("%w: duplicate bot name %q", ErrInvalid, b.Name)
		}
		seen[b.Name] = true
		if b.RadiusTrigger < 0 || b.Life < 0 {
			return fmt.Errorf("%w: bot %q needs a positive radius_trigger and life", ErrInvalid, b.Name)
		}
		for _, t := range b.DamageTypes {
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "near", "distant":
			default:
				return fmt.Errorf("%w: bot %q has unknown damage type %q", ErrInvalid, b.Name, t)
			}
		}
	}
	return nil
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.debug", false)
	v.SetDefault("server.debug_addr", ":8081")
	v.SetDefault("server.debug_token_ttl", "12h")
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("game.tick_ms", 50)
	v.SetDefault("game.cell_size", 1.0)
	v.SetDefault("game.width", 32)
	v.SetDefault("game.height", 32)
	v.SetDefault("game.status_interval_s", 5)
	v.SetDefault("player.life", 100)
	v.SetDefault("events.channel", events.DefaultChannel)
	v.SetDefault("events.buffer", 256)
	v.SetDefault("events.dial_timeout", "5s")
	v.SetDefault("database.mode", "")
	v.SetDefault("database.sqlite_path", "./data/patrolbot.db")
	v.SetDefault("database.mysql_max_open", 10)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("database.flush_every", "2s")
	v.SetDefault("database.batch_size", 100)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	for i := range cfg.Bots {
		cfg.Bots[i] = cfg.Bots[i].WithDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

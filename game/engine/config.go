package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// classicLayout is the original 15x15 arena. Every row is a mirror image of
// itself, but rows 6 and 8 differ, so it is not symmetric under 180° rotation.
var classicLayout = []string{
	"222222222222222",
	"200011020110002",
	"202011020110202",
	"200011000110002",
	"211000020000112",
	"211022020220112",
	"200000000000002",
	"222022000220222",
	"200000020000002",
	"211022020220112",
	"211000020000112",
	"200011000110002",
	"202011020110202",
	"200011020110002",
	"222222222222222",
}

// DefaultGameConfig returns the classic arena configuration
func DefaultGameConfig() *GameConfig {
	layout := make([]string, len(classicLayout))
	copy(layout, classicLayout)
	return &GameConfig{
		Name:            "classic",
		Description:     "The original 15x15 brick arena",
		Rows:            DefaultRows,
		Cols:            DefaultCols,
		Layout:          layout,
		TickIntervalMs:  DefaultTickMs,
		RequireSymmetry: false,
	}
}

// TickInterval returns the projectile step period
func (c *GameConfig) TickInterval() time.Duration {
	if c == nil || c.TickIntervalMs <= 0 {
		return DefaultTickMs * time.Millisecond
	}
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// SpawnFor returns the configured spawn for the player, falling back to
// (1,1) facing down for player 1 and (cols-2, rows-2) facing up for player 2.
func (c *GameConfig) SpawnFor(player PlayerID) Spawn {
	if s, ok := c.Spawns[player]; ok {
		return s
	}
	if player == Player2 {
		return Spawn{X: c.Cols - 2, Y: c.Rows - 2, Facing: Up}
	}
	return Spawn{X: 1, Y: 1, Facing: Down}
}

// ValidateGameConfig validates a maze configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.Rows < MinGridSize || config.Rows > MaxGridSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Rows)
	}
	if config.Cols < MinGridSize || config.Cols > MaxGridSize {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Cols)
	}

	// Validate tick interval (0 means default)
	if config.TickIntervalMs != 0 && (config.TickIntervalMs < MinTickMs || config.TickIntervalMs > MaxTickMs) {
		return fmt.Errorf("config validation: tick_interval_ms must be between %d and %d, got %d",
			MinTickMs, MaxTickMs, config.TickIntervalMs)
	}

	// Validate layout
	if len(config.Layout) != config.Rows {
		return fmt.Errorf("config validation: layout must have %d rows to match rows, got %d",
			config.Rows, len(config.Layout))
	}
	for i, row := range config.Layout {
		if len(row) != config.Cols {
			return fmt.Errorf("config validation: row %d must have %d characters to match cols, got %d",
				i+1, config.Cols, len(row))
		}
		for j, char := range row {
			switch char {
			case '0', '1', '2':
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}

	if config.RequireSymmetry && !IsRotationallySymmetric(config.Layout) {
		return fmt.Errorf("config validation: layout is not symmetric under 180° rotation")
	}

	// Validate spawns
	for player := range config.Spawns {
		if player.Index() < 0 {
			return fmt.Errorf("config validation: unknown player %q in spawns", player)
		}
	}
	var seen []Position
	for _, player := range Players {
		s := config.SpawnFor(player)
		if !s.Facing.Valid() {
			return fmt.Errorf("config validation: %s spawn facing %q is not a direction", player, s.Facing)
		}
		if s.X < 0 || s.X >= config.Cols || s.Y < 0 || s.Y >= config.Rows {
			return fmt.Errorf("config validation: %s spawn (%d,%d) is out of bounds", player, s.X, s.Y)
		}
		if config.Layout[s.Y][s.X] != '0' {
			return fmt.Errorf("config validation: %s spawn (%d,%d) is not an empty cell", player, s.X, s.Y)
		}
		pos := Position{X: s.X, Y: s.Y}
		for _, other := range seen {
			if other == pos {
				return fmt.Errorf("config validation: spawns overlap at (%d,%d)", s.X, s.Y)
			}
		}
		seen = append(seen, pos)
	}

	return nil
}

// IsRotationallySymmetric reports whether the layout equals its 180° rotation
func IsRotationallySymmetric(layout []string) bool {
	n := len(layout)
	for y, row := range layout {
		mirror := layout[n-1-y]
		if len(mirror) != len(row) {
			return false
		}
		for x := 0; x < len(row); x++ {
			if row[x] != mirror[len(row)-1-x] {
				return false
			}
		}
	}
	return true
}

// ParseGameConfig decodes a configuration; format is "json" or "yaml"
func ParseGameConfig(data []byte, format string) (*GameConfig, error) {
	var config GameConfig
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// LoadGameConfig loads and validates a configuration file; the extension
// selects JSON or YAML decoding
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	config, err := ParseGameConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// InitGameStateFromConfig creates a new game state using the provided configuration
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	grid := make([][]Cell, config.Rows)
	for y := range grid {
		grid[y] = make([]Cell, config.Cols)
		if y >= len(config.Layout) {
			continue
		}
		for x := 0; x < config.Cols && x < len(config.Layout[y]); x++ {
			switch config.Layout[y][x] {
			case '1':
				grid[y][x] = DestructibleWall
			case '2':
				grid[y][x] = IndestructibleWall
			}
		}
	}

	state := &GameState{
		Grid:        grid,
		Rows:        config.Rows,
		Cols:        config.Cols,
		Projectiles: []Projectile{},
		Message:     "Tank Battle! Player 1: WASD + Space. Player 2: Arrows + Enter.",
		ConfigName:  config.Name,
		History:     []ActionEntry{},
	}
	for i, player := range Players {
		s := config.SpawnFor(player)
		state.Tanks[i] = Tank{
			Player: player,
			Pos:    Position{X: s.X, Y: s.Y},
			Facing: s.Facing,
			Alive:  true,
		}
	}
	return state
}

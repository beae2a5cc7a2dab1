package engine

import (
	"fmt"
	"strings"
)

// Cell represents the wall state of a single grid position
type Cell int

const (
	Empty              Cell = 0
	DestructibleWall   Cell = 1
	IndestructibleWall Cell = 2
)

// Validation and sizing constants
const (
	MinGridSize         = 5
	MaxGridSize         = 50
	DefaultRows         = 15
	DefaultCols         = 15
	DefaultTickMs       = 100
	MinTickMs           = 10
	MaxTickMs           = 2000
	MaxManualSteps      = 50
	MaxHistoryEntries   = 1000
	WebSocketBufferSize = 256
)

// String returns the name of the cell state
func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case DestructibleWall:
		return "destructible_wall"
	case IndestructibleWall:
		return "indestructible_wall"
	default:
		return fmt.Sprintf("cell(%d)", int(c))
	}
}

// Direction is one of the four grid directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists the four directions in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the unit vector for the direction. Y grows downwards.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// ParseDirection accepts "up", "UP", "Up" and so on
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid direction %q", s)
	}
	return d, nil
}

// PlayerID identifies one of the two tanks
type PlayerID string

const (
	Player1 PlayerID = "player1"
	Player2 PlayerID = "player2"

	// NumPlayers is fixed for the lifetime of a game
	NumPlayers = 2
)

// Players lists the players in render priority order
var Players = [NumPlayers]PlayerID{Player1, Player2}

// Index returns the tank slot for the player, or -1 if unknown
func (p PlayerID) Index() int {
	switch p {
	case Player1:
		return 0
	case Player2:
		return 1
	default:
		return -1
	}
}

// ParsePlayer accepts "player1", "p1", "1" (and the same for player 2)
func ParsePlayer(s string) (PlayerID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player1", "p1", "1":
		return Player1, nil
	case "player2", "p2", "2":
		return Player2, nil
	}
	return "", fmt.Errorf("invalid player %q", s)
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Step returns the neighbouring position in direction d
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Tank is a player-controlled unit
type Tank struct {
	Player PlayerID  `json:"player"`
	Pos    Position  `json:"pos"`
	Facing Direction `json:"facing"`
	Alive  bool      `json:"alive"`
}

// Projectile is a moving shot owned by the player who fired it
type Projectile struct {
	Pos       Position  `json:"pos"`
	Direction Direction `json:"direction"`
	Owner     PlayerID  `json:"owner"`
}

// Spawn describes where a tank starts and which way it faces
type Spawn struct {
	X      int       `json:"x" yaml:"x"`
	Y      int       `json:"y" yaml:"y"`
	Facing Direction `json:"facing" yaml:"facing"`
}

// GameConfig represents a maze configuration loaded from JSON or YAML
type GameConfig struct {
	Name            string             `json:"name" yaml:"name"`
	Description     string             `json:"description" yaml:"description"`
	Rows            int                `json:"rows" yaml:"rows"`
	Cols            int                `json:"cols" yaml:"cols"`
	Layout          []string           `json:"layout" yaml:"layout"`
	Spawns          map[PlayerID]Spawn `json:"spawns,omitempty" yaml:"spawns,omitempty"`
	TickIntervalMs  int                `json:"tick_interval_ms,omitempty" yaml:"tick_interval_ms,omitempty"`
	RequireSymmetry bool               `json:"require_symmetry,omitempty" yaml:"require_symmetry,omitempty"`
}

// Outcome values stored in GameState.Winner
const (
	WinnerNone = ""
	WinnerDraw = "draw"
)

// GameState represents the complete game state
type GameState struct {
	Grid        [][]Cell         `json:"grid"`
	Rows        int              `json:"rows"`
	Cols        int              `json:"cols"`
	Tanks       [NumPlayers]Tank `json:"tanks"`
	Projectiles []Projectile     `json:"projectiles"`
	Tick        int              `json:"tick"`
	Message     string           `json:"message"`
	GameOver    bool             `json:"game_over"`
	Winner      string           `json:"winner,omitempty"`
	ConfigName  string           `json:"config_name"`

	// History is capped at MaxHistoryEntries; TotalEvents keeps counting
	// across trims and resets.
	History     []ActionEntry `json:"history"`
	TotalEvents int           `json:"total_events"`

	// Computed helper views (not required for core game logic)
	Board []string `json:"board,omitempty"`
}

// Action names used in the history
const (
	ActionNameMove          = "move"
	ActionNameFire          = "fire"
	ActionNameWallDestroyed = "wall_destroyed"
	ActionNameTankDestroyed = "tank_destroyed"
	ActionNameReset         = "reset"
)

// ActionEntry represents a single entry in the game history
type ActionEntry struct {
	Number    int       `json:"number"`
	Tick      int       `json:"tick"`
	Action    string    `json:"action"`
	Player    PlayerID  `json:"player,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Success   bool      `json:"success"`
	Timestamp int64     `json:"timestamp"`
}

// TickReport summarises one projectile step
type TickReport struct {
	Tick           int        `json:"tick"`
	Moved          int        `json:"moved"`
	Removed        int        `json:"removed"`
	WallsDestroyed []Position `json:"walls_destroyed,omitempty"`
	TanksDestroyed []PlayerID `json:"tanks_destroyed,omitempty"`
	Changed        bool       `json:"changed"`
}

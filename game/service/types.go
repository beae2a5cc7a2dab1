package service

import (
	"time"

	"github.com/wricardo/tank-battle/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult contains the result of a move or fire command
type ActionResult struct {
	Success   bool              `json:"success"`
	Player    engine.PlayerID   `json:"player"`
	Action    string            `json:"action"`
	Direction engine.Direction  `json:"direction,omitempty"`
	Message   string            `json:"message"`
	GameState *engine.GameState `json:"game_state"`
}

// KeyResult contains the result of a raw key press
type KeyResult struct {
	Key       string            `json:"key"`
	Bound     bool              `json:"bound"`
	Applied   bool              `json:"applied"`
	Player    engine.PlayerID   `json:"player,omitempty"`
	Action    string            `json:"action,omitempty"`
	Direction engine.Direction  `json:"direction,omitempty"`
	GameState *engine.GameState `json:"game_state"`
}

// StepResult summarises a batch of manual projectile steps
type StepResult struct {
	Ticks          int                 `json:"ticks"`
	Reports        []engine.TickReport `json:"reports"`
	WallsDestroyed int                 `json:"walls_destroyed"`
	TanksDestroyed []engine.PlayerID   `json:"tanks_destroyed,omitempty"`
	GameState      *engine.GameState   `json:"game_state"`
}

// RenderResult is the color grid of a session plus its text form
type RenderResult struct {
	Rows   int               `json:"rows"`
	Cols   int               `json:"cols"`
	Colors [][]engine.Color  `json:"colors"`
	Board  []string          `json:"board"`
	Legend map[string]string `json:"legend"`
}

// BoardLegend explains the characters of the text rendering
var BoardLegend = map[string]string{
	"#": "indestructible wall (" + string(engine.ColorIndestructible) + ")",
	"+": "destructible wall (" + string(engine.ColorDestructible) + ")",
	"1": "player 1 tank (" + string(engine.ColorPlayer1) + ")",
	"2": "player 2 tank (" + string(engine.ColorPlayer2) + ")",
	"*": "projectile (" + string(engine.ColorProjectile) + ")",
	".": "empty (" + string(engine.ColorEmpty) + ")",
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Entries     []engine.ActionEntry `json:"entries"`
	Retained    int                  `json:"retained"`
	TotalEvents int                  `json:"total_events"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	TotalPages  int                  `json:"total_pages"`
	HasNext     bool                 `json:"has_next"`
	HasPrevious bool                 `json:"has_previous"`
}

// ConfigInfo provides information about a maze configuration
type ConfigInfo struct {
	Filename       string `json:"filename"`
	ConfigID       string `json:"config_id"` // The identifier to use for session creation
	Name           string `json:"name"`      // Display name
	Description    string `json:"description"`
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	TickIntervalMs int64  `json:"tick_interval_ms"`
}

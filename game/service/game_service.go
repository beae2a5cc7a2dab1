package service

import (
	"context"
	"time"

	"github.com/wricardo/tank-battle/game/engine"
	"github.com/wricardo/tank-battle/game/match"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, player, direction string) (*ActionResult, error)
	Fire(ctx context.Context, sessionID, player string) (*ActionResult, error)
	PressKey(ctx context.Context, sessionID, key string) (*KeyResult, error)
	Step(ctx context.Context, sessionID string, ticks int) (*StepResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	Render(ctx context.Context, sessionID string) (*RenderResult, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles maze configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. Its state is only reachable
// through Loop. Session managers return copies, so the metadata fields are
// read-only snapshots.
type Session struct {
	ID             string
	ConfigID       string
	Loop           *match.Loop
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	Winner() string

	// Player actions
	Move(player PlayerID, direction Direction) bool
	Fire(player PlayerID) bool
	HandleKey(key string) (Binding, bool, bool)

	// Simulation
	Tick() TickReport

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// Views
	Render() [][]Color
	GetHistory() []ActionEntry
	GetTank(player PlayerID) (Tank, bool)
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; a match loop owns it.
type GameEngine struct {
	state  *GameState
	config *GameConfig
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}, nil
}

// NewEngineWithDefaults creates a new game engine on the classic arena
func NewEngineWithDefaults() *GameEngine {
	config := DefaultGameConfig()
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// Reset restores the initial board while keeping cumulative history
func (e *GameEngine) Reset() *GameState {
	prevHistory := e.state.History
	prevTotal := e.state.TotalEvents

	e.state = InitGameStateFromConfig(e.config)

	e.state.History = prevHistory
	e.state.TotalEvents = prevTotal
	e.state.addToHistory(ActionEntry{Action: ActionNameReset, Success: true})

	return e.state
}

// IsGameOver returns whether at most one tank is alive
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// Winner returns the winning player, "draw", or "" while both tanks live
func (e *GameEngine) Winner() string {
	return e.state.Winner
}

// Move attempts to move the player's tank
func (e *GameEngine) Move(player PlayerID, direction Direction) bool {
	return e.state.MoveTank(player, direction)
}

// Fire launches a projectile from the player's tank
func (e *GameEngine) Fire(player PlayerID) bool {
	return e.state.Fire(player)
}

// HandleKey dispatches a raw key identifier. It returns the binding, whether
// the key is bound at all, and whether the action took effect.
func (e *GameEngine) HandleKey(key string) (Binding, bool, bool) {
	binding, ok := LookupKey(key)
	if !ok {
		return Binding{}, false, false
	}
	return binding, true, binding.Apply(e.state)
}

// Tick advances all projectiles by one cell
func (e *GameEngine) Tick() TickReport {
	return e.state.StepProjectiles()
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitGameStateFromConfig(config)
	return nil
}

// Render returns the color grid of the current state
func (e *GameEngine) Render() [][]Color {
	return e.state.Render()
}

// GetHistory returns the retained action history
func (e *GameEngine) GetHistory() []ActionEntry {
	return e.state.History
}

// GetTank returns a copy of the player's tank
func (e *GameEngine) GetTank(player PlayerID) (Tank, bool) {
	t := e.state.Tank(player)
	if t == nil {
		return Tank{}, false
	}
	return *t, true
}

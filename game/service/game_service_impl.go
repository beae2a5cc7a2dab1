package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/tank-battle/game/engine"
)

var (
	// ErrConfigNotFound is returned, possibly wrapped, by ConfigManager
	// implementations for unknown config names
	ErrConfigNotFound   = errors.New("configuration not found")
	ErrInvalidPlayer    = errors.New("invalid player")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidTicks     = errors.New("invalid tick count")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *log.Entry
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   log.WithField("component", "service"),
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session and starts its match loop
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.WithFields(log.Fields{"session": session.ID, "config": configID}).Info("session created")
	return s.sessionInfo(ctx, session)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(ctx, session)
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		info, err := s.sessionInfo(ctx, sess)
		if err != nil {
			// Session stopped between List and Snapshot
			continue
		}
		result = append(result, info)
	}

	return result, nil
}

// DeleteSession stops and removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	s.logger.WithField("session", sessionID).Info("session deleted")
	return nil
}

// Move moves one player's tank
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, player, direction string) (*ActionResult, error) {
	p, err := parsePlayer(player)
	if err != nil {
		return nil, err
	}
	d, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (use up, down, left or right)", ErrInvalidDirection, direction)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := sess.Loop.Move(ctx, p, d)
	if err != nil {
		return nil, err
	}
	moved, state := res.Applied, withBoard(res.State)

	s.logger.WithFields(log.Fields{
		"session":   sess.ID,
		"player":    p,
		"direction": d,
		"success":   moved,
	}).Debug("move")

	return &ActionResult{
		Success:   moved,
		Player:    p,
		Action:    engine.ActionNameMove,
		Direction: d,
		Message:   state.Message,
		GameState: state,
	}, nil
}

// Fire launches a projectile from one player's tank
func (s *gameServiceImpl) Fire(ctx context.Context, sessionID, player string) (*ActionResult, error) {
	p, err := parsePlayer(player)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := sess.Loop.Fire(ctx, p)
	if err != nil {
		return nil, err
	}
	fired, state := res.Applied, withBoard(res.State)

	message := fmt.Sprintf("%s fired", p)
	if !fired {
		message = fmt.Sprintf("%s cannot fire", p)
	}

	return &ActionResult{
		Success:   fired,
		Player:    p,
		Action:    engine.ActionNameFire,
		Direction: state.Tanks[p.Index()].Facing,
		Message:   message,
		GameState: state,
	}, nil
}

// PressKey dispatches a raw key through the binding table
func (s *gameServiceImpl) PressKey(ctx context.Context, sessionID, key string) (*KeyResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := sess.Loop.PressKey(ctx, key)
	if err != nil {
		return nil, err
	}
	state := withBoard(res.State)

	result := &KeyResult{
		Key:       key,
		Bound:     res.Bound,
		Applied:   res.Applied,
		GameState: state,
	}
	if res.Bound {
		result.Player = res.Binding.Player
		result.Action = res.Binding.Action.String()
		result.Direction = res.Binding.Direction
	}
	return result, nil
}

// Step advances projectiles by a number of manual ticks
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string, ticks int) (*StepResult, error) {
	if ticks < 1 || ticks > engine.MaxManualSteps {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidTicks, ticks, engine.MaxManualSteps)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	reports, err := sess.Loop.Step(ctx, ticks)
	if err != nil {
		return nil, err
	}

	state, err := s.snapshot(ctx, sess)
	if err != nil {
		return nil, err
	}

	result := &StepResult{
		Ticks:     len(reports),
		Reports:   reports,
		GameState: state,
	}
	for _, r := range reports {
		result.WallsDestroyed += len(r.WallsDestroyed)
		result.TanksDestroyed = append(result.TanksDestroyed, r.TanksDestroyed...)
	}
	return result, nil
}

// Reset resets a game session to its initial board
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Loop.Reset(ctx)
	if err != nil {
		return nil, err
	}
	state.Board = state.RenderText()

	s.logger.WithField("session", sess.ID).Info("game reset")
	return state, nil
}

// GetGameState retrieves a copy of the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, sess)
}

// Render returns the color grid of the current state
func (s *gameServiceImpl) Render(ctx context.Context, sessionID string) (*RenderResult, error) {
	state, err := s.GetGameState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &RenderResult{
		Rows:   state.Rows,
		Cols:   state.Cols,
		Colors: state.Render(),
		Board:  state.Board,
		Legend: BoardLegend,
	}, nil
}

// GetHistory returns paginated action history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	state, err := s.GetGameState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := state.History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	entries := []engine.ActionEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				entries = append(entries, history[i])
			}
		} else {
			entries = append(entries, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Entries:     entries,
		Retained:    total,
		TotalEvents: state.TotalEvents,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available maze configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific maze configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a maze configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// session marks a session accessed and returns a copy of it
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return sess, nil
}

// snapshot copies the session state and fills in the text board
func (s *gameServiceImpl) snapshot(ctx context.Context, sess *Session) (*engine.GameState, error) {
	state, err := sess.Loop.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return withBoard(state), nil
}

// withBoard fills in the text rendering of a state copy
func withBoard(state *engine.GameState) *engine.GameState {
	state.Board = state.RenderText()
	return state
}

func (s *gameServiceImpl) sessionInfo(ctx context.Context, sess *Session) (*SessionInfo, error) {
	state, err := s.snapshot(ctx, sess)
	if err != nil {
		return nil, err
	}

	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}

	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      state,
		GameConfig:     sess.Config,
	}, nil
}

func parsePlayer(player string) (engine.PlayerID, error) {
	p, err := engine.ParsePlayer(player)
	if err != nil {
		return "", fmt.Errorf("%w: %q (use player1 or player2)", ErrInvalidPlayer, player)
	}
	return p, nil
}

package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:        "Test Config",
		Description: "A valid test configuration",
		Rows:        5,
		Cols:        5,
		Layout: []string{
			"22222",
			"20102",
			"20002",
			"20102",
			"22222",
		},
		Spawns: map[PlayerID]Spawn{
			Player1: {X: 1, Y: 1, Facing: Right},
			Player2: {X: 3, Y: 3, Facing: Left},
		},
		TickIntervalMs:  50,
		RequireSymmetry: true,
	}
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	if err := ValidateGameConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
}

func TestValidateGameConfig_DefaultIsValid(t *testing.T) {
	if err := ValidateGameConfig(DefaultGameConfig()); err != nil {
		t.Errorf("Expected classic config to be valid, got: %v", err)
	}
}

func TestValidateGameConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"rows too small", func(c *GameConfig) { c.Rows = 4 }, "rows must be between"},
		{"cols too large", func(c *GameConfig) { c.Cols = 51 }, "cols must be between"},
		{"tick too fast", func(c *GameConfig) { c.TickIntervalMs = 5 }, "tick_interval_ms"},
		{"tick too slow", func(c *GameConfig) { c.TickIntervalMs = 5000 }, "tick_interval_ms"},
		{"layout row count", func(c *GameConfig) { c.Layout = c.Layout[:4] }, "layout must have 5 rows"},
		{"layout row width", func(c *GameConfig) { c.Layout[2] = "2002" }, "row 3 must have 5 characters"},
		{"invalid character", func(c *GameConfig) { c.Layout[2] = "20X02" }, "invalid character 'X'"},
		{"asymmetric", func(c *GameConfig) { c.Layout[1] = "20112" }, "not symmetric"},
		{"unknown spawn player", func(c *GameConfig) { c.Spawns["player3"] = Spawn{X: 2, Y: 2, Facing: Up} }, "unknown player"},
		{"spawn facing", func(c *GameConfig) { c.Spawns[Player1] = Spawn{X: 1, Y: 1, Facing: "sideways"} }, "is not a direction"},
		{"spawn out of bounds", func(c *GameConfig) { c.Spawns[Player1] = Spawn{X: 9, Y: 1, Facing: Up} }, "out of bounds"},
		{"spawn on wall", func(c *GameConfig) { c.Spawns[Player1] = Spawn{X: 2, Y: 1, Facing: Up} }, "not an empty cell"},
		{"spawns overlap", func(c *GameConfig) { c.Spawns[Player2] = Spawn{X: 1, Y: 1, Facing: Up} }, "overlap"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.mutate(config)

			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Expected error containing %q, got %q", test.wantErr, err.Error())
			}
		})
	}
}

func TestValidateGameConfig_Nil(t *testing.T) {
	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestValidateGameConfig_AsymmetricAllowedWhenNotRequired(t *testing.T) {
	config := createValidConfig()
	config.Layout[1] = "20112"
	config.RequireSymmetry = false

	if err := ValidateGameConfig(config); err != nil {
		t.Errorf("Expected asymmetric layout to be accepted, got %v", err)
	}
}

func TestIsRotationallySymmetric(t *testing.T) {
	if !IsRotationallySymmetric([]string{"120", "000", "021"}) {
		t.Error("Expected symmetric layout to be detected")
	}
	if IsRotationallySymmetric(classicLayout) {
		t.Error("Expected classic layout to differ from its rotation")
	}
	if IsRotationallySymmetric([]string{"120", "000", "000"}) {
		t.Error("Expected asymmetric layout to be detected")
	}
}

func TestSpawnFor_Defaults(t *testing.T) {
	config := DefaultGameConfig()

	s1 := config.SpawnFor(Player1)
	if s1 != (Spawn{X: 1, Y: 1, Facing: Down}) {
		t.Errorf("Unexpected player1 default spawn %+v", s1)
	}
	s2 := config.SpawnFor(Player2)
	if s2 != (Spawn{X: 13, Y: 13, Facing: Up}) {
		t.Errorf("Unexpected player2 default spawn %+v", s2)
	}
}

func TestTickInterval(t *testing.T) {
	config := createValidConfig()
	if got := config.TickInterval().Milliseconds(); got != 50 {
		t.Errorf("Expected 50ms, got %d", got)
	}
	config.TickIntervalMs = 0
	if got := config.TickInterval().Milliseconds(); got != DefaultTickMs {
		t.Errorf("Expected default %dms, got %d", DefaultTickMs, got)
	}
}

func TestLoadGameConfig_JSON(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "arena.json")
	content := `{
  "name": "arena",
  "description": "JSON arena",
  "rows": 5,
  "cols": 5,
  "layout": ["22222", "20002", "20202", "20002", "22222"],
  "spawns": {"player1": {"x": 1, "y": 1, "facing": "right"}},
  "tick_interval_ms": 80
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "arena" || config.TickIntervalMs != 80 {
		t.Errorf("Unexpected config %+v", config)
	}
	if config.SpawnFor(Player1).Facing != Right {
		t.Error("Expected explicit player1 spawn facing right")
	}
	if config.SpawnFor(Player2) != (Spawn{X: 3, Y: 3, Facing: Up}) {
		t.Errorf("Expected default player2 spawn, got %+v", config.SpawnFor(Player2))
	}
}

func TestLoadGameConfig_YAML(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "arena.yaml")
	content := `name: arena
description: YAML arena
rows: 5
cols: 5
layout:
  - "22222"
  - "20002"
  - "21012"
  - "20002"
  - "22222"
require_symmetry: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	state := InitGameStateFromConfig(config)
	if state.Grid[2][1] != DestructibleWall || state.Grid[2][2] != Empty {
		t.Errorf("Unexpected row 2: %+v", state.Grid[2])
	}
}

func TestLoadGameConfig_Errors(t *testing.T) {
	tempDir := t.TempDir()

	if _, err := LoadGameConfig(filepath.Join(tempDir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(tempDir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := LoadGameConfig(bad); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got %v", err)
	}

	invalid := filepath.Join(tempDir, "invalid.yml")
	if err := os.WriteFile(invalid, []byte("name: x\nrows: 5\ncols: 5\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := LoadGameConfig(invalid); err == nil {
		t.Error("Expected validation error")
	}
}

func TestInitGameStateFromConfig(t *testing.T) {
	state := InitGameStateFromConfig(createValidConfig())

	if state.Rows != 5 || state.Cols != 5 {
		t.Errorf("Unexpected dimensions %dx%d", state.Rows, state.Cols)
	}
	if state.Grid[1][2] != DestructibleWall || state.Grid[0][0] != IndestructibleWall || state.Grid[2][2] != Empty {
		t.Error("Grid does not match layout")
	}
	if state.Tanks[0].Facing != Right || state.Tanks[1].Pos != (Position{X: 3, Y: 3}) {
		t.Errorf("Unexpected tanks %+v", state.Tanks)
	}
	if state.Message == "" {
		t.Error("Expected welcome message")
	}

	if InitGameStateFromConfig(nil).ConfigName != "classic" {
		t.Error("Expected nil config to fall back to classic")
	}
}

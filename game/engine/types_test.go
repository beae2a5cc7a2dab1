package engine

import (
	"encoding/json"
	"testing"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		cell     Cell
		expected string
	}{
		{Empty, "empty"},
		{DestructibleWall, "destructible_wall"},
		{IndestructibleWall, "indestructible_wall"},
		{Cell(7), "cell(7)"},
	}

	for _, test := range tests {
		if got := test.cell.String(); got != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, got)
		}
	}
}

func TestValidationConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"MinGridSize", MinGridSize, 5},
		{"MaxGridSize", MaxGridSize, 50},
		{"DefaultRows", DefaultRows, 15},
		{"DefaultCols", DefaultCols, 15},
		{"DefaultTickMs", DefaultTickMs, 100},
		{"MaxManualSteps", MaxManualSteps, 50},
		{"WebSocketBufferSize", WebSocketBufferSize, 256},
	}

	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("%s: expected %d, got %d", test.name, test.expected, test.actual)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"up", Up, false},
		{"DOWN", Down, false},
		{" Left ", Left, false},
		{"right", Right, false},
		{"north", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseDirection(test.input)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			}
			if got != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestParsePlayer(t *testing.T) {
	tests := []struct {
		input    string
		expected PlayerID
		wantErr  bool
	}{
		{"player1", Player1, false},
		{"P1", Player1, false},
		{"1", Player1, false},
		{"player2", Player2, false},
		{"p2", Player2, false},
		{"player3", "", true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParsePlayer(test.input)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParsePlayer(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			}
			if got != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestPositionStep(t *testing.T) {
	p := Position{X: 3, Y: 3}
	if got := p.Step(Up); got != (Position{X: 3, Y: 2}) {
		t.Errorf("Up: got %+v", got)
	}
	if got := p.Step(Direction("bogus")); got != p {
		t.Errorf("Invalid direction should not move, got %+v", got)
	}
}

func TestGameStateJSON(t *testing.T) {
	state := NewEngineWithDefaults().GetState()

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal GameState: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal GameState: %v", err)
	}

	for _, key := range []string{"grid", "tanks", "projectiles", "tick", "game_over", "config_name"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in JSON", key)
		}
	}
	if _, ok := decoded["winner"]; ok {
		t.Error("Expected winner omitted while the game is running")
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/tank-battle/game/engine"
	"github.com/wricardo/tank-battle/game/service"
)

func testState() *engine.GameState {
	config := &engine.GameConfig{
		Name:        "duel",
		Description: "test",
		Rows:        5,
		Cols:        5,
		Layout:      []string{"22222", "20002", "20102", "20002", "22222"},
	}
	return engine.InitGameStateFromConfig(config)
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

// apiStub answers the REST routes the tools call
func apiStub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		state := testState()

		switch {
		case r.Method == "POST" && r.URL.Path == "/api/sessions":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(service.SessionInfo{ID: "abc12345", ConfigName: body["config_id"], GameState: state})
		case r.URL.Path == "/api/sessions":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"count":    1,
				"sessions": []service.SessionInfo{{ID: "abc12345", ConfigName: "duel", GameState: state}},
			})
		case r.URL.Path == "/api/sessions/abc12345/state":
			state.Projectiles = append(state.Projectiles, engine.Projectile{Pos: engine.Position{X: 1, Y: 2}, Direction: engine.Down, Owner: engine.Player1})
			json.NewEncoder(w).Encode(state)
		case r.URL.Path == "/api/sessions/abc12345/render":
			json.NewEncoder(w).Encode(service.RenderResult{Rows: 5, Cols: 5, Board: state.RenderText()})
		case r.URL.Path == "/api/sessions/abc12345/history":
			if r.URL.Query().Get("order") != "asc" || r.URL.Query().Get("page") != "2" {
				t.Errorf("Unexpected history query %s", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(service.HistoryResponse{
				Entries: []engine.ActionEntry{
					{Number: 21, Tick: 3, Action: engine.ActionNameMove, Player: engine.Player1, Direction: engine.Right,
						From: engine.Position{X: 1, Y: 1}, To: engine.Position{X: 2, Y: 1}, Success: true},
					{Number: 22, Tick: 4, Action: engine.ActionNameWallDestroyed, To: engine.Position{X: 2, Y: 2}, Success: true},
				},
				Retained: 22, TotalEvents: 22, Page: 2, PageSize: 20, TotalPages: 2,
			})
		case r.URL.Path == "/api/sessions/abc12345/reset":
			json.NewEncoder(w).Encode(map[string]interface{}{"message": "Game reset successfully", "state": state})
		case r.URL.Path == "/api/configs":
			json.NewEncoder(w).Encode([]service.ConfigInfo{{ConfigID: "classic", Name: "classic", Description: "The original", Rows: 15, Cols: 15, TickIntervalMs: 100}})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := apiStub(t)
	client := NewClient(server.URL)

	var configs []service.ConfigInfo
	if err := client.apiCall(context.Background(), "GET", "/api/configs", nil, &configs); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if len(configs) != 1 || configs[0].ConfigID != "classic" {
		t.Errorf("Unexpected configs %+v", configs)
	}

	err := client.apiCall(context.Background(), "GET", "/api/sessions/nope", nil, nil)
	if err == nil || err.Error() != "session not found" {
		t.Errorf("Expected API error message, got %v", err)
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/api", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error', got: %v", err)
	}
}

func TestClient_Tools(t *testing.T) {
	server := apiStub(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
		want    []string
	}{
		{
			name:    "create_session",
			handler: client.handleCreateSession,
			args:    map[string]interface{}{"config_id": "duel"},
			want:    []string{"Created session: abc12345", "Config: duel", "player1: (1,1) facing down, alive"},
		},
		{
			name:    "list_sessions",
			handler: client.handleListSessions,
			args:    map[string]interface{}{},
			want:    []string{"Active Sessions (1)", "abc12345", "in progress"},
		},
		{
			name:    "game_state",
			handler: client.handleGameState,
			args:    map[string]interface{}{"session_id": "abc12345"},
			want:    []string{"Projectiles in flight: 1", "player1 shot at (1,2) heading down", "  1 #1..#"},
		},
		{
			name:    "render_board",
			handler: client.handleRenderBoard,
			args:    map[string]interface{}{"session_id": "abc12345"},
			want:    []string{"    01234", "  2 #.+.#", "  3 #..2#", "Legend:"},
		},
		{
			name:    "reset_game",
			handler: client.handleReset,
			args:    map[string]interface{}{"session_id": "abc12345"},
			want:    []string{"Game reset successfully", "player2: (3,3) facing up"},
		},
		{
			name:    "action_history",
			handler: client.handleActionHistory,
			args:    map[string]interface{}{"session_id": "abc12345", "page": float64(2), "order": "asc"},
			want:    []string{"Page 2/2", "#21 tick 3 move player1 right (1,1)->(2,1) ✓", "#22 tick 4 wall_destroyed at (2,2) ✓"},
		},
		{
			name:    "list_configs",
			handler: client.handleListConfigs,
			args:    map[string]interface{}{},
			want:    []string{"classic (config_id: classic)", "Grid: 15x15, Tick: 100ms"},
		},
		{
			name:    "game_instructions",
			handler: client.handleGameInstructions,
			args:    nil,
			want:    []string{"W/A/S/D", "Enter to fire", "draw"},
		},
		{
			name:    "describe_cell wall",
			handler: client.handleDescribeCell,
			args:    map[string]interface{}{"session_id": "abc12345", "x": float64(2), "y": float64(2)},
			want:    []string{"Wall: destructible_wall", "Rendered as: + (orange)", "Passable: false"},
		},
		{
			name:    "describe_cell tank and projectile",
			handler: client.handleDescribeCell,
			args:    map[string]interface{}{"session_id": "abc12345", "x": float64(1), "y": float64(2)},
			want:    []string{"Passable: true", "Projectile: fired by player1 heading down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callTool(tt.name, tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if result.IsError {
				t.Fatalf("tool error: %s", resultText(t, result))
			}
			text := resultText(t, result)
			for _, want := range tt.want {
				if !strings.Contains(text, want) {
					t.Errorf("Expected %q in output:\n%s", want, text)
				}
			}
		})
	}
}

func TestClient_ToolErrors(t *testing.T) {
	server := apiStub(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
	}{
		{"missing session id", client.handleGameState, map[string]interface{}{}},
		{"unknown session", client.handleGetSession, map[string]interface{}{"session_id": "nope"}},
		{"describe without coordinates", client.handleDescribeCell, map[string]interface{}{"session_id": "abc12345"}},
		{"describe out of bounds", client.handleDescribeCell, map[string]interface{}{"session_id": "abc12345", "x": float64(9), "y": float64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callTool("tool", tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if !result.IsError {
				t.Errorf("Expected tool error, got %s", resultText(t, result))
			}
		})
	}
}

func TestFormatGameState_Outcome(t *testing.T) {
	state := testState()
	state.Tanks[1].Alive = false
	state.GameOver = true
	state.Winner = string(engine.Player1)

	result := formatGameState(state)
	if !strings.Contains(result, "GAME OVER - player1 WINS") {
		t.Errorf("Expected winner line, got: %s", result)
	}
	if !strings.Contains(result, "player2: (3,3) facing up, destroyed") {
		t.Errorf("Expected destroyed tank, got: %s", result)
	}

	state.Tanks[0].Alive = false
	state.Winner = engine.WinnerDraw
	if result := formatGameState(state); !strings.Contains(result, "DRAW") {
		t.Errorf("Expected draw, got: %s", result)
	}

	if formatGameState(nil) != "Game state: unavailable" {
		t.Error("Expected placeholder for nil state")
	}
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/tank-battle/game/engine"
	"github.com/wricardo/tank-battle/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tank Battle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tank Battle - MCP Interface

This is a thin client that proxies all requests to the REST API server.
Two humans play on one keyboard; these tools let you watch and manage their games.

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Tanks, projectiles, tick and outcome of a session
- render_board: Text board (# indestructible, + destructible, 1/2 tanks, * projectile, . empty)
- reset_game: Reset a session to its initial board
- action_history: Paginated list of moves, shots and destructions
- list_configs: List available mazes
- game_instructions: Rules and controls
- describe_cell: Explain one grid cell`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

var emptySchema = mcp.ToolInputSchema{
	Type:       "object",
	Properties: map[string]interface{}{},
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional maze selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Maze to use, see list_configs (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: emptySchema,
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(nil),
	}, c.handleGetSession)

	// Game state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: tanks, projectiles, tick and winner",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "render_board",
		Description: "Render the board as text, one character per cell",
		InputSchema: sessionSchema(nil),
	}, c.handleRenderBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial board",
		InputSchema: sessionSchema(nil),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get the action history for a session",
		InputSchema: sessionSchema(map[string]interface{}{
			"page": map[string]interface{}{
				"type":        "integer",
				"description": "Page number",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Items per page",
			},
			"order": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"asc", "desc"},
				"description": "desc (newest first, default) or asc",
			},
		}),
	}, c.handleActionHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available mazes",
		InputSchema: emptySchema,
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules and the keyboard controls",
		InputSchema: emptySchema,
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about one cell: wall type, tanks and projectiles on it",
		InputSchema: sessionSchema(map[string]interface{}{
			"x": map[string]interface{}{
				"type":        "integer",
				"description": "X coordinate (column) of the cell to describe (0-based)",
			},
			"y": map[string]interface{}{
				"type":        "integer",
				"description": "Y coordinate (row) of the cell to describe (0-based)",
			},
		}, "x", "y"),
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.GameOver {
			status = "over, winner " + s.GameState.Winner
		}
		result += fmt.Sprintf("- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleRenderBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/render")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var render service.RenderResult
	if err := c.apiCall(ctx, "GET", path, nil, &render); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(render.Board)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		query.Set("order", order)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Mazes:\n\n"
	for _, cfg := range configs {
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Tick: %dms\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Cols, cfg.Rows, cfg.TickIntervalMs)
	}

	return mcp.NewToolResultText(result), nil
}

const instructions = `Tank Battle - Instructions

OBJECTIVE:
Destroy the other tank. The last tank alive wins; if both die on the same tick it is a draw.

CONTROLS (one shared keyboard):
• Player 1 (blue): W/A/S/D to move, Space to fire
• Player 2 (red): Arrow keys to move, Enter to fire

RULES:
• A tank moves one cell per key press and turns to face the direction pressed.
• Walls block movement; a blocked move does nothing at all, not even turning.
• Tanks do not block each other and may share a cell.
• Firing spawns a projectile on the tank's own cell, travelling the way the tank faces.
  There is no cooldown and no limit on projectiles in flight.
• Every tick (100ms on the classic maze) each projectile advances one cell:
  - into a destructible wall (+): the wall is destroyed and the projectile removed
  - into an indestructible wall (#): the projectile is removed
  - into a cell holding a live tank: every live tank there is destroyed, including the shooter
  - off the board: the projectile is removed
• Projectiles pass through each other.
• After the game ends the board keeps running; Reset starts a new round.

BOARD LEGEND (render_board):
• # indestructible wall (gray)
• + destructible wall (orange)
• 1 player 1 tank (blue)
• 2 player 2 tank (red)
• * projectile (yellow)
• . empty (#333)

Coordinates are (x, y) with x the column and y the row, both 0-based from the top-left.`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !state.InBounds(x, y) {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid is %dx%d (x 0-%d, y 0-%d)",
			x, y, state.Cols, state.Rows, state.Cols-1, state.Rows-1)), nil
	}

	return mcp.NewToolResultText(describeCell(&state, x, y)), nil
}

// Formatting helpers

func describeCell(state *engine.GameState, x, y int) string {
	cell := state.CellAt(x, y)
	color := state.ColorAt(x, y)
	pos := engine.Position{X: x, Y: y}

	var description string
	switch cell {
	case engine.IndestructibleWall:
		description = "Indestructible wall - blocks tanks and absorbs projectiles"
	case engine.DestructibleWall:
		description = "Destructible wall - blocks tanks, destroyed by one projectile"
	default:
		description = "Open floor - tanks may move here"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell at position (%d, %d):\n", x, y)
	fmt.Fprintf(&b, "Wall: %s\n", cell)
	fmt.Fprintf(&b, "Rendered as: %c (%s)\n", color.Char(), color)
	fmt.Fprintf(&b, "Passable: %v\n", cell == engine.Empty)
	fmt.Fprintf(&b, "Description: %s\n", description)

	for _, t := range state.Tanks {
		if t.Pos == pos {
			status := "alive"
			if !t.Alive {
				status = "destroyed"
			}
			fmt.Fprintf(&b, "Tank: %s facing %s (%s)\n", t.Player, t.Facing, status)
		}
	}
	for _, p := range state.Projectiles {
		if p.Pos == pos {
			fmt.Fprintf(&b, "Projectile: fired by %s heading %s\n", p.Owner, p.Direction)
		}
	}

	return b.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339),
		session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "Game state: unavailable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Maze: %s (%dx%d)  Tick: %d\n", state.ConfigName, state.Cols, state.Rows, state.Tick)

	switch {
	case state.GameOver && state.Winner == engine.WinnerDraw:
		b.WriteString("💥 GAME OVER - DRAW\n")
	case state.GameOver:
		fmt.Fprintf(&b, "🏆 GAME OVER - %s WINS\n", state.Winner)
	}

	for _, t := range state.Tanks {
		status := "alive"
		if !t.Alive {
			status = "destroyed"
		}
		fmt.Fprintf(&b, "%s: (%d,%d) facing %s, %s\n", t.Player, t.Pos.X, t.Pos.Y, t.Facing, status)
	}

	fmt.Fprintf(&b, "Projectiles in flight: %d\n", len(state.Projectiles))
	for _, p := range state.Projectiles {
		fmt.Fprintf(&b, "  %s shot at (%d,%d) heading %s\n", p.Owner, p.Pos.X, p.Pos.Y, p.Direction)
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	board := state.Board
	if len(board) == 0 && len(state.Grid) > 0 {
		board = state.RenderText()
	}
	if len(board) > 0 {
		b.WriteString("\n")
		b.WriteString(formatBoard(board))
	}

	return b.String()
}

// formatBoard prints the text board with column and row indices
func formatBoard(board []string) string {
	if len(board) == 0 {
		return "(empty board)\n"
	}

	var b strings.Builder
	b.WriteString("    ")
	for x := range board[0] {
		fmt.Fprintf(&b, "%d", x%10)
	}
	b.WriteString("\n")
	for y, row := range board {
		fmt.Fprintf(&b, "%3d %s\n", y, row)
	}
	b.WriteString("\nLegend: # indestructible, + destructible, 1 player1, 2 player2, * projectile, . empty\n")
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action History (Page %d/%d) - Retained: %d, Total events: %d\n\n",
		history.Page, history.TotalPages, history.Retained, history.TotalEvents)

	if len(history.Entries) == 0 {
		b.WriteString("(no actions)\n")
		return b.String()
	}

	for _, e := range history.Entries {
		status := "✓"
		if !e.Success {
			status = "✗"
		}
		line := fmt.Sprintf("#%d tick %d %s", e.Number, e.Tick, e.Action)
		if e.Player != "" {
			line += " " + string(e.Player)
		}
		if e.Direction != "" {
			line += " " + string(e.Direction)
		}
		switch e.Action {
		case engine.ActionNameMove:
			line += fmt.Sprintf(" (%d,%d)->(%d,%d)", e.From.X, e.From.Y, e.To.X, e.To.Y)
		case engine.ActionNameFire, engine.ActionNameWallDestroyed, engine.ActionNameTankDestroyed:
			line += fmt.Sprintf(" at (%d,%d)", e.To.X, e.To.Y)
		}
		fmt.Fprintf(&b, "%s %s\n", line, status)
	}

	return b.String()
}

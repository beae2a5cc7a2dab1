// Package mcp provides a Model Context Protocol server for Tank Battle.
//
// The mcp package implements:
//   - MCP tools that proxy to the REST API
//   - Text formatting of states, boards and history for agents
//
// MCP Tools:
//   - create_session: Create new game session with maze selection
//   - list_sessions: List all active sessions
//   - get_session: Get specific session details
//   - game_state: Tanks, projectiles and outcome
//   - render_board: Text board with row and column indices
//   - reset_game: Reset a session to its initial board
//   - action_history: Paginated action history
//   - list_configs: List available mazes
//   - game_instructions: Rules and controls
//   - describe_cell: Explain one cell
//
// The tools observe and manage games; they do not drive the tanks. Both
// tanks belong to the humans at the keyboard.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp

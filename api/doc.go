// Package api provides HTTP REST API handlers for Tank Battle.
//
// The api package implements:
//   - Session management endpoints
//   - Player commands, raw key presses and manual projectile steps
//   - State, color grid and action history queries
//   - Configuration listing, retrieval and upload
//   - WebSocket upgrade handling
//   - Static file serving for the browser client
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "crossfire"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Stop and remove a session
//
// Game State:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/render - Color grid (?format=text for the text board)
//   - GET /api/sessions/{id}/history - Action history (?page=1&limit=20&order=desc)
//
// Game Operations:
//   - POST /api/sessions/{id}/move - {"player": "player1", "direction": "up"}
//   - POST /api/sessions/{id}/fire - {"player": "player2"}
//   - POST /api/sessions/{id}/key - {"key": "ArrowLeft"}
//   - POST /api/sessions/{id}/step - {"ticks": 3}, defaults to one tick
//   - POST /api/sessions/{id}/reset
//
// Configuration:
//   - GET /api/configs - List available mazes
//   - GET /api/configs/{name} - Get one maze
//   - POST /api/configs - Save a maze (GameConfig JSON plus optional config_id)
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket stream of state updates
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the sentinel
// error in the chain: unknown sessions and configs give 404, invalid players,
// directions, tick counts and configs give 400.
//
//	{
//	  "error": "session not found: session not found"
//	}
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api

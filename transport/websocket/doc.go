// Package websocket provides WebSocket transport for Tank Battle.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Non-blocking state broadcasting from the match loops
//   - Key presses from browser clients
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection has a read pump and a write
// pump goroutine. The Hub's Run loop fans queued messages out to the clients
// of the matching session.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - Incoming: {"type": "key", "key": "ArrowUp"}
//   - Outgoing: {"session_id": "3f2a9c1b", "event": "state_update",
//     "game_state": {...}, "board": ["###", "#1.", ...]}
//
// Keys use the same identifiers as the dispatch table in the engine package.
// The hub answers every incoming message with a key_result or error event.
//
// Session Integration:
//
// Clients pick their session with the ?session= query parameter. Session ids
// are matched case-insensitively.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetKeyHandler(func(ctx context.Context, id, key string) error {
//		_, err := gameService.PressKey(ctx, id, key)
//		return err
//	})
//	go hub.Run(ctx)
//
// BroadcastToSession never blocks, so it is safe to call from a match loop's
// update callback.
package websocket

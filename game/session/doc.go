// Package session provides session management for Tank Battle.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Short session ids derived from random UUIDs
//   - One match loop goroutine per session
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session holds the match loop that owns its game state, plus
// metadata like creation time and last access time. Create, Get and List hand
// out copies of that metadata taken under the manager's lock; the loop is
// shared and safe for concurrent use.
//
// Lifecycle:
//
// Create starts the session's loop. Delete and CleanupExpiredSessions stop it,
// and Close stops every loop and waits for them to exit. A StateListener, when
// registered, receives a copy of the state after every change in any session;
// the server uses it to feed WebSocket clients.
//
// Usage:
//
//	manager := session.NewManager(session.WithStateListener(func(id string, s *engine.GameState) {
//		hub.BroadcastToSession(id, s)
//	}))
//	defer manager.Close()
//
//	sess, err := manager.Create("", "classic", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.Loop.PressKey(ctx, "d")
//
// Sessions are not persisted; they live as long as the process.
package session

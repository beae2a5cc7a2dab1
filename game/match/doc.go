// Package match runs a game engine on a single goroutine.
//
// A Loop selects over a ticker, a command inbox and its quit channel. Every
// projectile step and every player command runs to completion on that
// goroutine, so the engine never sees concurrent access. Commands block until
// applied and fail with ErrStopped once the loop has exited.
//
//	loop := match.New(eng, match.WithOnUpdate(func(s *engine.GameState) {
//		hub.BroadcastToSession(id, s)
//	}))
//	go loop.Run(ctx)
//	defer loop.Stop()
//
//	loop.PressKey(ctx, "w")
package match

// Package engine provides the core game logic for Tank Battle.
//
// The engine package implements the game mechanics including:
//   - Grid-based tank movement against a maze of brick walls
//   - Projectile firing and per-tick projectile simulation
//   - Collision resolution for walls and tanks
//   - The render contract that maps state to flat cell colors
//   - The static key dispatch table for both players
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the single owned value holding the
// maze, both tanks and every live projectile, while GameConfig describes a
// maze loaded from JSON or YAML files.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.HandleKey("d")      // player 1 moves right
//	gameEngine.HandleKey("Enter")  // player 2 fires
//	report := gameEngine.Tick()    // projectiles advance one cell
//
// Game Rules:
//
// Two tanks share one board. A move enters the neighbouring cell only if it is
// empty; a blocked move changes nothing, not even the facing. A projectile
// travels one cell per tick, clears the first destructible brick it meets,
// stops at indestructible walls and destroys any live tank it reaches. The
// game is over once at most one tank is alive.
//
// The engine is not safe for concurrent use. Package match runs an engine on
// a single goroutine that serializes ticks and input.
package engine

// Package service provides the business logic layer for Tank Battle.
//
// The service package implements:
//   - Multi-session game management
//   - Player commands (move, fire, raw key presses) and manual stepping
//   - Configuration listing, loading and saving
//   - Paginated action history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages maze configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns a match loop; the service never touches
// engine state directly and only ever hands out deep copies of it.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "crossfire")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "player1", "right")
//	_, err = gameService.PressKey(ctx, info.ID, "Enter")
package service

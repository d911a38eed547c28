// Package service provides the business logic layer for Pushbox.
//
// The service package implements:
//   - Multi-session game management
//   - Level listing, loading and saving
//   - Direction decoding and move processing
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and lifecycle.
// LevelManager loads and stores levels.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the game engine. Each session owns its own engine; the engine is not safe
// for concurrent use, so the service holds the session lock for the whole of
// each engine call. Sessions are saved after every mutation.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	levelMgr, _ := levels.NewManager("levels")
//	gameService := service.NewGameService(sessionMgr, levelMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left", false)
package service

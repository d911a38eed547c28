// Package engine provides the grid model and move resolution for Pushbox.
//
// The engine package implements:
//   - Coordinates, the four closed Directions, and per-cell Flags
//   - A fixed-size Board addressed by Coordinate
//   - Move resolution with chained object pushing
//   - Level parsing and validation
//   - Game state snapshots for persistence and transports
//
// Core Types:
//
// GameEngine owns a Board and the cached actor position. Move is the only
// operation that mutates the board; Cell is the read accessor renderers use.
// A Level describes the initial layout and is loaded from JSON or YAML files
// by the levels package.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultLevel())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.Move(engine.Left())
//	flags := eng.Cell(engine.Coordinate{X: 3, Y: 0})
//
// Move Rules:
//
// The actor steps one cell in the requested direction. A contiguous run of
// objects directly ahead is pushed one cell as a block, provided the cell past
// the run is on the board. Otherwise the move is rejected and nothing changes.
// Rejected moves are not errors. Goal cells never change.
package engine

package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Movement
	Move(d Direction) bool
	Apply(d Direction) MoveHistoryEntry
	CanMove(d Direction) bool
	ChainLength(d Direction) int
	PossibleMoves() []Direction

	// Cell inspection
	Width() int
	Height() int
	Cell(c Coordinate) Flag
	Lookup(c Coordinate) (Flag, bool)
	Actor() Coordinate

	// State management
	State() *GameState
	Restore(state *GameState) error
	Reset()
	IsSolved() bool
	Level() *Level

	// History
	MoveHistory() []MoveHistoryEntry
	LastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access.
type GameEngine struct {
	level *Level
	board *Board
	actor Coordinate

	moves    int
	pushes   int
	attempts int
	history  []MoveHistoryEntry
}

var _ Engine = (*GameEngine)(nil)

// NewEngine creates a new game engine for the provided level
func NewEngine(level *Level) (*GameEngine, error) {
	if err := ValidateLevel(level); err != nil {
		return nil, err
	}
	board, actor, err := ParseLayout(level.Layout)
	if err != nil {
		return nil, err
	}
	return &GameEngine{
		level:   level,
		board:   board,
		actor:   actor,
		history: []MoveHistoryEntry{},
	}, nil
}

// NewEngineWithDefaults creates a new game engine on the built-in level
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultLevel())
	if err != nil {
		panic(fmt.Sprintf("engine: default level is invalid: %v", err))
	}
	return e
}

func (e *GameEngine) Width() int        { return e.board.Width() }
func (e *GameEngine) Height() int       { return e.board.Height() }
func (e *GameEngine) Actor() Coordinate { return e.actor }
func (e *GameEngine) Level() *Level     { return e.level }

// Cell returns the flags at c. c must be on the board; out-of-bounds input
// panics.
func (e *GameEngine) Cell(c Coordinate) Flag {
	return e.board.At(c)
}

// Lookup returns the flags at c and whether c is on the board
func (e *GameEngine) Lookup(c Coordinate) (Flag, bool) {
	if !e.board.InBounds(c) {
		return None, false
	}
	return e.board.At(c), true
}

// Apply moves in direction d and records the attempt in the history
func (e *GameEngine) Apply(d Direction) MoveHistoryEntry {
	from := e.actor
	pushed := e.ChainLength(d)
	success := e.Move(d)
	if !success {
		pushed = 0
	}
	e.attempts++
	entry := MoveHistoryEntry{
		Direction:  d,
		From:       from,
		To:         e.actor,
		Pushed:     pushed,
		Success:    success,
		MoveNumber: e.attempts,
		Timestamp:  time.Now().Unix(),
	}
	e.history = append(e.history, entry)
	if len(e.history) > MaxHistory {
		e.history = append([]MoveHistoryEntry(nil), e.history[len(e.history)-MaxHistory:]...)
	}
	return entry
}

// IsSolved reports whether every goal holds an object. A level without
// goals is never solved.
func (e *GameEngine) IsSolved() bool {
	goals := e.board.Count(Goal)
	return goals > 0 && e.board.Count(Object|Goal) == goals
}

// Reset rebuilds the board from the level. History is kept; counters restart.
func (e *GameEngine) Reset() {
	board, actor, err := ParseLayout(e.level.Layout)
	if err != nil {
		// The level was validated in NewEngine and is never mutated.
		panic(fmt.Sprintf("engine: level %q no longer parses: %v", e.level.Name, err))
	}
	e.board = board
	e.actor = actor
	e.moves = 0
	e.pushes = 0
}

// State returns a snapshot of the engine
func (e *GameEngine) State() *GameState {
	history := make([]MoveHistoryEntry, len(e.history))
	copy(history, e.history)

	return &GameState{
		Level:       e.level.Name,
		Width:       e.board.Width(),
		Height:      e.board.Height(),
		Rows:        e.board.Rows(),
		Actor:       e.actor,
		Moves:       e.moves,
		Pushes:      e.pushes,
		Attempts:    e.attempts,
		Solved:      e.IsSolved(),
		GoalsTotal:  e.board.Count(Goal),
		GoalsFilled: e.board.Count(Object | Goal),
		MoveHistory: history,
	}
}

// Restore replaces the board and counters with a snapshot (used by persistence)
func (e *GameEngine) Restore(state *GameState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	board, actor, err := ParseLayout(state.Rows)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if board.Width() != e.board.Width() || board.Height() != e.board.Height() {
		return fmt.Errorf("%w: snapshot is %dx%d, level %q is %dx%d", ErrInvalidState,
			board.Width(), board.Height(), e.level.Name, e.board.Width(), e.board.Height())
	}
	// Goals are level geometry and objects are only ever pushed, so a
	// snapshot must keep the level's goal cells and object count
	start, _, err := ParseLayout(e.level.Layout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	for y := 0; y < board.Height(); y++ {
		for x := 0; x < board.Width(); x++ {
			c := Coordinate{X: x, Y: y}
			if board.At(c).Has(Goal) != start.At(c).Has(Goal) {
				return fmt.Errorf("%w: goal at %s does not match level %q", ErrInvalidState, c, e.level.Name)
			}
		}
	}
	if board.Count(Object) != start.Count(Object) {
		return fmt.Errorf("%w: snapshot has %d objects, level %q has %d",
			ErrInvalidState, board.Count(Object), e.level.Name, start.Count(Object))
	}

	history := state.MoveHistory
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}

	e.board = board
	e.actor = actor
	e.moves = state.Moves
	e.pushes = state.Pushes
	e.attempts = state.Attempts
	e.history = append([]MoveHistoryEntry{}, history...)
	return nil
}

// MoveHistory returns the recorded move attempts, oldest first
func (e *GameEngine) MoveHistory() []MoveHistoryEntry {
	return e.history
}

// LastMove returns the last attempted move, or nil if there is none
func (e *GameEngine) LastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

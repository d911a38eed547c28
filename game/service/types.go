package service

import (
	"time"

	"github.com/wricardo/mcp-training/pushbox/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	LevelID        string            `json:"level_id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Level          *engine.Level     `json:"level"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_edge|blocked_chain
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartPos    engine.Coordinate `json:"start_pos"`
	EndPos      engine.Coordinate `json:"end_pos"`
	PushesDelta int               `json:"pushes_delta"`

	Steps       []StepInfo   `json:"steps,omitempty"`
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	Solved        bool     `json:"solved"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move in a call
type StepInfo struct {
	Idx     int               `json:"idx"`
	Dir     string            `json:"dir"`
	From    engine.Coordinate `json:"from"`
	To      engine.Coordinate `json:"to"`
	Pushed  int               `json:"pushed"`
	Success bool              `json:"success"`
	Solved  bool              `json:"solved,omitempty"`
}

// AttemptInfo describes why a blocked move could not happen
type AttemptInfo struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Cell   string `json:"cell"`            // glyph at the target, "#" when off the board
	Reason string `json:"reason"`          // edge|chain
	Chain  int    `json:"chain,omitempty"` // objects in the run that hit the edge
}

// GameEvent represents something that happened during play
type GameEvent struct {
	Type      string            `json:"type"` // "move", "push", "goal_filled", "goal_emptied", "solved", "reset"
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Position  engine.Coordinate `json:"position"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// LevelInfo provides information about a level file
type LevelInfo struct {
	Filename    string `json:"filename"`
	LevelID     string `json:"level_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Goals       int    `json:"goals"`
	Objects     int    `json:"objects"`
}

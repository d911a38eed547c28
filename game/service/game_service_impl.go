package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/pushbox/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// CreateSession creates a new game session on the given level, or the
// default level when levelID is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	var level *engine.Level
	if levelID == "" {
		levelID = s.levels.DefaultID()
		level = s.levels.Default()
	} else {
		var err error
		level, err = s.levels.Load(levelID)
		if err != nil {
			if errors.Is(err, ErrLevelNotFound) {
				if ids := s.levelIDs(); len(ids) > 0 {
					return nil, fmt.Errorf("%w: %q, available levels: %s", ErrLevelNotFound, levelID, strings.Join(ids, ", "))
				}
			}
			return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
		}
	}

	sess, err := s.sessions.Create("", levelID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.Lock()
	defer sess.Unlock()
	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		sess.Lock()
		result = append(result, sessionInfo(sess))
		sess.Unlock()
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session. An unknown direction is
// rejected before the session is touched.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	dir, err := parseDirection(direction)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	filledBefore := goalsFilled(sess.Engine)
	attempt := attemptInfo(sess.Engine, dir)
	entry := sess.Engine.Apply(dir)
	state := gameState(sess.Engine)
	sess.Unlock()

	result := &MoveResult{
		Success:   entry.Success,
		GameState: state,
		Events:    events,
	}

	if entry.Success {
		result.Events = append(result.Events, moveEvents(entry, filledBefore, state)...)
		result.Message = result.Events[len(result.Events)-1].Message
		result.Step = &StepInfo{
			Idx:     1,
			Dir:     dir.String(),
			From:    entry.From,
			To:      entry.To,
			Pushed:  entry.Pushed,
			Success: true,
			Solved:  state.Solved,
		}
	} else {
		result.AttemptedTo = attempt
		result.Message = blockedMessage(dir, attempt)
	}

	s.save(sessionID, "move")
	return result, nil
}

// BulkMove executes moves in sequence and stops at the first blocked one.
// All directions are decoded up front so a typo never leaves the game half
// way through a sequence.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if len(moves) > MaxBulkMoves {
		result.Truncated = true
		result.Limit = MaxBulkMoves
		moves = moves[:MaxBulkMoves]
	}

	dirs := make([]engine.Direction, len(moves))
	for i, m := range moves {
		d, err := parseDirection(m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs[i] = d
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	start := sess.Engine.State()
	result.StartPos = start.Actor

	for i, dir := range dirs {
		filledBefore := goalsFilled(sess.Engine)
		attempt := attemptInfo(sess.Engine, dir)
		entry := sess.Engine.Apply(dir)

		if !entry.Success {
			result.Success = false
			result.StoppedOnMove = i + 1
			result.StopReasonCode = "blocked_" + attempt.Reason
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, blockedMessage(dir, attempt))
			result.AttemptedTo = attempt
			break
		}

		result.MovesExecuted++
		solved := sess.Engine.IsSolved()
		result.Events = append(result.Events, moveEvents(entry, filledBefore, &engine.GameState{
			Solved:      solved,
			GoalsTotal:  start.GoalsTotal,
			GoalsFilled: goalsFilled(sess.Engine),
		})...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:     i + 1,
			Dir:     dir.String(),
			From:    entry.From,
			To:      entry.To,
			Pushed:  entry.Pushed,
			Success: true,
			Solved:  solved,
		})
	}

	end := gameState(sess.Engine)
	sess.Unlock()

	result.GameState = end
	result.EndPos = end.Actor
	result.PushesDelta = end.Pushes - start.Pushes
	result.Solved = end.Solved
	result.PossibleMoves = end.PossibleMoves
	switch {
	case result.StoppedReason != "":
		result.Message = result.StoppedReason
	case end.Solved:
		result.Message = fmt.Sprintf("Solved! All %d goals filled", end.GoalsTotal)
	default:
		result.Message = fmt.Sprintf("Executed %d moves", result.MovesExecuted)
	}

	s.save(sessionID, "bulk move")
	return result, nil
}

// Reset resets a game session to the level's initial layout
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	sess.Engine.Reset()
	state := gameState(sess.Engine)
	sess.Unlock()

	s.save(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return gameState(sess.Engine), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	history := append([]engine.MoveHistoryEntry(nil), sess.Engine.MoveHistory()...)
	sess.Unlock()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLevels returns the available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.List()
}

// LoadLevel loads a specific level
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelID string) (*engine.Level, error) {
	return s.levels.Load(levelID)
}

// SaveLevel writes a level to the level store
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID string, level *engine.Level) error {
	if levelID == "" {
		return fmt.Errorf("%w: level id is required", ErrInvalidLevel)
	}
	return s.levels.Save(levelID, level)
}

func (s *gameServiceImpl) session(id string) (*Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateLastAccessed(id); err != nil {
		log.Debug().Err(err).Str("session", id).Msg("Failed to update last access time")
	}
	return sess, nil
}

// save persists a session after a mutation. Failures are logged, the game
// carries on in memory.
func (s *gameServiceImpl) save(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Str("op", op).Msg("Failed to persist session")
	}
}

func (s *gameServiceImpl) levelIDs() []string {
	infos, err := s.levels.List()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.LevelID)
	}
	return ids
}

func parseDirection(s string) (engine.Direction, error) {
	d, err := engine.ParseDirection(s)
	if err != nil {
		return engine.Direction{}, fmt.Errorf("%w: %q (use up, down, left or right)", ErrInvalidDirection, s)
	}
	return d, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      gameState(sess.Engine),
		Level:          sess.Level,
	}
}

// gameState snapshots the engine and fills in the helper fields
func gameState(e engine.Engine) *engine.GameState {
	state := e.State()
	state.PossibleMoves = engine.DirectionNames(e.PossibleMoves())
	return state
}

func goalsFilled(e engine.Engine) int {
	return len(engine.FindCells(e, engine.Object|engine.Goal))
}

// attemptInfo describes what stands in the way of a move, or returns nil if
// the move is legal
func attemptInfo(e engine.Engine, d engine.Direction) *AttemptInfo {
	if e.CanMove(d) {
		return nil
	}
	off := d.Offset()
	target := e.Actor().Add(off)
	f, ok := e.Lookup(target)
	if !ok {
		return &AttemptInfo{X: target.X, Y: target.Y, Cell: "#", Reason: "edge"}
	}

	chain := 0
	for c := target; ; c = c.Add(off) {
		cf, ok := e.Lookup(c)
		if !ok || !cf.Has(engine.Object) {
			break
		}
		chain++
	}
	return &AttemptInfo{
		X:      target.X,
		Y:      target.Y,
		Cell:   string(engine.EncodeCell(f)),
		Reason: "chain",
		Chain:  chain,
	}
}

func blockedMessage(d engine.Direction, a *AttemptInfo) string {
	if a == nil {
		return fmt.Sprintf("Cannot move %s", d)
	}
	if a.Reason == "edge" {
		return fmt.Sprintf("Cannot move %s: edge of the board", d)
	}
	if a.Chain == 1 {
		return fmt.Sprintf("Cannot move %s: the object is against the edge", d)
	}
	return fmt.Sprintf("Cannot move %s: %d objects are against the edge", d, a.Chain)
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

// moveEvents generates events for a successful move. The last event is the
// most significant one.
func moveEvents(entry engine.MoveHistoryEntry, filledBefore int, after *engine.GameState) []GameEvent {
	now := time.Now()
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to %s", entry.Direction, entry.To),
		Timestamp: now,
		Position:  entry.To,
	}}

	if entry.Pushed > 0 {
		noun := "object"
		if entry.Pushed > 1 {
			noun = "objects"
		}
		events = append(events, GameEvent{
			Type:      "push",
			Message:   fmt.Sprintf("Pushed %d %s %s", entry.Pushed, noun, entry.Direction),
			Timestamp: now,
			Position:  entry.To,
		})
	}

	switch {
	case after.GoalsFilled > filledBefore:
		events = append(events, GameEvent{
			Type:      "goal_filled",
			Message:   fmt.Sprintf("Goal filled: %d/%d", after.GoalsFilled, after.GoalsTotal),
			Timestamp: now,
			Position:  entry.To,
		})
	case after.GoalsFilled < filledBefore:
		events = append(events, GameEvent{
			Type:      "goal_emptied",
			Message:   fmt.Sprintf("Goal emptied: %d/%d", after.GoalsFilled, after.GoalsTotal),
			Timestamp: now,
			Position:  entry.To,
		})
	}

	if after.Solved && after.GoalsFilled > filledBefore {
		events = append(events, GameEvent{
			Type:      "solved",
			Message:   fmt.Sprintf("Solved! All %d goals filled", after.GoalsTotal),
			Timestamp: now,
			Position:  entry.To,
		})
	}

	return events
}

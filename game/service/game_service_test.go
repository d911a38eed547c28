package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/pushbox/game/engine"
	"github.com/wricardo/mcp-training/pushbox/game/service"
)

// MockSessionManager implements service.SessionManager in memory
type MockSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{sessions: make(map[string]*service.Session)}
}

func (m *MockSessionManager) Create(id, levelID string, level *engine.Level) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, service.ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(level)
	if err != nil {
		return nil, err
	}

	sess := &service.Session{
		ID:             id,
		LevelID:        levelID,
		Engine:         eng,
		Level:          level,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = sess
	return sess, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MockSessionManager) GetOrCreate(id, levelID string, level *engine.Level) (*service.Session, error) {
	if sess, err := m.Get(id); err == nil {
		return sess, nil
	}
	return m.Create(id, levelID, level)
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	sess.Lock()
	sess.LastAccessedAt = time.Now()
	sess.Unlock()
	return nil
}

func (m *MockSessionManager) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	m.saves++
	return nil
}

// MockLevelManager implements service.LevelManager in memory
type MockLevelManager struct {
	levels map[string]*engine.Level
}

func NewMockLevelManager() *MockLevelManager {
	return &MockLevelManager{levels: map[string]*engine.Level{
		"classic": engine.DefaultLevel(),
		"corridor": {
			Name:   "Corridor",
			Layout: []string{"p o."},
		},
	}}
}

func (m *MockLevelManager) Load(name string) (*engine.Level, error) {
	level, ok := m.levels[name]
	if !ok {
		return nil, service.ErrLevelNotFound
	}
	return level, nil
}

func (m *MockLevelManager) List() ([]*service.LevelInfo, error) {
	var infos []*service.LevelInfo
	for _, id := range []string{"classic", "corridor"} {
		if level, ok := m.levels[id]; ok {
			infos = append(infos, &service.LevelInfo{LevelID: id, Name: level.Name})
		}
	}
	return infos, nil
}

func (m *MockLevelManager) Default() *engine.Level { return m.levels["classic"] }
func (m *MockLevelManager) DefaultID() string      { return "classic" }

func (m *MockLevelManager) Save(name string, level *engine.Level) error {
	if err := engine.ValidateLevel(level); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidLevel, err)
	}
	m.levels[name] = level
	return nil
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockLevelManager()), sessions
}

func newSession(t *testing.T, svc service.GameService, levelID string) string {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), levelID)
	require.NoError(t, err)
	return info.ID
}

func TestCreateSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "classic", info.LevelID)
	assert.Equal(t, engine.Coordinate{X: 4, Y: 0}, info.GameState.Actor)
	assert.Equal(t, []string{"down", "left", "right"}, info.GameState.PossibleMoves)

	info, err = svc.CreateSession(ctx, "corridor")
	require.NoError(t, err)
	assert.Equal(t, "corridor", info.LevelID)
	assert.Equal(t, "Corridor", info.Level.Name)

	_, err = svc.CreateSession(ctx, "missing")
	require.ErrorIs(t, err, service.ErrLevelNotFound)
	assert.Contains(t, err.Error(), "classic, corridor")
}

func TestGetAndListSessions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")
	newSession(t, svc, "corridor")

	info, err := svc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, info.ID)

	list, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeleteSession(ctx, id))
	_, err = svc.GetSession(ctx, id)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestMove(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	result, err := svc.Move(ctx, id, "left", false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, engine.Coordinate{X: 3, Y: 0}, result.GameState.Actor)
	require.NotNil(t, result.Step)
	assert.Equal(t, "left", result.Step.Dir)
	assert.Equal(t, 0, result.Step.Pushed)
	assert.Equal(t, "Moved left to (3,0)", result.Message)
	assert.Equal(t, 1, sessions.saves)

	_, err = svc.Move(ctx, id, "Down", false)
	require.NoError(t, err)

	result, err = svc.Move(ctx, id, "left", false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Step.Pushed)
	assert.Equal(t, []string{" ..   ", "oop   ", "      "}, result.GameState.Rows)
	assert.Equal(t, "Pushed 2 objects left", result.Message)
}

func TestMove_Blocked(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	result, err := svc.Move(ctx, id, "up", false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.AttemptedTo)
	assert.Equal(t, "edge", result.AttemptedTo.Reason)
	assert.Equal(t, service.AttemptInfo{X: 4, Y: -1, Cell: "#", Reason: "edge"}, *result.AttemptedTo)
	assert.Equal(t, "Cannot move up: edge of the board", result.Message)

	for _, d := range []string{"left", "down", "left"} {
		_, err := svc.Move(ctx, id, d, false)
		require.NoError(t, err)
	}
	result, err = svc.Move(ctx, id, "left", false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, service.AttemptInfo{X: 1, Y: 1, Cell: "o", Reason: "chain", Chain: 2}, *result.AttemptedTo)
	assert.Equal(t, []string{" ..   ", "oop   ", "      "}, result.GameState.Rows)
	assert.Equal(t, 3, result.GameState.Moves)
	assert.Equal(t, 5, result.GameState.Attempts)
}

func TestMove_InvalidDirection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	for _, d := range []string{"", "north", "UPP"} {
		_, err := svc.Move(ctx, id, d, false)
		assert.ErrorIs(t, err, service.ErrInvalidDirection, "direction %q", d)
	}

	state, err := svc.GetGameState(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, state.Attempts)
	assert.Empty(t, state.MoveHistory)
}

func TestMove_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Move(context.Background(), "nope", "up", false)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestMove_WithReset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	_, err := svc.Move(ctx, id, "left", false)
	require.NoError(t, err)

	result, err := svc.Move(ctx, id, "right", true)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "reset", result.Events[0].Type)
	assert.Equal(t, engine.Coordinate{X: 5, Y: 0}, result.GameState.Actor)
	assert.Equal(t, 1, result.GameState.Moves)
}

func TestMove_GoalEvents(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "corridor")

	result, err := svc.Move(ctx, id, "right", false)
	require.NoError(t, err)
	assert.False(t, result.GameState.Solved)

	result, err = svc.Move(ctx, id, "right", false)
	require.NoError(t, err)
	assert.True(t, result.GameState.Solved)

	var types []string
	for _, ev := range result.Events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{"move", "push", "goal_filled", "solved"}, types)
	assert.Equal(t, "Solved! All 1 goals filled", result.Message)
}

func TestBulkMove_Solves(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	moves := []string{"down", "down", "left", "left", "up", "down", "left", "up"}
	result, err := svc.BulkMove(ctx, id, moves, false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Solved)
	assert.Equal(t, 8, result.MovesExecuted)
	assert.Equal(t, 8, result.RequestedMoves)
	assert.Len(t, result.Steps, 8)
	assert.Equal(t, 2, result.PushesDelta)
	assert.Equal(t, engine.Coordinate{X: 4, Y: 0}, result.StartPos)
	assert.Equal(t, engine.Coordinate{X: 1, Y: 1}, result.EndPos)
	assert.True(t, result.Steps[7].Solved)
	assert.Equal(t, "solved", result.Events[len(result.Events)-1].Type)
}

func TestBulkMove_StopsAtFirstBlocked(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	result, err := svc.BulkMove(ctx, id, []string{"left", "up", "left"}, false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.MovesExecuted)
	assert.Equal(t, 2, result.StoppedOnMove)
	assert.Equal(t, "blocked_edge", result.StopReasonCode)
	require.NotNil(t, result.AttemptedTo)
	assert.Equal(t, -1, result.AttemptedTo.Y)
	assert.Equal(t, engine.Coordinate{X: 3, Y: 0}, result.EndPos)
	assert.Equal(t, 2, result.GameState.Attempts)
}

func TestBulkMove_RejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	_, err := svc.BulkMove(ctx, id, nil, false)
	assert.ErrorIs(t, err, service.ErrNoMoves)

	_, err = svc.BulkMove(ctx, id, []string{"left", "sideways"}, false)
	require.ErrorIs(t, err, service.ErrInvalidDirection)
	assert.Contains(t, err.Error(), "move 2")

	state, err := svc.GetGameState(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, state.Attempts, "no move may run when any direction is invalid")
}

func TestBulkMove_Truncates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	moves := make([]string, 0, 150)
	for i := 0; i < 75; i++ {
		moves = append(moves, "left", "right")
	}
	result, err := svc.BulkMove(ctx, id, moves, false)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, service.MaxBulkMoves, result.Limit)
	assert.Equal(t, 150, result.RequestedMoves)
	assert.Equal(t, service.MaxBulkMoves, result.MovesExecuted)
}

func TestReset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	_, err := svc.BulkMove(ctx, id, []string{"left", "down", "left"}, false)
	require.NoError(t, err)

	state, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultLevel().Layout, state.Rows)
	assert.Zero(t, state.Moves)
	assert.Len(t, state.MoveHistory, 3)
}

func TestGetMoveHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	_, err := svc.BulkMove(ctx, id, []string{"left", "right", "left", "right", "left"}, false)
	require.NoError(t, err)

	tests := []struct {
		name        string
		opts        service.HistoryOptions
		wantNumbers []int
		hasNext     bool
		hasPrev     bool
		totalPages  int
	}{
		{"DefaultsDesc", service.HistoryOptions{}, []int{5, 4, 3, 2, 1}, false, false, 1},
		{"DescFirstPage", service.HistoryOptions{Page: 1, Limit: 2}, []int{5, 4}, true, false, 3},
		{"DescLastPage", service.HistoryOptions{Page: 3, Limit: 2}, []int{1}, false, true, 3},
		{"AscSecondPage", service.HistoryOptions{Page: 2, Limit: 2, Order: "asc"}, []int{3, 4}, true, true, 3},
		{"PastEnd", service.HistoryOptions{Page: 9, Limit: 2, Order: "asc"}, nil, false, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetMoveHistory(ctx, id, tt.opts)
			require.NoError(t, err)
			var numbers []int
			for _, m := range resp.Moves {
				numbers = append(numbers, m.MoveNumber)
			}
			assert.Equal(t, tt.wantNumbers, numbers)
			assert.Equal(t, 5, resp.TotalMoves)
			assert.Equal(t, tt.hasNext, resp.HasNext)
			assert.Equal(t, tt.hasPrev, resp.HasPrevious)
			assert.Equal(t, tt.totalPages, resp.TotalPages)
			assert.NotNil(t, resp.Moves)
		})
	}
}

func TestLevels(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	infos, err := svc.ListLevels(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2)

	level, err := svc.LoadLevel(ctx, "corridor")
	require.NoError(t, err)
	assert.Equal(t, "Corridor", level.Name)

	err = svc.SaveLevel(ctx, "", engine.DefaultLevel())
	assert.ErrorIs(t, err, service.ErrInvalidLevel)

	err = svc.SaveLevel(ctx, "broken", &engine.Level{Name: "broken", Layout: []string{"oo"}})
	assert.ErrorIs(t, err, service.ErrInvalidLevel)

	require.NoError(t, svc.SaveLevel(ctx, "tiny", &engine.Level{Name: "Tiny", Layout: []string{"p."}}))
	info, err := svc.CreateSession(ctx, "tiny")
	require.NoError(t, err)
	assert.Equal(t, "tiny", info.LevelID)
}

func TestConcurrentMovesOnOneSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := newSession(t, svc, "")

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			dir := "left"
			if w%2 == 0 {
				dir = "right"
			}
			for i := 0; i < perWorker; i++ {
				_, err := svc.Move(ctx, id, dir, false)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	state, err := svc.GetGameState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, state.Attempts)
	assert.Equal(t, 1, strings.Count(strings.Join(state.Rows, ""), "p")+strings.Count(strings.Join(state.Rows, ""), "P"))
}

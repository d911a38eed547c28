package mcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/mcp-training/pushbox/game/engine"
	"github.com/wricardo/mcp-training/pushbox/game/render"
	"github.com/wricardo/mcp-training/pushbox/game/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const instructions = `Pushbox - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Push every object (o) onto a goal (.) by moving the actor (p). Cells on a goal
are upper-cased: O is an object on a goal, P is the actor on a goal.

AVAILABLE TOOLS:
- create_session: Create new game session on a level
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get the current board and counters
- move: Single move (up/down/left/right)
- bulk_move: Multiple moves at once, stops at the first blocked move
- reset_game: Reset to the level's starting layout
- move_history: View past moves
- list_levels: List available levels
- describe_cell: Inspect one cell of the board
- game_instructions: Get the full rules`

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.mcpServer = server.NewMCPServer(
		"Pushbox",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	c.registerTools()
	return c
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

var directionEnum = []string{"up", "down", "left", "right"}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally on a specific level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play (optional, see list_levels)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, counters and legal moves",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the actor one cell, pushing any objects ahead of it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        directionEnum,
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first blocked one", service.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": directionEnum,
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to the level's starting layout",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest (asc) or newest (desc) first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one cell of the board: what it holds and whether the actor could step onto it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers one JSON-RPC message per POST request
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		// Notifications have no reply
		w.WriteHeader(http.StatusAccepted)
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		log.Debug().Err(err).Msg("failed to write mcp response")
	}
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil {
			if msg, ok := errResp["error"]; ok {
				return fmt.Errorf("%s", msg)
			}
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	levelID, _ := arguments(request)["level_id"].(string)

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		session.ID, session.LevelID, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		solved := ""
		if s.GameState != nil && s.GameState.Solved {
			solved = ", solved"
		}
		fmt.Fprintf(&sb, "- %s (Level: %s, Created: %s%s)\n",
			s.ID, s.LevelID, s.CreatedAt.Format("15:04:05"), solved)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	reset, _ := args["reset"].(bool)
	// intent is accepted so agents can narrate their plan; it is not sent on

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)

	var moves []string
	switch raw := args["moves"].(type) {
	case []interface{}:
		for _, m := range raw {
			if move, ok := m.(string); ok {
				moves = append(moves, move)
			}
		}
	case []string:
		moves = raw
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Levels:\n\n")
	for _, l := range levels {
		fmt.Fprintf(&sb, "• %s (%s)\n", l.LevelID, l.Name)
		if l.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", l.Description)
		}
		fmt.Fprintf(&sb, "  Grid: %dx%d, Goals: %d, Objects: %d\n\n", l.Width, l.Height, l.Goals, l.Objects)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := args["x"].(float64)
	y, okY := args["y"].(float64)
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(describeCell(&state, int(x), int(y))), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := `Pushbox - Complete Instructions

GAME OBJECTIVE:
Push every object onto a goal. The level is solved when all goals hold an object.

BOARD LEGEND:
  p  actor              P  actor standing on a goal
  o  object             O  object sitting on a goal
  .  empty goal            (blank) empty floor
  #  border (off the board)

MOVEMENT RULES:
• The actor moves one cell per move: up, down, left or right
• Walking into an object pushes it one cell in the same direction
• A line of touching objects is pushed together as one chain
• A move is blocked when the actor or the far end of the chain would leave
  the board; a blocked move changes nothing
• Objects can only be pushed, never pulled, so an object in a corner is stuck

TOOLS:
• game_state shows the board, counters and the moves that are legal now
• bulk_move runs a sequence and stops at the first blocked move
• reset_game restores the starting layout; move history is kept

STRATEGY TIPS:
1. Before pushing, check the cell beyond the object is where you want it
2. Avoid pushing objects against the border unless a goal is there
3. Use describe_cell to check a cell before planning around it`

	return mcp.NewToolResultText(rules), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\nLast Accessed: %s\n\n%s",
		session.ID, session.LevelID,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state"
	}

	var sb strings.Builder
	board, err := render.State(state)
	if err != nil {
		fmt.Fprintf(&sb, "Board unavailable: %v\n", err)
	} else {
		sb.WriteString(board)
	}

	fmt.Fprintf(&sb, "\nLevel: %s (%dx%d)\n", state.Level, state.Width, state.Height)
	fmt.Fprintf(&sb, "Actor: (%d,%d)\n", state.Actor.X, state.Actor.Y)
	fmt.Fprintf(&sb, "Goals: %d/%d filled\n", state.GoalsFilled, state.GoalsTotal)
	fmt.Fprintf(&sb, "Moves: %d, Pushes: %d\n", state.Moves, state.Pushes)
	if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&sb, "Possible moves: %s\n", strings.Join(state.PossibleMoves, ", "))
	} else {
		sb.WriteString("Possible moves: none\n")
	}
	if state.Solved {
		sb.WriteString("\nSOLVED! Every goal holds an object.\n")
	}
	return sb.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder
	if result.Success {
		fmt.Fprintf(&sb, "Move successful: %s\n", result.Message)
	} else {
		fmt.Fprintf(&sb, "Move blocked: %s\n", result.Message)
	}

	if st := result.Step; st != nil {
		fmt.Fprintf(&sb, "Step: %s (%d,%d)->(%d,%d) pushed=%d\n",
			st.Dir, st.From.X, st.From.Y, st.To.X, st.To.Y, st.Pushed)
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&sb, "Attempted: (%d,%d) cell=%q reason=%s", a.X, a.Y, a.Cell, a.Reason)
		if a.Chain > 0 {
			fmt.Fprintf(&sb, " chain=%d", a.Chain)
		}
		sb.WriteString("\n")
	}
	for _, ev := range result.Events {
		if ev.Type == "goal_filled" || ev.Type == "goal_emptied" || ev.Type == "solved" {
			fmt.Fprintf(&sb, "Event: %s\n", ev.Message)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(formatGameState(result.GameState))
	return sb.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session %s: executed %d/%d moves\n", sessionID, result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&sb, "Request truncated to the first %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&sb, "Stopped on move %d (%s): %s\n", result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
	}
	fmt.Fprintf(&sb, "Start: (%d,%d) End: (%d,%d) Pushes: +%d\n",
		result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y, result.PushesDelta)

	if len(result.Steps) > 0 {
		sb.WriteString("\nSteps:\n")
		for _, st := range result.Steps {
			line := fmt.Sprintf("  %d. %s (%d,%d)->(%d,%d)", st.Idx, st.Dir, st.From.X, st.From.Y, st.To.X, st.To.Y)
			if st.Pushed > 0 {
				line += fmt.Sprintf(" pushed %d", st.Pushed)
			}
			if st.Solved {
				line += " SOLVED"
			}
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(formatGameState(result.GameState))
	return sb.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Move History (page %d/%d, %d total):\n\n", history.Page, history.TotalPages, history.TotalMoves)
	if len(history.Moves) == 0 {
		sb.WriteString("No moves yet\n")
		return sb.String()
	}
	for _, m := range history.Moves {
		status := "ok"
		if !m.Success {
			status = "blocked"
		}
		fmt.Fprintf(&sb, "#%d %s (%d,%d)->(%d,%d) pushed=%d %s\n",
			m.MoveNumber, m.Direction, m.From.X, m.From.Y, m.To.X, m.To.Y, m.Pushed, status)
	}
	if history.HasNext {
		fmt.Fprintf(&sb, "\nMore moves on page %d\n", history.Page+1)
	}
	return sb.String()
}

func describeCell(state *engine.GameState, x, y int) string {
	if x < 0 || x >= state.Width || y < 0 || y >= state.Height {
		return fmt.Sprintf("(%d,%d) is off the board. The board is %dx%d (x 0-%d, y 0-%d)",
			x, y, state.Width, state.Height, state.Width-1, state.Height-1)
	}

	f, ok := engine.DecodeCell(state.Rows[y][x])
	if !ok {
		return fmt.Sprintf("(%d,%d) holds an unknown glyph %q", x, y, state.Rows[y][x])
	}

	var parts []string
	switch {
	case f.Has(engine.Actor):
		parts = append(parts, "the actor")
	case f.Has(engine.Object):
		parts = append(parts, "an object")
	default:
		parts = append(parts, "empty floor")
	}
	if f.Has(engine.Goal) {
		parts = append(parts, "on a goal")
	}

	desc := fmt.Sprintf("(%d,%d) '%c': %s", x, y, render.Glyph(f), strings.Join(parts, " "))
	if !f.Has(engine.Actor) {
		desc += "\n" + reachability(state, engine.Coordinate{X: x, Y: y})
	}
	if f.Has(engine.Object) {
		desc += "\nAn object moves only when pushed from the opposite side and the cell beyond it is free or starts a pushable chain"
	}
	return desc
}

// reachability tells whether the actor can step onto target with one move
func reachability(state *engine.GameState, target engine.Coordinate) string {
	name := state.Level
	if name == "" {
		name = "snapshot"
	}
	e, err := engine.NewEngine(&engine.Level{Name: name, Layout: state.Rows})
	if err != nil {
		return "Reachability unavailable: " + err.Error()
	}

	actor := e.Actor()
	for _, d := range engine.Directions() {
		if actor.Add(d.Offset()) != target {
			continue
		}
		switch n := e.ChainLength(d); {
		case n < 0:
			return fmt.Sprintf("Next to the actor, but moving %s is blocked: the chain would leave the board", d)
		case n == 0:
			return fmt.Sprintf("The actor can step here by moving %s", d)
		default:
			return fmt.Sprintf("The actor can step here by moving %s, pushing %d object(s)", d, n)
		}
	}
	return fmt.Sprintf("Not next to the actor at %s; it takes more than one move to get here", actor)
}

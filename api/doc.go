// Package api provides the HTTP REST API and WebSocket endpoint for Pushbox.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"level_id": "..."}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state (?format=text for the rendered board)
//   - POST /api/sessions/{id}/move - One move ({"direction": "up", "reset": false})
//   - POST /api/sessions/{id}/bulk-move - Up to 100 moves, stopping at the first blocked one
//   - POST /api/sessions/{id}/reset - Restore the level's starting layout
//   - GET /api/sessions/{id}/history - Move history (?page=&limit=&order=asc|desc)
//
// Levels:
//   - GET /api/levels - List level files
//   - POST /api/levels - Save a level ({"id": "...", "name": "...", "layout": [...]})
//   - GET /api/levels/{name} - Get one level
//
// Other:
//   - GET /api/health - Liveness check
//   - GET /ws?session={id} - WebSocket updates and commands for one session
//
// Errors are returned as JSON with a status code derived from the service
// error: 404 for unknown sessions and levels, 409 for duplicate ids, 400 for
// invalid input and 500 otherwise.
//
//	{"error": "session not found: abc123"}
//
// Usage:
//
//	srv := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", srv)
package api

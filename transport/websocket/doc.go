// Package websocket provides the WebSocket transport for Pushbox.
//
// The package uses a hub-and-spoke model: a central Hub goroutine owns the
// set of connections per session, and each connection has a read pump and a
// write pump.
//
// Message Protocol:
//
// Outgoing messages are JSON Message values, one per frame:
//
//	{"session_id": "1f3a9c0e", "event": "state_update", "game_state": {...}}
//
// Incoming messages are Command values:
//
//	{"action": "move", "direction": "left"}
//	{"action": "bulk_move", "moves": ["down", "left"]}
//	{"action": "reset"}
//
// Commands go to the CommandHandler installed by the API server, which
// broadcasts the resulting state to every client of the session. Errors are
// returned to the issuing client as an "error" event.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetCommandHandler(handle)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID, state)
package websocket

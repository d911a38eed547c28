// Package mcp exposes the game to AI agents as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool calls the REST API and formats the
// JSON reply as text, drawing boards with the render package. It can be
// served over stdio with server.ServeStdio(client.GetMCPServer()) or mounted
// as an HTTP handler, where each POST carries one JSON-RPC message.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, describe_cell
//   - move, bulk_move, reset_game, move_history
//   - list_levels, game_instructions
package mcp

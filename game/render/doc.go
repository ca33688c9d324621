// Package render draws a game state for people: a fixed-width text board for
// terminals and MCP clients, and a PNG image for the HTTP API.
//
// The engine stores exponents; rendering is the only place they become the
// familiar 2, 4, 8 ... labels.
package render

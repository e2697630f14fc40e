// Package client implements the interactive chat client runtime.
//
// It wires the terminal UI flows and the gateway adapter into a single
// process lifecycle: authenticate, pick a character, chat, and start over on
// logout.
package client

package main

import "ollama-relay/internal/cli"

//go:generate swagger generate spec -o swagger.json

// General API information
//
// Relays chat messages from browser frontends to a local Ollama server.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Ollama Relay API
//   description: |
//     Stateless relay between browser chat frontends and a local Ollama server.
//     Callers send the new message plus any prior turns; the relay forwards the
//     conversation once and returns the model's reply.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	cli.Execute()
}

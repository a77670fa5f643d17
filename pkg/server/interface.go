/*
Package server implements msgpack IPC for context-aware completion services.

The server package provides a minimal interface for prefix completion using msgpack serialization over stdin/stdout.

The protocol uses binary msgpack encoding and supports completion requests with context filters, dictionary reloads, and health probes.
Messages are processed synchronously with timing info included in responses.

# IPC

The server operates on a request response model where clients send structured messages via stdin and receive responses through stdout.
Each message contains an ID field and other fields based on the operation type.
An empty ID is replaced server-side with a generated UUID so responses and logs stay correlated either way.

Completion requests use mainly this structure:

	{"id": "req_001", "p": "nba", "l": 10}

Context filters restrict and boost matches by the context tags entries were indexed under:

	{"id": "req_002", "p": "nba", "cx": [{"t": "sports", "b": 2.0}, {"t": "news"}], "all": false}

A filter token with "px": true matches any indexed context starting with the token.
A zero or missing boost means 1. With "all": true every context is allowed through and registered tokens only boost.

The server responds with suggestions ranked best-first:

	{"id": "req_002", "s": [{"w": "nba finals", "ctx": "sports", "r": 1, "sc": 200}], "c": 1, "t": 145}

Dictionary and health actions share the request shape:

	{"id": "dict_001", "a": "reload"}
	{"id": "dict_002", "a": "info"}
	{"id": "sys_001", "a": "health"}

Response structures include status information and error details when an op fails.

# Message Types

CompletionRequest and CompletionResponse handle the main prefix suggestion.
Request includes a prefix string, optional limit, the fuzzy toggle and context filters.
Responses contain suggestion arrays with word, context, rank and score information, plus timing data in microseconds.

StatusResponse answers health, info and reload actions. ErrorResponse carries a message and a 400/500-style code.

msgpack encoding has ~30 to 50% smaller message sizes compared to JSON.
binary format enables faster parsing and generation, less errors and reducing latency in most cases.
*/
package server

// CompletionRequest - completion or management request
type CompletionRequest struct {
	ID       string          `msgpack:"id"`
	Action   string          `msgpack:"a,omitempty"` // "", "complete", "health", "info", "reload"
	Prefix   string          `msgpack:"p"`
	Limit    int             `msgpack:"l,omitempty"`
	Fuzzy    bool            `msgpack:"f,omitempty"`
	Contexts []ContextFilter `msgpack:"cx,omitempty"`
	MatchAll bool            `msgpack:"all,omitempty"`
}

// ContextFilter - one allowed context in a completion request
type ContextFilter struct {
	Token  string  `msgpack:"t"`
	Boost  float64 `msgpack:"b,omitempty"`
	Prefix bool    `msgpack:"px,omitempty"`
}

// Suggestion - one ranked completion
type Suggestion struct {
	Word    string  `msgpack:"w"`
	Context string  `msgpack:"ctx,omitempty"`
	Rank    uint16  `msgpack:"r"`
	Score   float64 `msgpack:"sc"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// StatusResponse - health, info and reload response
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Keys   int    `msgpack:"k,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

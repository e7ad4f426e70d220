// Package api defines the request and response types of the Roundtable
// HTTP API.
//
// # API Overview
//
// Roundtable provides a RESTful API for:
//   - Creating turn-based conversations between configured speakers
//   - Priming a conversation with an opening utterance
//   - Advancing conversations turn by turn, or running them to completion
//   - Reading back the shared transcript
//   - Streaming turns over WebSocket as they complete
//
// # Authentication
//
// When an auth secret is configured, API endpoints require a JWT bearer
// token:
//
//	Authorization: Bearer <token>
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api

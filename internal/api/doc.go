// Package api serves mood analysis over HTTP.
//
// POST /api/analyze takes {"text": "..."} and answers with
// {"sentiment", "insight", "habit"}. GET /health reports liveness.
package api

// Package server provides the HTTP server of versionboard's serve mode.
//
// Routes:
//
//   - GET /: the latest rendered report page
//   - GET /api/rows: the latest report as JSON
//   - GET /api/status: generation status (last success, last error)
//   - GET /api/sse: Server-Sent Events announcing each generation attempt
//   - GET /metrics: Prometheus metrics
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the versionboard library should not need to interact with this
// package directly. The server is started by versionboard.Board.
package server

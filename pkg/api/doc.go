// Package api serves the simplification pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz              liveness probe
//	GET  /version              build information
//	POST /v1/simplify          pipeline.Options in, simplified document out
//	POST /v1/render/{format}   pipeline.Options in, one artifact out
//	POST /v1/simulate          forward.Parameters in, simulated document out
//
// Errors are JSON objects {"code": ..., "message": ...}. Invalid input
// (INVALID_* codes) maps to 400, everything else to 500.
package api

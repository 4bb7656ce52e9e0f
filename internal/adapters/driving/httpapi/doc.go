// Package httpapi exposes the ledger over a JSON REST API built on gin.
//
// Every response is wrapped in an envelope:
//
//	{"schema_version": "v1", "status": "success", "data": {...}}
//	{"schema_version": "v1", "status": "error", "error": {"code": "NOT_FOUND", "message": "..."}}
//
// Routes live under /api. Domain errors map to 400 (invalid argument),
// 404 (not found), 409 (conflict or invalid state) and 500 otherwise.
package httpapi

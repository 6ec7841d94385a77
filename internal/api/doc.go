// Package api implements the HTTP handlers for the task API: authentication,
// task lifecycle operations, task groupings, and statistics. Handlers decode
// and validate requests, delegate to the service layer, and translate service
// errors into sanitized HTTP responses.
package api

// Package httputil provides JSON request and response helpers for the
// indoorroute HTTP API.
//
// # Overview
//
//   - [WriteJSON]: encode a value with a status code
//   - [WriteError]: render an error as {code, message}
//   - [DecodeJSON]: strict, size-limited request body decoding
//   - [Status]: map a pkg/errors code to an HTTP status
//
// # Errors
//
// Coded errors from pkg/errors keep their code on the wire so clients can
// branch on it:
//
//	{"code": "NOT_FOUND", "message": "place \"Gym\" not on floor L2"}
//
// Errors without a code are reported as INTERNAL_ERROR and their text is
// not exposed.
package httputil

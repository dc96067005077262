// Package client talks to the devsync backend over REST.
//
// # Overview
//
// Client is the transport-agnostic contract used by the reconciliation
// engine and the CLI services. HTTPClient implements it over JSON/HTTP:
// it resolves endpoints against a base URL, injects the bearer token read
// from a TokenStore and maps failures to the error taxonomy below.
//
// # Error Handling
//
//   - ErrUnavailable: the request never produced a response (refused,
//     reset, DNS, deadline exceeded). Match with errors.Is or IsUnavailable.
//   - ErrUnauthorized: the server answered 401. The stored token is cleared.
//   - *ValidationError: any other 4xx. The server message is kept.
//   - *ServerError: 5xx.
//
// All methods honor context cancellation and deadlines.
package client

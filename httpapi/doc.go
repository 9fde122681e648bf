// Package httpapi is the REST surface of the library service. Responses use
// jsend envelopes: "success" with a data payload, "fail" for request errors
// carrying a stable machine-readable kind, "error" for server-side failures.
//
// Authentication is a bearer token; unauthenticated callers may only read
// the catalog. Every other route is gated through the access control gate
// before any handler logic runs.
package httpapi

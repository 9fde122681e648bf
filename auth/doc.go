// Package auth covers the identity side of the service: user accounts with
// bcrypt credentials, HS256 bearer tokens with an optional allowlist store,
// and the access control gate.
//
// The gate is a single capability-set abstraction: role -> permitted actions,
// evaluated once per request. Role checks are never scattered through
// handlers as ad hoc conditionals.
package auth

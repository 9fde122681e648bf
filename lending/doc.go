// Package lending is the loan manager: it creates loans through the atomic
// reservation the storage engines provide, closes them on return with an
// idempotency guard, and serves the borrow listings with overdue state
// derived at read time.
package lending

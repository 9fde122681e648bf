// Package adapters provides database abstraction for the SQL storage engine.
//
// The adapters wrap pgxpool.Pool, sql.DB and sqlx.DB behind common
// interfaces, so the engine builds SQL once and runs it against whichever
// driver the deployment uses. Transactions are part of the contract because
// the loan reservation critical section needs one.
package adapters

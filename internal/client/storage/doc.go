// Package storage is the durable local side of the client: the developer
// cache, the pending write queue and the saved session. Everything lives in
// one SQLite database migrated with goose from the embedded migrations.
//
// Each type keeps only the *sql.DB and builds repositories per operation, so
// multi-step writes can run the same repositories over a transaction.
package storage

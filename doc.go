// Package sqlite is a low-level client library for the embedded SQLite
// engine. It wraps the engine's C-style handle API with Go-owned
// connection, statement, transaction and savepoint objects, a prepared
// statement cache, and a small closed value model for binding parameters
// and reading columns.
//
// A Conn is not safe for concurrent use; open one connection per
// goroutine, or guard a shared connection externally. InterruptHandle is
// the one cross-goroutine surface: it aborts in-flight statements from
// anywhere.
package sqlite

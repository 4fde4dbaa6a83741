// Package testdb provides helpers for database integration tests.
//
// Tests obtain a migrated connection with GetTestDBWithT, which skips the
// test when no database URL is configured. WithTx runs a test body inside a
// transaction that is always rolled back, so tests that do not need
// committed data leave nothing behind:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.GetTestDBWithT(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			users := postgres.NewPostgresUserStore(tx, nil)
//			// ...
//		})
//	}
//
// A unique violation aborts the surrounding transaction in PostgreSQL, so
// tests asserting more than one constraint error should use the connection
// directly.
package testdb

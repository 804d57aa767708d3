// Package repository implements the data access layer.
//
// Accounts live in SurrealDB and are read through the database.Database
// interface so tests can substitute a fake. Revoked token IDs live in Redis
// under a key prefix, each with a TTL equal to the token's remaining
// lifetime, so the denylist never outgrows the set of live tokens.
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::record() for safe ID handling
//   - time::now() for automatic timestamps
//
// # Example Usage
//
//	users := NewUserRepository(db)
//	user, err := users.GetByEmail(ctx, "test@example.com")
//	if err != nil {
//	    return err
//	}
//	if user == nil {
//	    // no such account
//	}
package repository

// Package database provides the SurrealDB connection behind the user
// directory.
//
// The Database interface offers three query methods:
//   - Query: Returns every statement result
//   - QueryOne: Returns the first record of the first statement
//   - Execute: No return value (for CREATE/UPDATE/DELETE mutations)
//
// Standard errors are defined for common failure cases and should be
// matched with errors.Is:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
//
// # Usage Example
//
//	db := database.NewSurrealDB(cfg)
//	if err := db.Connect(ctx); err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.ApplySchema(ctx); err != nil {
//	    return err
//	}
package database

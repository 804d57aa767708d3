// Package model defines the account type and the API error envelope.
//
// Every error the HTTP layer returns is an APIError rendered as
//
//	{"error": "Invalid token"}
//
// with an extra "fields" map on validation failures. Password hashes carry
// a "-" json tag and never leave the process.
package model

// Package config loads and validates the SSO service configuration.
//
// Values come from an optional config.yaml (or the file named by
// CONFIG_FILE) and are overridden by environment variables. Nested keys map
// to upper-case variables with dots replaced by underscores, so jwt.secret
// is read from JWT_SECRET:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	codec, err := jwt.NewCodec(cfg.TokenConfig())
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: HS256 secret and issuer
//   - RevocationConfig: optional Redis denylist
//   - RateLimitConfig: throttling for the /auth routes
package config

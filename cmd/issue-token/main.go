package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wxyClark/LaravelX-AI/internal/config"
	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/internal/service"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
)

func main() {
	userID := flag.String("id", "", "User ID for the token subject (required)")
	name := flag.String("name", "", "Display name embedded in the token")
	email := flag.String("email", "", "Email embedded in the token")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		flag.Usage()
		os.Exit(2)
	}

	// Same configuration as the server, so the token verifies there
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "Error: JWT_SECRET is not set")
		os.Exit(1)
	}

	codec, err := jwt.NewCodec(cfg.TokenConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating token codec: %v\n", err)
		os.Exit(1)
	}
	tokens := service.NewTokenService(service.TokenServiceConfig{Codec: codec})

	token, err := tokens.Issue(&model.User{
		ID:    *userID,
		Name:  *name,
		Email: *email,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		output := map[string]any{
			"access_token": token,
			"token_type":   service.TokenType,
			"expires_in":   tokens.ExpiresIn(),
			"user": jwt.UserSummary{
				ID:    *userID,
				Name:  *name,
				Email: *email,
			},
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
		return
	}

	expTime := time.Now().Add(service.Validity)
	fmt.Println("Token Issued")
	fmt.Println("============")
	fmt.Printf("User ID:  %s\n", *userID)
	fmt.Printf("Email:    %s\n", *email)
	fmt.Printf("Issuer:   %s\n", codec.Issuer())
	fmt.Printf("Expires:  %s\n", expTime.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:%s/auth/verify\n", token, cfg.Server.Port)
}

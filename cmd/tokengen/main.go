package main

import (
	"context"
	"fmt"
	"os"

	"github.com/USSTM/courier-console/internal/auth"
	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/rbac"
)

// Issues a console token for local testing against the gateway.
func main() {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <user-id> <email> <role>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s user-1 dispatch@example.com dispatcher\n", os.Args[0])
		os.Exit(1)
	}

	userID, email, role := os.Args[1], os.Args[2], os.Args[3]

	cfg := config.Load()

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create JWT service: %v\n", err)
		os.Exit(1)
	}

	resolver := rbac.NewResolver(rbac.DefaultPolicy())
	if len(resolver.RolePermissions(role)) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: role %q has no permissions in the built-in table\n", role)
	}

	token, err := jwtService.GenerateToken(context.Background(), userID, email, role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}

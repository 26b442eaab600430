package main

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"coin-arena/config"
	api "coin-arena/src/api"
)

// Prints a signed operator token, or a bcrypt hash for ARENA_ADMIN_PASSWORD_HASH with --hash.
func main() {
	subject := flag.StringP("subject", "s", "", "token subject (defaults to ARENA_ADMIN_USERNAME)")
	role := flag.StringP("role", "r", api.RoleAdmin, "role claim: viewer, operator or admin")
	ttl := flag.DurationP("ttl", "t", time.Hour, "token lifetime")
	hash := flag.String("hash", "", "print a bcrypt hash of this password instead of a token")
	flag.Parse()

	if *hash != "" {
		if err := api.ValidateOperatorPassword(*hash); err != nil {
			fmt.Fprintf(os.Stderr, "error: weak password:\n%v\n", err)
			os.Exit(1)
		}
		out, err := bcrypt.GenerateFromPassword([]byte(*hash), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		fmt.Fprintln(os.Stderr, "warn: signing with the default JWT secret; set ARENA_JWT_SECRET")
	}
	sub := *subject
	if sub == "" {
		sub = cfg.AdminUsername
	}
	token, err := api.GenerateToken(cfg.JWTSecret, cfg.JWTIssuer, sub, *role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

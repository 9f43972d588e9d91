// Command issuetoken signs a development access token with the server's JWT settings.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/example/task-manager/config"
	"github.com/example/task-manager/modules/auth"
)

func main() {
	cfg := config.Load()

	userID := flag.String("user", "", "User id placed in the user_id and sub claims")
	email := flag.String("email", "", "Email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: issuetoken -user <id> [-email <addr>] [-ttl 24h]")
		os.Exit(2)
	}

	manager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:           cfg.JWTSecret,
		Issuer:              cfg.JWTIssuer,
		AccessTokenDuration: *ttl,
	})

	token, err := manager.GenerateAccessToken(*userID, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}

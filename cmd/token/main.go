// Command token mints a bearer token for local development against a docvault server
// sharing the same JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"docvault/internal/config"
	"docvault/internal/http/middleware"
	"docvault/internal/model"
)

func main() {
	var (
		userID   = flag.String("sub", "", "user id (required)")
		username = flag.String("username", "", "display name")
		admin    = flag.Bool("admin", false, "grant the ADMIN role")
		ttl      = flag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.JWTSecret == "" || *userID == "" {
		flag.Usage()
		log.Fatal("JWT_SECRET and -sub are required")
	}

	who := model.Identity{UserID: *userID, Username: *username, Role: model.RoleUser}
	if *admin {
		who.Role = model.RoleAdmin
	}
	tok, err := middleware.GenerateToken(who, []byte(cfg.JWTSecret), *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Fprintln(os.Stdout, tok)
}

// seed creates a demo list owned by a dev user and prints a login link for
// that user. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/ErlanBelekov/superlists/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/superlists/internal/usecase"
)

const seedEmail = "edith@example.com"

var items = []string{
	"Buy peacock feathers",
	"Use peacock feathers to make a fly",
	"Go fishing",
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}
	baseURL := os.Getenv("LOGIN_LINK_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatalf("migrate: %v", err)
	}

	tokens := postgres.NewTokenRepository(pool)
	lists := usecase.NewListUsecase(postgres.NewListRepository(pool))

	owner := seedEmail
	list, err := lists.CreateList(ctx, &owner, items[0])
	if err != nil {
		pool.Close()
		log.Fatalf("create list: %v", err)
	}
	for _, text := range items[1:] {
		if _, err := lists.AddItem(ctx, list.ID, text); err != nil {
			pool.Close()
			log.Fatalf("add item %q: %v", text, err)
		}
	}

	tok, err := usecase.NewTokenIssuer(tokens).Issue(ctx, seedEmail)
	if err != nil {
		pool.Close()
		log.Fatalf("issue token: %v", err)
	}

	pool.Close()

	loginURL := baseURL + "/accounts/login?token=" + url.QueryEscape(tok.UID)

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:    %s\n", seedEmail)
	fmt.Printf("  List ID: %s  (%d items)\n", list.ID, len(items))
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in with the seeded token:")
	fmt.Println()
	fmt.Printf("    curl -s '%s'\n", loginURL)
	fmt.Println("    # → {\"token\":\"eyJ...\",\"email\":\"" + seedEmail + "\"}")
	fmt.Println()
	fmt.Println("  Step 2 — fetch your lists:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/lists -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3 — add an item anonymously:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/lists/%s/items \\\n", list.ID)
	fmt.Printf("      -H 'Content-Type: application/json' -d '{\"text\":\"Buy bait\"}'\n")
}

package main

import (
	"context"
	"fmt"
	"log"

	"cottonwood-backend/internal/config"
	"cottonwood-backend/internal/db"
)

// Clears synced membership data so the next sync rebuilds it from Shopify.
// Run with: go run scripts/reset_db.go
func main() {
	fmt.Println("⚠️  WARNING: This will clear all Club Cottonwood data!")
	fmt.Println("This will:")
	fmt.Println("  - Delete all members and their orders")
	fmt.Println("  - Delete the activity log")
	fmt.Println("  - Delete stored settings (last sync time, email template)")
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	fmt.Println()
	fmt.Println("🔄 Resetting database...")

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v\n", err)
	}
	defer tx.Rollback(ctx)

	// member_orders goes with members via ON DELETE CASCADE
	for _, table := range []string{"members", "activity_logs", "system_settings"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			log.Fatalf("Failed to truncate %s: %v\n", table, err)
		}
		fmt.Printf("  ✓ Cleared %s\n", table)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v\n", err)
	}

	fmt.Println()
	fmt.Println("✅ Database reset complete. Run a full sync to repopulate members.")
}

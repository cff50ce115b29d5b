// dbhealth opens the local database, pings it, and summarizes what the
// learning store has accumulated.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/conferente/labelscan/internal/common"
	"github.com/conferente/labelscan/internal/knowledge"
	repo "github.com/conferente/labelscan/internal/repository"
)

func main() {
	cfg := common.LoadConfig()
	if cfg.Database.Path == "" {
		log.Println("ERROR: DB_PATH env var is required")
		log.Println("  mac/Linux (bash/zsh): export DB_PATH=./conferente.db")
		log.Println("  Windows (PowerShell): $env:DB_PATH='./conferente.db'")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.Default()
	db, err := repo.Open(ctx, cfg.Database.Path, nil)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Printf("ERROR: closing db: %v", cerr)
		}
	}()

	if err := repo.HealthCheck(ctx, db, 1*time.Second, nil); err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	log.Println("DB health: OK")

	store, err := knowledge.NewStore(ctx, repo.NewKnowledgeRepository(db, nil), nil)
	if err != nil {
		log.Fatalf("loading knowledge base: %v", err)
	}
	log.Printf("suppliers known: %d", len(store.Suppliers()))
	log.Printf("products known: %d", len(store.Products()))

	records, err := repo.NewRecordRepository(db, nil).List(ctx, nil, nil)
	if err != nil {
		log.Fatalf("listing weighing records: %v", err)
	}
	log.Printf("weighing records: %d", len(records))
	for _, r := range records {
		log.Printf("- [%s] %s / %s net=%.3fkg status=%s",
			r.Timestamp.Format("02/01/2006"), r.Supplier, r.Product, r.NetWeight, r.Status)
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"

	"boykot-backend/internal/config"
	"boykot-backend/internal/logger"
	model "boykot-backend/internal/models"
	"boykot-backend/internal/store"
)

// Seeds the boycott-company directory from a JSON file. The app itself never
// writes to this collection.
func main() {
	file := flag.String("file", "companies.json", "path to the companies JSON file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("Could not read %s: %v", *file, err)
		os.Exit(1)
	}

	var companies []model.Company
	if err := json.Unmarshal(raw, &companies); err != nil {
		logger.Error("Could not parse %s: %v", *file, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Error("Mongo connection failed: %v", err)
		os.Exit(1)
	}
	defer st.Close(ctx)

	created, skipped := 0, 0
	for _, company := range companies {
		var existing []model.Company
		_, err := st.ListMany(ctx, store.CollBoycottCompanies, store.Query{
			Filters: []store.Filter{{Field: "name", Op: store.OpEq, Value: company.Name}},
			Page:    store.Page{Size: 1},
		}, &existing)
		if err != nil {
			logger.Error("Lookup failed for %q: %v", company.Name, err)
			os.Exit(1)
		}
		if len(existing) > 0 {
			skipped++
			continue
		}

		key := company.ID
		if key == "" {
			key = uuid.NewString()
		}
		if _, err := st.Create(ctx, store.CollBoycottCompanies, key, company); err != nil {
			logger.Error("Insert failed for %q: %v", company.Name, err)
			os.Exit(1)
		}
		created++
	}

	logger.Success("Seeded %d companies (%d already present)", created, skipped)
}

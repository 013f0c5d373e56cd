// algolia-setup applies the transaction index settings and can backfill
// one user's transactions from Firestore.
//
// Usage:
//
//	ALGOLIA_APP_ID=... ALGOLIA_ADMIN_KEY=... go run ./scripts/algolia-setup
//	ALGOLIA_APP_ID=... ALGOLIA_ADMIN_KEY=... GOOGLE_CLOUD_PROJECT=... BACKFILL_USER=uid go run ./scripts/algolia-setup
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/model"
	"github.com/budgetbolt/backend/internal/search"
	"github.com/budgetbolt/backend/internal/store"
)

func main() {
	log := logger.Component("algolia-setup")

	cfg := search.Config{
		AppID:     os.Getenv("ALGOLIA_APP_ID"),
		APIKey:    os.Getenv("ALGOLIA_ADMIN_KEY"),
		IndexName: os.Getenv("ALGOLIA_INDEX"),
	}
	if cfg.AppID == "" || cfg.APIKey == "" {
		log.Fatal().Msg("ALGOLIA_APP_ID and ALGOLIA_ADMIN_KEY are required")
	}
	if cfg.IndexName == "" {
		cfg.IndexName = search.DefaultIndex
	}

	indexer, err := search.NewAlgoliaIndexer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Algolia indexer")
	}

	ctx := context.Background()
	taskID, err := indexer.Configure(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set index settings")
	}
	log.Info().Str("index", cfg.IndexName).Int64("task", taskID).Msg("Index settings applied")

	settings := search.IndexSettings()
	fmt.Println()
	fmt.Println("=== Algolia Index Configuration ===")
	fmt.Printf("Index:              %s\n", cfg.IndexName)
	fmt.Printf("Searchable attrs:   %s\n", strings.Join(settings.SearchableAttributes, ", "))
	fmt.Printf("Facets:             %s\n", strings.Join(settings.AttributesForFaceting, ", "))
	fmt.Printf("Numeric filters:    %s\n", strings.Join(settings.NumericAttributesForFiltering, ", "))
	fmt.Printf("Custom ranking:     %s\n", strings.Join(settings.CustomRanking, ", "))
	fmt.Println()

	uid := os.Getenv("BACKFILL_USER")
	if uid == "" {
		return
	}
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		log.Fatal().Msg("GOOGLE_CLOUD_PROJECT is required for a backfill")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Firestore client")
	}
	defer client.Close()

	n, err := backfill(ctx, store.NewFirestoreStore(client), indexer, uid)
	if err != nil {
		log.Fatal().Err(err).Msg("Backfill failed")
	}
	log.Info().Str("user", logger.HashUserID(uid)).Int("indexed", n).Msg("Backfill complete")
}

func backfill(ctx context.Context, st store.Store, indexer search.Indexer, uid string) (int, error) {
	docs, err := st.List(ctx, store.Query{Collection: store.UserCollection(uid, store.Transactions)})
	if err != nil {
		return 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	indexed := 0
	for _, doc := range docs {
		var tx model.Transaction
		if err := doc.DataTo(&tx); err != nil {
			logger.Log.Warn().Err(err).Str("id", doc.ID).Msg("skipping undecodable transaction")
			continue
		}
		if err := indexer.Index(ctx, uid, tx); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}

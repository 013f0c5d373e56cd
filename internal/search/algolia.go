package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/algolia/algoliasearch-client-go/v4/algolia/search"
	"github.com/budgetbolt/backend/internal/logger"
	"github.com/budgetbolt/backend/internal/model"
)

// DefaultIndex is used when no index name is configured.
const DefaultIndex = "budgetbolt-transactions"

// Config holds Algolia configuration.
type Config struct {
	AppID     string
	APIKey    string // search-only key for queries, admin key for indexing
	IndexName string
}

// AlgoliaClient wraps the Algolia search API client.
type AlgoliaClient struct {
	client    *search.APIClient
	indexName string
}

// NewAlgoliaClient creates a new Algolia search client.
func NewAlgoliaClient(cfg Config) (*AlgoliaClient, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("algolia AppID and APIKey are required")
	}
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndex
	}

	client, err := search.NewClient(cfg.AppID, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("creating algolia client: %w", err)
	}

	return &AlgoliaClient{
		client:    client,
		indexName: cfg.IndexName,
	}, nil
}

// Search performs a full-text search via Algolia.
func (c *AlgoliaClient) Search(ctx context.Context, params Params) (*Response, error) {
	if params.UserID == "" {
		return nil, fmt.Errorf("algolia search: user id is required")
	}
	page, pageSize := pageBounds(params)

	searchParams := search.SearchParamsObjectAsSearchParams(
		search.NewSearchParamsObject().
			SetQuery(params.Query).
			SetHitsPerPage(int32(pageSize)).
			SetPage(int32(page)).
			SetFilters(buildFilters(params)),
	)

	resp, err := c.client.SearchSingleIndex(c.client.NewApiSearchSingleIndexRequest(c.indexName).WithSearchParams(searchParams))
	if err != nil {
		return nil, fmt.Errorf("algolia search: %w", err)
	}

	log := logger.Component("search")
	results := make([]model.Transaction, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		tx, ok := fromRecord(hit.AdditionalProperties)
		if !ok {
			log.Warn().Msg("skipping hit with no objectID")
			continue
		}
		results = append(results, tx)
	}

	out := &Response{Results: results, Page: page}
	if resp.NbHits != nil {
		out.TotalCount = int(*resp.NbHits)
	}
	if resp.NbPages != nil {
		out.TotalPages = int(*resp.NbPages)
	}
	return out, nil
}

// buildFilters constructs the Algolia filter string. The user filter is
// always present.
func buildFilters(params Params) string {
	parts := []string{fmt.Sprintf("userId:%q", params.UserID)}

	if params.Category != "" {
		parts = append(parts, fmt.Sprintf("category:%q", params.Category))
	}

	switch params.Type {
	case model.FilterExpense:
		parts = append(parts, `type:"expense"`)
	case model.FilterIncome:
		parts = append(parts, `type:"income"`)
	}

	if params.AmountMin > 0 {
		parts = append(parts, fmt.Sprintf("amount >= %f", params.AmountMin))
	}
	if params.AmountMax > 0 {
		parts = append(parts, fmt.Sprintf("amount <= %f", params.AmountMax))
	}

	if params.StartDate != nil {
		parts = append(parts, fmt.Sprintf("dateUnix >= %d", params.StartDate.Unix()))
	}
	if params.EndDate != nil {
		parts = append(parts, fmt.Sprintf("dateUnix <= %d", params.EndDate.Unix()))
	}

	return strings.Join(parts, " AND ")
}

// AlgoliaIndexer writes transaction records with an admin key.
type AlgoliaIndexer struct {
	client    *search.APIClient
	indexName string
}

// NewAlgoliaIndexer creates an indexer. cfg.APIKey must be an admin key.
func NewAlgoliaIndexer(cfg Config) (*AlgoliaIndexer, error) {
	c, err := NewAlgoliaClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AlgoliaIndexer{client: c.client, indexName: c.indexName}, nil
}

// Index upserts the record of tx.
func (i *AlgoliaIndexer) Index(ctx context.Context, uid string, tx model.Transaction) error {
	if _, err := i.client.SaveObject(i.client.NewApiSaveObjectRequest(i.indexName, ToRecord(uid, tx))); err != nil {
		return fmt.Errorf("algolia save object: %w", err)
	}
	return nil
}

// Remove deletes the record with the given transaction id.
func (i *AlgoliaIndexer) Remove(ctx context.Context, id string) error {
	if _, err := i.client.DeleteObject(i.client.NewApiDeleteObjectRequest(i.indexName, id)); err != nil {
		return fmt.Errorf("algolia delete object: %w", err)
	}
	return nil
}

// Configure applies the index settings the filters above depend on.
func (i *AlgoliaIndexer) Configure(ctx context.Context) (int64, error) {
	resp, err := i.client.SetSettings(i.client.NewApiSetSettingsRequest(i.indexName, IndexSettings()))
	if err != nil {
		return 0, fmt.Errorf("algolia set settings: %w", err)
	}
	return resp.TaskID, nil
}

func int32Ptr(v int32) *int32 { return &v }

// IndexSettings is the single source of truth for the index configuration.
func IndexSettings() *search.IndexSettings {
	return &search.IndexSettings{
		SearchableAttributes: []string{
			"notes",
			"category",
		},
		AttributesForFaceting: []string{
			"filterOnly(userId)",
			"searchable(category)",
			"filterOnly(type)",
		},
		NumericAttributesForFiltering: []string{
			"amount",
			"amountCents",
			"dateUnix",
		},
		// most recent first after text relevance
		CustomRanking: []string{
			"desc(dateUnix)",
		},
		// userId is filter-only and never returned
		AttributesToRetrieve: []string{
			"objectID",
			"notes",
			"category",
			"categoryId",
			"type",
			"amount",
			"amountCents",
			"currency",
			"date",
			"dateUnix",
		},
		AttributesToHighlight: []string{
			"notes",
			"category",
		},
		HitsPerPage:          int32Ptr(defaultPageSize),
		MinWordSizefor1Typo:  int32Ptr(4),
		MinWordSizefor2Typos: int32Ptr(8),
	}
}

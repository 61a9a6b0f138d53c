// Package elasticsearch implements the ListingStore contract against
// Elasticsearch, selectable via config.Database.Driver as an alternate
// backend to Postgres for deployments that prefer a dedicated search
// engine over trigram similarity in the primary database.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// Store implements interfaces.ListingStore against an Elasticsearch index
// of denormalized listing documents.
type Store struct {
	client *elasticsearch.Client
	index  string
}

// NewStore builds the Elasticsearch-backed ListingStore
func NewStore(addr, index string) (interfaces.ListingStore, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &Store{client: client, index: index}, nil
}

type listingDoc struct {
	types.Listing
}

// Search builds a bool query mirroring the Postgres backend's strategy
// ladder semantics: a should-clause per expanded keyword (matching title
// and description with fuzziness for trigram-equivalent tolerance) plus
// must-clauses for whichever filters the rung requires.
func (s *Store) Search(ctx context.Context, q interfaces.ListingQuery) ([]*types.Listing, int, error) {
	must := []map[string]any{
		{"term": map[string]any{"status": types.ListingStatusActive}},
	}
	if q.RequireCategory && len(q.CategorySlugs) > 0 {
		must = append(must, map[string]any{"terms": map[string]any{"category_slug": q.CategorySlugs}})
	}
	if q.CityID != "" {
		must = append(must, map[string]any{"term": map[string]any{"city_id": q.CityID}})
	}
	if q.TransactionType != "" {
		must = append(must, map[string]any{"term": map[string]any{"transaction_type": q.TransactionType}})
	}

	should := make([]map[string]any, 0, len(q.Keywords))
	for _, kw := range q.Keywords {
		should = append(should, map[string]any{
			"multi_match": map[string]any{
				"query":     kw,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		})
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = types.DefaultStatsLimit
	}

	query := map[string]any{
		"from": (page - 1) * limit,
		"size": limit,
		"sort": []map[string]any{
			{"boosted": "desc"}, {"priority": "desc"}, {"created_at": "desc"},
		},
		"query": map[string]any{
			"bool": map[string]any{
				"must":                 must,
				"should":               should,
				"minimum_should_match": minimumShouldMatch(should),
			},
		},
	}

	listings, total, err := s.runSearch(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	logger.Debugf(ctx, "elasticsearch search: %d keywords, %d results of %d total", len(q.Keywords), len(listings), total)
	return listings, total, nil
}

func minimumShouldMatch(should []map[string]any) int {
	if len(should) == 0 {
		return 0
	}
	return 1
}

func (s *Store) runSearch(ctx context.Context, query map[string]any) ([]*types.Listing, int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, 0, err
	}

	req := esapi.SearchRequest{Index: []string{s.index}, Body: &buf}
	resp, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, 0, fmt.Errorf("elasticsearch search error: %s", resp.String())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}

	listings := make([]*types.Listing, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		l := hit.Source.Listing
		listings = append(listings, &l)
	}
	return listings, parsed.Hits.Total.Value, nil
}

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source listingDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *Store) MostViewed(ctx context.Context, limit int) ([]*types.Listing, error) {
	listings, _, err := s.runSearch(ctx, map[string]any{
		"size":  limit,
		"sort":  []map[string]any{{"views": "desc"}},
		"query": map[string]any{"term": map[string]any{"status": types.ListingStatusActive}},
	})
	return listings, err
}

func (s *Store) MostImpressioned(ctx context.Context, limit int) ([]*types.Listing, error) {
	listings, _, err := s.runSearch(ctx, map[string]any{
		"size": limit,
		"sort": []map[string]any{
			{"boosted": "desc"}, {"priority": "desc"}, {"views": "desc"},
		},
		"query": map[string]any{"term": map[string]any{"status": types.ListingStatusActive}},
	})
	return listings, err
}

func (s *Store) ListOffices(ctx context.Context, limit int) ([]*types.Office, error) {
	return nil, fmt.Errorf("elasticsearch backend does not index offices; configure a postgres driver for office queries")
}

func (s *Store) OfficeByIDOrName(ctx context.Context, idOrName string) (*types.Office, bool, error) {
	return nil, false, fmt.Errorf("elasticsearch backend does not index offices")
}

func (s *Store) OfficeListings(ctx context.Context, officeID string, page, limit int) ([]*types.Listing, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = types.DefaultStatsLimit
	}
	return s.runSearch(ctx, map[string]any{
		"from": (page - 1) * limit,
		"size": limit,
		"sort": []map[string]any{{"boosted": "desc"}, {"priority": "desc"}, {"created_at": "desc"}},
		"query": map[string]any{
			"bool": map[string]any{"must": []map[string]any{
				{"term": map[string]any{"office_id": officeID}},
				{"term": map[string]any{"status": types.ListingStatusActive}},
			}},
		},
	})
}

// CountListingsByOffice reports how many of an office's listings are
// active versus its all-time total, via two zero-size counting searches.
func (s *Store) CountListingsByOffice(ctx context.Context, officeID string) (active, total int, err error) {
	_, total, err = s.runSearch(ctx, map[string]any{
		"size":  0,
		"query": map[string]any{"term": map[string]any{"office_id": officeID}},
	})
	if err != nil {
		return 0, 0, err
	}
	_, active, err = s.runSearch(ctx, map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{"must": []map[string]any{
				{"term": map[string]any{"office_id": officeID}},
				{"term": map[string]any{"status": types.ListingStatusActive}},
			}},
		},
	})
	if err != nil {
		return 0, 0, err
	}
	return active, total, nil
}

func (s *Store) AttributesForListings(ctx context.Context, listingIDs []string) (map[string][]types.AttributeValue, error) {
	if len(listingIDs) == 0 {
		return map[string][]types.AttributeValue{}, nil
	}
	query := map[string]any{
		"size":  len(listingIDs),
		"query": map[string]any{"terms": map[string]any{"_id": listingIDs}},
	}
	listings, _, err := s.runSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]types.AttributeValue, len(listings))
	for _, l := range listings {
		out[l.ID] = l.Attributes
	}
	return out, nil
}

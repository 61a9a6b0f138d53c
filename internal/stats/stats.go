// Package stats answers the non-search intents: most-viewed,
// most-impressioned, office listing/browsing — each backed by the same
// ListingStore the Search Executor uses, enriched with the canonical
// attribute bag in a single follow-up fetch.
package stats

import (
	"context"

	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// canonicalAttributes is the fixed attribute-bag slug set every stats
// response enriches listings with, regardless of category.
var canonicalAttributes = []string{"price", "currency", "area", "rooms", "bathrooms", "year", "mileage", "brand", "model"}

// Service is the interfaces.StatsService implementation
type Service struct {
	store interfaces.ListingStore
}

// NewService wires the ListingStore the stats queries run against
func NewService(store interfaces.ListingStore) interfaces.StatsService {
	return &Service{store: store}
}

func (s *Service) MostViewed(ctx context.Context, limit int) ([]*types.Listing, error) {
	listings, err := s.store.MostViewed(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, listings)
}

func (s *Service) MostImpressioned(ctx context.Context, limit int) ([]*types.Listing, error) {
	listings, err := s.store.MostImpressioned(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, listings)
}

func (s *Service) ListOffices(ctx context.Context, limit int) ([]*types.Office, error) {
	return s.store.ListOffices(ctx, limit)
}

// OfficeDetails resolves idOrName by trying a UUID-shaped token as an ID
// first, falling back to a name contains-match; anything else goes
// straight to the name match. The returned office carries its active and
// total listing counts.
func (s *Service) OfficeDetails(ctx context.Context, idOrName string) (*types.Office, error) {
	office, found, err := s.store.OfficeByIDOrName(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	active, total, err := s.store.CountListingsByOffice(ctx, office.ID)
	if err != nil {
		return nil, err
	}
	office.ActiveListingsCount = active
	office.TotalListingsCount = total
	return office, nil
}

func (s *Service) OfficeListings(ctx context.Context, officeID string, page, limit int) ([]*types.Listing, int, error) {
	listings, total, err := s.store.OfficeListings(ctx, officeID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	enriched, err := s.enrich(ctx, listings)
	if err != nil {
		return nil, 0, err
	}
	return enriched, total, nil
}

// enrich attaches the canonical attribute bag to every listing via a
// single batched fetch, never one query per row.
func (s *Service) enrich(ctx context.Context, listings []*types.Listing) ([]*types.Listing, error) {
	if len(listings) == 0 {
		return listings, nil
	}
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	attrs, err := s.store.AttributesForListings(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		l.Attributes = filterCanonical(attrs[l.ID])
	}
	return listings, nil
}

func filterCanonical(values []types.AttributeValue) []types.AttributeValue {
	out := make([]types.AttributeValue, 0, len(values))
	for _, v := range values {
		for _, slug := range canonicalAttributes {
			if v.Slug == slug {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// Package postgres implements the ListingStore contract against
// PostgreSQL, using pg_trgm similarity for fuzzy text matching and
// straightforward clause-built filters for the strategy ladder.
package postgres

import (
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// Store implements interfaces.ListingStore
type Store struct {
	db *gorm.DB
}

// NewStore builds the Postgres-backed ListingStore
func NewStore(db *gorm.DB) interfaces.ListingStore {
	return &Store{db: db}
}

// Search runs one rung of the strategy ladder: keyword match (exact,
// prefix, or trigram similarity ≥0.2) combined with whichever of
// category/location/transaction-type filters the caller requires.
func (s *Store) Search(ctx context.Context, q interfaces.ListingQuery) ([]*types.Listing, int, error) {
	db := s.db.WithContext(ctx).Model(&types.Listing{}).Where("status = ?", types.ListingStatusActive)

	conds := make([]clause.Expression, 0)
	if len(q.Keywords) > 0 {
		conds = append(conds, clause.OrConditions{Exprs: keywordConditions(q.Keywords)})
	}
	if q.RequireCategory && len(q.CategorySlugs) > 0 {
		db = db.Where("category_slug IN ?", q.CategorySlugs)
	} else if len(q.CategorySlugs) > 0 {
		conds = append(conds, clause.Expr{SQL: "category_slug IN ?", Vars: []interface{}{q.CategorySlugs}})
	}
	if q.RequireLocation && q.CityID != "" {
		db = db.Where("city_id = ?", q.CityID)
		if q.NeighborhoodID != "" {
			db = db.Where("neighborhood_id = ?", q.NeighborhoodID)
		}
	} else {
		if q.CityID != "" {
			conds = append(conds, clause.Expr{SQL: "city_id = ?", Vars: []interface{}{q.CityID}})
		}
	}
	if q.TransactionType != "" {
		db = db.Where("transaction_type = ?", q.TransactionType)
	}
	if len(conds) > 0 {
		db = db.Clauses(clause.Where{Exprs: conds})
	}

	var total int64
	countDB := db
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = types.DefaultStatsLimit
	}

	var listings []*types.Listing
	err := db.
		Order("boosted desc, priority desc, created_at desc, id asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	logger.Debugf(ctx, "postgres search: %d keywords, %d results of %d total", len(q.Keywords), len(listings), total)
	return listings, int(total), nil
}

// keywordConditions builds one exact/prefix/trigram-similarity clause per
// expanded keyword, matched against title or description.
func keywordConditions(keywords []string) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(keywords))
	for _, kw := range keywords {
		exprs = append(exprs, clause.Expr{
			SQL: "(title ILIKE ? OR description ILIKE ? OR similarity(title, ?) >= 0.2 OR similarity(description, ?) >= 0.2)",
			Vars: []interface{}{
				kw + "%", "%" + kw + "%", kw, kw,
			},
		})
	}
	return exprs
}

func (s *Store) MostViewed(ctx context.Context, limit int) ([]*types.Listing, error) {
	var listings []*types.Listing
	err := s.db.WithContext(ctx).
		Where("status = ?", types.ListingStatusActive).
		Order("views desc").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

// MostImpressioned orders by the synthetic boosted/priority/views score
// computed in Go (types.Listing.ImpressionScore), so the SQL mirrors that
// formula exactly rather than drifting from it.
func (s *Store) MostImpressioned(ctx context.Context, limit int) ([]*types.Listing, error) {
	var listings []*types.Listing
	err := s.db.WithContext(ctx).
		Where("status = ?", types.ListingStatusActive).
		Order("(views + (CASE WHEN boosted THEN 1000 ELSE 0 END) + priority * 10) desc").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

func (s *Store) ListOffices(ctx context.Context, limit int) ([]*types.Office, error) {
	var offices []*types.Office
	err := s.db.WithContext(ctx).
		Where("approved = ?", true).
		Order("premium desc, rating desc nulls last").
		Limit(limit).
		Find(&offices).Error
	return offices, err
}

// OfficeByIDOrName tries an exact ID match first when the lookup text is
// UUID-shaped (office IDs are UUID strings), falling back to a
// case-insensitive name contains-match when it isn't or no office has
// that ID.
func (s *Store) OfficeByIDOrName(ctx context.Context, idOrName string) (*types.Office, bool, error) {
	var office types.Office
	uuidShape := regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	if uuidShape.MatchString(idOrName) {
		err := s.db.WithContext(ctx).Where("id = ?", idOrName).First(&office).Error
		if err == nil {
			return &office, true, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, false, err
		}
	}

	err := s.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+idOrName+"%").
		Order("premium desc").
		First(&office).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &office, true, nil
}

func (s *Store) OfficeListings(ctx context.Context, officeID string, page, limit int) ([]*types.Listing, int, error) {
	db := s.db.WithContext(ctx).
		Model(&types.Listing{}).
		Where("office_id = ? AND status = ?", officeID, types.ListingStatusActive)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = types.DefaultStatsLimit
	}

	var listings []*types.Listing
	err := db.
		Order("boosted desc, priority desc, created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&listings).Error
	return listings, int(total), err
}

// CountListingsByOffice reports how many of an office's listings are
// active versus its all-time total, as two single-column count queries.
func (s *Store) CountListingsByOffice(ctx context.Context, officeID string) (active, total int, err error) {
	var totalCount, activeCount int64
	if err := s.db.WithContext(ctx).Model(&types.Listing{}).
		Where("office_id = ?", officeID).
		Count(&totalCount).Error; err != nil {
		return 0, 0, err
	}
	if err := s.db.WithContext(ctx).Model(&types.Listing{}).
		Where("office_id = ? AND status = ?", officeID, types.ListingStatusActive).
		Count(&activeCount).Error; err != nil {
		return 0, 0, err
	}
	return int(activeCount), int(totalCount), nil
}

// AttributesForListings fetches every attribute row for the given listing
// IDs in a single query, never per-row.
func (s *Store) AttributesForListings(ctx context.Context, listingIDs []string) (map[string][]types.AttributeValue, error) {
	if len(listingIDs) == 0 {
		return map[string][]types.AttributeValue{}, nil
	}

	var rows []listingAttributeRow
	err := s.db.WithContext(ctx).
		Table("listing_attribute_values").
		Where("listing_id IN ?", listingIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch listing attributes: %w", err)
	}

	out := make(map[string][]types.AttributeValue, len(listingIDs))
	for _, r := range rows {
		av := types.AttributeValue{AttributeID: r.AttributeID, Slug: r.Slug, Unit: r.Unit}
		if r.NumericValue != nil {
			av.NumericValue = r.NumericValue
		}
		if r.TextValue != nil {
			av.TextValue = r.TextValue
		}
		out[r.ListingID] = append(out[r.ListingID], av)
	}
	return out, nil
}

// listingAttributeRow mirrors the listing_attribute_values join table
type listingAttributeRow struct {
	ListingID    string   `gorm:"column:listing_id"`
	AttributeID  string   `gorm:"column:attribute_id"`
	Slug         string   `gorm:"column:slug"`
	NumericValue *float64 `gorm:"column:numeric_value"`
	TextValue    *string  `gorm:"column:text_value"`
	Unit         string   `gorm:"column:unit"`
}

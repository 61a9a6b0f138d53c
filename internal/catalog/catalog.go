// Package catalog implements the CatalogIndex: a periodically-refreshed,
// read-only snapshot of categories, locations, transaction types and
// attributes, served from memory via copy-on-write atomic swaps so
// readers never block on a refresh in progress.
package catalog

import (
	"context"
	"strings"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/kasioon/search-gateway/internal/config"
	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// snapshot is the immutable data published by one Refresh; readers always
// load a complete snapshot rather than touching individual fields.
type snapshot struct {
	categories      []*types.Category
	bySlug          map[string]*types.Category
	children        map[string][]*types.Category
	cities          []*types.City
	neighborhoods   map[string][]*types.Neighborhood
	transactionTypes []*types.TransactionType
	attributesByCat map[string][]*types.Attribute
	keywordAliases  map[string][]string // lowercase keyword -> expansion set, per current process language mix
}

// Index is the interfaces.CatalogIndex implementation
type Index struct {
	db       *gorm.DB
	current  atomic.Pointer[snapshot]
	embeddings *embeddingStore
	aliasPaths []string
}

// NewIndex builds the index and performs the initial synchronous load so
// the first request never races an empty snapshot.
func NewIndex(cfg *config.Config, db *gorm.DB) (interfaces.CatalogIndex, error) {
	idx := &Index{db: db, embeddings: newEmbeddingStore(db)}
	if cfg.Catalog != nil {
		idx.aliasPaths = cfg.Catalog.KeywordAliasPaths
	}
	if err := idx.Refresh(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

// Refresh reloads every reference table from storage and atomically swaps
// in the new snapshot; a failed refresh leaves the previous snapshot in
// place rather than ever serving a partial view.
func (idx *Index) Refresh(ctx context.Context) error {
	var categories []*types.Category
	if err := idx.db.WithContext(ctx).Order("\"order\" asc").Find(&categories).Error; err != nil {
		return err
	}

	children := make(map[string][]*types.Category)
	bySlug := make(map[string]*types.Category)
	for _, c := range categories {
		bySlug[c.Slug] = c
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}
	for _, c := range categories {
		c.IsLeaf = len(children[c.ID]) == 0
	}

	var cities []*types.City
	if err := idx.db.WithContext(ctx).Find(&cities).Error; err != nil {
		return err
	}

	var allNeighborhoods []*types.Neighborhood
	if err := idx.db.WithContext(ctx).Find(&allNeighborhoods).Error; err != nil {
		return err
	}
	neighborhoods := make(map[string][]*types.Neighborhood)
	for _, n := range allNeighborhoods {
		neighborhoods[n.CityID] = append(neighborhoods[n.CityID], n)
	}

	var txTypes []*types.TransactionType
	if err := idx.db.WithContext(ctx).Find(&txTypes).Error; err != nil {
		return err
	}

	var allAttrs []*types.Attribute
	if err := idx.db.WithContext(ctx).Find(&allAttrs).Error; err != nil {
		return err
	}
	attrsByCat := make(map[string][]*types.Attribute)
	for _, a := range allAttrs {
		attrsByCat[a.CategoryID] = append(attrsByCat[a.CategoryID], a)
	}

	aliases := loadKeywordAliases(idx.aliasPaths)

	idx.current.Store(&snapshot{
		categories:       categories,
		bySlug:           bySlug,
		children:         children,
		cities:           cities,
		neighborhoods:    neighborhoods,
		transactionTypes: txTypes,
		attributesByCat:  attrsByCat,
		keywordAliases:   aliases,
	})

	logger.Infof(ctx, "catalog snapshot refreshed: %d categories, %d cities", len(categories), len(cities))
	return nil
}

func (idx *Index) snap() *snapshot {
	return idx.current.Load()
}

func (idx *Index) Categories() []*types.Category {
	return idx.snap().categories
}

func (idx *Index) CategoryBySlug(slug string) (*types.Category, bool) {
	c, ok := idx.snap().bySlug[slug]
	return c, ok
}

func (idx *Index) IsLeaf(slug string) bool {
	c, ok := idx.snap().bySlug[slug]
	return ok && c.IsLeaf
}

func (idx *Index) LeafCategories() []*types.Category {
	s := idx.snap()
	out := make([]*types.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.IsLeaf {
			out = append(out, c)
		}
	}
	return out
}

func (idx *Index) Cities() []*types.City {
	return idx.snap().cities
}

// LookupCity resolves free text to a city by case-insensitive exact match
// on either the Arabic or English name; callers fall back to treating the
// text as a freeform location hint when this reports false.
func (idx *Index) LookupCity(text string, lang types.Language) (*types.City, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil, false
	}
	for _, c := range idx.snap().cities {
		if strings.ToLower(c.NameAr) == needle || strings.ToLower(c.NameEn) == needle {
			return c, true
		}
	}
	return nil, false
}

func (idx *Index) Neighborhoods(cityID string) []*types.Neighborhood {
	return idx.snap().neighborhoods[cityID]
}

func (idx *Index) TransactionTypes() []*types.TransactionType {
	return idx.snap().transactionTypes
}

func (idx *Index) AttributesFor(categorySlug string) []*types.Attribute {
	c, ok := idx.snap().bySlug[categorySlug]
	if !ok {
		return nil
	}
	return idx.snap().attributesByCat[c.ID]
}

// ExpandKeyword returns the configured synonym/alias expansion for a
// keyword, always including the keyword itself first.
func (idx *Index) ExpandKeyword(keyword string, lang types.Language) []string {
	out := []string{keyword}
	if aliases, ok := idx.snap().keywordAliases[strings.ToLower(keyword)]; ok {
		for _, a := range aliases {
			if !strings.EqualFold(a, keyword) {
				out = append(out, a)
			}
		}
	}
	return out
}

// NearestLeafByEmbedding delegates to the pgvector-backed fallback store;
// it only ever returns a slug the current snapshot confirms is a leaf.
func (idx *Index) NearestLeafByEmbedding(ctx context.Context, embedding []float32) (string, bool) {
	slug, ok := idx.embeddings.nearestLeaf(ctx, embedding)
	if !ok || !idx.IsLeaf(slug) {
		return "", false
	}
	return slug, true
}

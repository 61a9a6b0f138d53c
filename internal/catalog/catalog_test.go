package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasioon/search-gateway/internal/types"
)

func parentID(id string) *string { return &id }

func newTestIndex() *Index {
	idx := &Index{}

	realEstate := &types.Category{ID: "cat-real-estate", Slug: "real-estate", IsLeaf: false}
	apartments := &types.Category{ID: "cat-apartments", Slug: "apartments", ParentID: parentID("cat-real-estate"), IsLeaf: true}

	bySlug := map[string]*types.Category{
		"real-estate": realEstate,
		"apartments":  apartments,
	}
	children := map[string][]*types.Category{
		"cat-real-estate": {apartments},
	}

	cities := []*types.City{
		{ID: "city-damascus", NameAr: "دمشق", NameEn: "Damascus"},
	}

	attrs := map[string][]*types.Attribute{
		"cat-apartments": {{ID: "attr-rooms", Slug: "rooms"}},
	}

	idx.current.Store(&snapshot{
		categories:      []*types.Category{realEstate, apartments},
		bySlug:          bySlug,
		children:        children,
		cities:          cities,
		attributesByCat: attrs,
		keywordAliases: map[string][]string{
			"شقة": {"سكن", "بيت"},
		},
	})
	return idx
}

func TestIsLeafReflectsSnapshot(t *testing.T) {
	idx := newTestIndex()
	assert.True(t, idx.IsLeaf("apartments"))
	assert.False(t, idx.IsLeaf("real-estate"))
	assert.False(t, idx.IsLeaf("unknown-slug"))
}

func TestLeafCategoriesFiltersNonLeaves(t *testing.T) {
	idx := newTestIndex()
	leaves := idx.LeafCategories()
	assert.Len(t, leaves, 1)
	assert.Equal(t, "apartments", leaves[0].Slug)
}

func TestLookupCityMatchesArabicOrEnglishNameCaseInsensitively(t *testing.T) {
	idx := newTestIndex()

	c, ok := idx.LookupCity("دمشق", types.LanguageArabic)
	assert.True(t, ok)
	assert.Equal(t, "city-damascus", c.ID)

	c, ok = idx.LookupCity("damascus", types.LanguageEnglish)
	assert.True(t, ok)
	assert.Equal(t, "city-damascus", c.ID)

	_, ok = idx.LookupCity("aleppo", types.LanguageEnglish)
	assert.False(t, ok)

	_, ok = idx.LookupCity("   ", types.LanguageEnglish)
	assert.False(t, ok)
}

func TestAttributesForReturnsAttributesByCategorySlug(t *testing.T) {
	idx := newTestIndex()
	attrs := idx.AttributesFor("apartments")
	assert.Len(t, attrs, 1)
	assert.Equal(t, "rooms", attrs[0].Slug)

	assert.Nil(t, idx.AttributesFor("unknown-slug"))
}

func TestExpandKeywordAlwaysIncludesOriginalFirst(t *testing.T) {
	idx := newTestIndex()
	out := idx.ExpandKeyword("شقة", types.LanguageArabic)
	assert.Equal(t, []string{"شقة", "سكن", "بيت"}, out)

	out = idx.ExpandKeyword("لا يوجد", types.LanguageArabic)
	assert.Equal(t, []string{"لا يوجد"}, out)
}

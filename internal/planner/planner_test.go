package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

type fakeLLM struct {
	chatResponse  string
	chatResponses []string
	chatCall      int
	chatErr       error
	embedding     []float32
	embedErr      error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.ChatMessage, opts interfaces.ChatOptions) (string, error) {
	if f.chatErr != nil {
		return "", f.chatErr
	}
	if len(f.chatResponses) > 0 {
		idx := f.chatCall
		if idx >= len(f.chatResponses) {
			idx = len(f.chatResponses) - 1
		}
		f.chatCall++
		return f.chatResponses[idx], nil
	}
	return f.chatResponse, nil
}
func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embedding, f.embedErr
}
func (f *fakeLLM) EmbeddingDimension() int { return 8 }

type fakeCache struct{}

func (f *fakeCache) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	return false, nil
}
func (f *fakeCache) Set(ctx context.Context, namespace, key string, value any, ttl interfaces.TTLClass) error {
	return nil
}
func (f *fakeCache) Delete(ctx context.Context, namespace, key string) error        { return nil }
func (f *fakeCache) DeletePattern(ctx context.Context, namespace, pattern string) error { return nil }

type fakeCatalog struct {
	categories    []*types.Category
	leafSlugs     map[string]bool
	cities        []*types.City
	txTypes       []*types.TransactionType
	embeddingLeaf string
	aliases       map[string][]string
}

func (f *fakeCatalog) Categories() []*types.Category { return f.categories }
func (f *fakeCatalog) CategoryBySlug(slug string) (*types.Category, bool) {
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return nil, false
}
func (f *fakeCatalog) IsLeaf(slug string) bool { return f.leafSlugs[slug] }
func (f *fakeCatalog) LeafCategories() []*types.Category {
	var out []*types.Category
	for _, c := range f.categories {
		if f.leafSlugs[c.Slug] {
			out = append(out, c)
		}
	}
	return out
}
func (f *fakeCatalog) Cities() []*types.City                  { return f.cities }
func (f *fakeCatalog) LookupCity(text string, lang types.Language) (*types.City, bool) {
	for _, c := range f.cities {
		if c.NameAr == text || c.NameEn == text {
			return c, true
		}
	}
	return nil, false
}
func (f *fakeCatalog) Neighborhoods(cityID string) []*types.Neighborhood       { return nil }
func (f *fakeCatalog) TransactionTypes() []*types.TransactionType             { return f.txTypes }
func (f *fakeCatalog) AttributesFor(categorySlug string) []*types.Attribute   { return nil }
func (f *fakeCatalog) ExpandKeyword(keyword string, lang types.Language) []string {
	out := []string{keyword}
	return append(out, f.aliases[keyword]...)
}
func (f *fakeCatalog) NearestLeafByEmbedding(ctx context.Context, embedding []float32) (string, bool) {
	if f.embeddingLeaf == "" {
		return "", false
	}
	return f.embeddingLeaf, f.leafSlugs[f.embeddingLeaf]
}
func (f *fakeCatalog) Refresh(ctx context.Context) error { return nil }

func newFakeCatalog() *fakeCatalog {
	realEstateID := "cat-realestate"
	return &fakeCatalog{
		categories: []*types.Category{
			{ID: "cat-apartments", Slug: "apartments", ParentID: &realEstateID},
			{ID: realEstateID, Slug: "real-estate"},
		},
		leafSlugs: map[string]bool{"apartments": true},
		cities: []*types.City{
			{ID: "city-damascus", NameAr: "دمشق", NameEn: "Damascus"},
		},
		txTypes: []*types.TransactionType{
			{ID: "tt-rent", Slug: "rent"},
			{ID: "tt-sale", Slug: "sale"},
		},
	}
}

func TestPlanDegradesToBareKeywordPlanOnLLMError(t *testing.T) {
	llm := &fakeLLM{chatErr: assertError{}}
	p := NewPlanner(llm, &fakeCache{}, newFakeCatalog())

	plan, err := p.Plan(context.Background(), "شقة للايجار", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, "شقة للايجار", plan.MainKeyword)
	assert.Contains(t, plan.ExpandedKeywords, "شقة للايجار")
}

func TestPlanFiltersSuggestedCategoriesAgainstCatalog(t *testing.T) {
	llm := &fakeLLM{chatResponse: `{"main_keyword":"شقة","suggested_categories":["apartments","not-a-real-category"]}`}
	p := NewPlanner(llm, &fakeCache{}, newFakeCatalog())

	plan, err := p.Plan(context.Background(), "شقة للايجار", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, []string{"apartments"}, plan.SuggestedCategories)
}

func TestPlanDeepensToLeafCategoryWhenSuggestedIsAlreadyLeaf(t *testing.T) {
	llm := &fakeLLM{chatResponse: `{"main_keyword":"شقة","suggested_categories":["apartments"]}`}
	p := NewPlanner(llm, &fakeCache{}, newFakeCatalog())

	plan, err := p.Plan(context.Background(), "شقة", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, "apartments", plan.LeafCategory)
}

func TestPlanDeepensViaSecondaryLLMCallWhenSuggestedIsNonLeaf(t *testing.T) {
	llm := &fakeLLM{
		chatResponses: []string{
			`{"main_keyword":"شقة","suggested_categories":["real-estate"]}`,
			`{"leaf_category":"apartments"}`,
		},
	}
	p := NewPlanner(llm, &fakeCache{}, newFakeCatalog())

	plan, err := p.Plan(context.Background(), "شقة", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, "apartments", plan.LeafCategory)
	assert.Equal(t, 2, llm.chatCall)
}

func TestPlanDeepensViaEmbeddingWhenLLMDeepenFails(t *testing.T) {
	llm := &fakeLLM{
		chatResponses: []string{
			`{"main_keyword":"شقة","suggested_categories":["real-estate"]}`,
			`{"leaf_category":""}`,
		},
		embedding: []float32{0.1, 0.2},
	}
	catalog := newFakeCatalog()
	catalog.embeddingLeaf = "apartments"
	p := NewPlanner(llm, &fakeCache{}, catalog)

	plan, err := p.Plan(context.Background(), "شقة", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, "apartments", plan.LeafCategory)
}

func TestPlanMixesInCatalogKeywordAliasesForMainKeyword(t *testing.T) {
	llm := &fakeLLM{chatResponse: `{"main_keyword":"شقة"}`}
	catalog := newFakeCatalog()
	catalog.aliases = map[string][]string{"شقة": {"سكن", "بيت"}}
	p := NewPlanner(llm, &fakeCache{}, catalog)

	plan, err := p.Plan(context.Background(), "شقة للايجار", types.LanguageArabic)
	require.NoError(t, err)
	assert.Contains(t, plan.ExpandedKeywords, "سكن")
	assert.Contains(t, plan.ExpandedKeywords, "بيت")
}

func TestPlanMixesInCatalogKeywordAliasesOnDegradedPlan(t *testing.T) {
	llm := &fakeLLM{chatErr: assertError{}}
	catalog := newFakeCatalog()
	catalog.aliases = map[string][]string{"شقة": {"سكن"}}
	p := NewPlanner(llm, &fakeCache{}, catalog)

	plan, err := p.Plan(context.Background(), "شقة", types.LanguageArabic)
	require.NoError(t, err)
	assert.Contains(t, plan.ExpandedKeywords, "سكن")
}

func TestPlanResolvesLocationTextToKnownCity(t *testing.T) {
	llm := &fakeLLM{chatResponse: `{"main_keyword":"شقة","location_text":"دمشق"}`}
	p := NewPlanner(llm, &fakeCache{}, newFakeCatalog())

	plan, err := p.Plan(context.Background(), "شقة في دمشق", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, "city-damascus", plan.LocationCityID)
}

func TestPlanOnlyAcceptsKnownTransactionType(t *testing.T) {
	llm := &fakeLLM{chatResponse: `{"main_keyword":"شقة","transaction_type":"rent"}`}
	p := NewPlanner(llm, &fakeCache{}, newFakeCatalog())

	plan, err := p.Plan(context.Background(), "شقة للايجار", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, types.TransactionTypeSlug("rent"), plan.TransactionType)
}

type assertError struct{}

func (assertError) Error() string { return "llm call failed" }

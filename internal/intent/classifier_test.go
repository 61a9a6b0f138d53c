package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.ChatMessage, opts interfaces.ChatOptions) (string, error) {
	return f.response, f.err
}
func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) { return nil, nil }
func (f *fakeLLM) EmbeddingDimension() int                                   { return 0 }

type fakeCache struct {
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: make(map[string][]byte)} }

func (f *fakeCache) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	return false, nil
}
func (f *fakeCache) Set(ctx context.Context, namespace, key string, value any, ttl interfaces.TTLClass) error {
	return nil
}
func (f *fakeCache) Delete(ctx context.Context, namespace, key string) error        { return nil }
func (f *fakeCache) DeletePattern(ctx context.Context, namespace, pattern string) error { return nil }

func TestClassifyReturnsSearchIntentFromValidLLMResponse(t *testing.T) {
	llm := &fakeLLM{response: `{"kind":"search","query":"شقة في دمشق"}`}
	c := NewClassifier(llm, newFakeCache())

	intent, err := c.Classify(context.Background(), "شقة في دمشق", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, types.IntentSearch, intent.Kind)
	assert.Equal(t, "شقة في دمشق", intent.Query)
}

func TestClassifyDefaultsToSearchOnLLMError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("upstream unavailable")}
	c := NewClassifier(llm, newFakeCache())

	intent, err := c.Classify(context.Background(), "hello", types.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, types.IntentSearch, intent.Kind)
	assert.Equal(t, "hello", intent.Query)
}

func TestClassifyDefaultsToSearchOnUnparseableResponse(t *testing.T) {
	llm := &fakeLLM{response: "not json"}
	c := NewClassifier(llm, newFakeCache())

	intent, err := c.Classify(context.Background(), "query text", types.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, types.IntentSearch, intent.Kind)
}

func TestClassifyDefaultsToSearchOnUnrecognizedKind(t *testing.T) {
	llm := &fakeLLM{response: `{"kind":"unknown_kind"}`}
	c := NewClassifier(llm, newFakeCache())

	intent, err := c.Classify(context.Background(), "query text", types.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, types.IntentSearch, intent.Kind)
}

func TestClassifyGreetingDoesNotRequireQuery(t *testing.T) {
	llm := &fakeLLM{response: `{"kind":"greeting"}`}
	c := NewClassifier(llm, newFakeCache())

	intent, err := c.Classify(context.Background(), "مرحبا", types.LanguageArabic)
	require.NoError(t, err)
	assert.Equal(t, types.IntentGreeting, intent.Kind)
	assert.Empty(t, intent.Query)
}

func TestClassifyGetOfficeDetailsCarriesOfficeID(t *testing.T) {
	llm := &fakeLLM{response: `{"kind":"get_office_details","office_id":"office-42"}`}
	c := NewClassifier(llm, newFakeCache())

	intent, err := c.Classify(context.Background(), "tell me about office 42", types.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, types.IntentGetOfficeDetails, intent.Kind)
	assert.Equal(t, "office-42", intent.OfficeID)
}

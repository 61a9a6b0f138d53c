package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasioon/search-gateway/internal/types"
)

func sampleListing() *types.Listing {
	return &types.Listing{
		ID:    "abc-123",
		Title: "شقة <3 غرف>",
		Attributes: []types.AttributeValue{
			types.NewNumericAttributeValue("a-price", "price", 50000, "USD"),
			types.NewNumericAttributeValue("a-rooms", "rooms", 3, ""),
		},
	}
}

func TestHTTPRendererListingURLIsCanonical(t *testing.T) {
	r := NewHTTPRenderer()
	reply, err := r.RenderResults(context.Background(), []*types.RankedResult{{Listing: sampleListing(), MatchScore: 80}}, types.StrategyStrict, 1, types.LanguageArabic)
	require.NoError(t, err)
	require.NotNil(t, reply.Envelope)
	assert.True(t, reply.Envelope.Success)
	data, ok := reply.Envelope.Data.(map[string]any)
	require.True(t, ok)
	views, ok := data["listings"].([]listingView)
	require.True(t, ok)
	require.Len(t, views, 1)
	assert.Equal(t, "https://www.kasioon.com/listing/abc-123", views[0].URL)
}

func TestHTTPRendererNoResultsIncludesFallbackMessage(t *testing.T) {
	r := NewHTTPRenderer()
	reply, err := r.RenderResults(context.Background(), nil, types.StrategyNoResults, 0, types.LanguageArabic)
	require.NoError(t, err)
	data, ok := reply.Envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["fallback_message"])
}

func TestTelegramRendererEscapesHTMLInTitle(t *testing.T) {
	r := NewTelegramRenderer()
	reply, err := r.RenderResults(context.Background(), []*types.RankedResult{{Listing: sampleListing()}}, types.StrategyStrict, 1, types.LanguageArabic)
	require.NoError(t, err)
	assert.NotContains(t, reply.Text, "<3")
	assert.Contains(t, reply.Text, "&lt;3")
}

func TestTelegramRendererCapsAtFiveListings(t *testing.T) {
	r := NewTelegramRenderer()
	var results []*types.RankedResult
	for i := 0; i < 8; i++ {
		results = append(results, &types.RankedResult{Listing: sampleListing()})
	}
	reply, err := r.RenderResults(context.Background(), results, types.StrategyStrict, 8, types.LanguageArabic)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "شقة")
	assert.Equal(t, 5, strings.Count(reply.Text, "شقة"))
	var viewAll bool
	for _, a := range reply.Actions {
		if a.Payload == "view_all" {
			viewAll = true
		}
	}
	assert.True(t, viewAll)
}

func TestWhatsAppRendererCapsAtThreeListingsAndEscapesAsterisks(t *testing.T) {
	r := NewWhatsAppRenderer()
	listing := sampleListing()
	listing.Title = "سيارة *مميزة*"
	var results []*types.RankedResult
	for i := 0; i < 5; i++ {
		results = append(results, &types.RankedResult{Listing: listing})
	}
	reply, err := r.RenderResults(context.Background(), results, types.StrategyStrict, 5, types.LanguageArabic)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "\\*مميزة\\*")
	assert.Equal(t, 3, strings.Count(reply.Text, "سيارة"))
	assert.Contains(t, reply.Text, ruleLine)
}

func TestWhatsAppRendererNoResultsReturnsFallback(t *testing.T) {
	r := NewWhatsAppRenderer()
	reply, err := r.RenderResults(context.Background(), nil, types.StrategyNoResults, 0, types.LanguageEnglish)
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Text)
}

func TestPriceTextFallsBackToNAWhenMissing(t *testing.T) {
	listing := &types.Listing{}
	assert.Equal(t, naArabic, priceText(listing, types.LanguageArabic))
	assert.Equal(t, naEnglish, priceText(listing, types.LanguageEnglish))
}

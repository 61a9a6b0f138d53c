package render

import (
	"context"

	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// HTTPRenderer renders results as the API's ResponseEnvelope; it never
// touches the wire itself, leaving JSON encoding to the handler.
type HTTPRenderer struct{}

// NewHTTPRenderer constructs the HTTP/JSON channel renderer
func NewHTTPRenderer() interfaces.ChannelRenderer {
	return &HTTPRenderer{}
}

func (r *HTTPRenderer) Channel() types.Channel { return types.ChannelHTTP }

type listingView struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	URL             string   `json:"url"`
	Price           string   `json:"price"`
	TransactionType string   `json:"transaction_type"`
	MainImage       string   `json:"main_image,omitempty"`
	MatchScore      int      `json:"match_score,omitempty"`
	MatchedAttrs    []string `json:"matched_attributes,omitempty"`
	UnmatchedAttrs  []string `json:"unmatched_attributes,omitempty"`
}

func (r *HTTPRenderer) RenderResults(ctx context.Context, results []*types.RankedResult, strategy types.SearchStrategy, total int, lang types.Language) (*types.ChannelReply, error) {
	views := make([]listingView, 0, len(results))
	for _, res := range results {
		views = append(views, toListingView(res.Listing, lang, res))
	}

	data := map[string]any{
		"listings": views,
		"strategy": string(strategy),
	}
	if strategy == types.StrategyNoResults {
		data["fallback_message"] = fallbackMessage(lang)
	}

	meta := &types.ResponseMeta{Total: total, Strategy: string(strategy)}
	return &types.ChannelReply{Channel: types.ChannelHTTP, Envelope: types.NewSuccessEnvelope(data, meta)}, nil
}

func (r *HTTPRenderer) RenderListings(ctx context.Context, listings []*types.Listing, lang types.Language) (*types.ChannelReply, error) {
	views := make([]listingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, toListingView(l, lang, nil))
	}
	data := map[string]any{"listings": views}
	return &types.ChannelReply{Channel: types.ChannelHTTP, Envelope: types.NewSuccessEnvelope(data, nil)}, nil
}

func (r *HTTPRenderer) RenderOffices(ctx context.Context, offices []*types.Office, lang types.Language) (*types.ChannelReply, error) {
	views := make([]map[string]any, 0, len(offices))
	for _, o := range offices {
		views = append(views, officeView(o))
	}
	return &types.ChannelReply{Channel: types.ChannelHTTP, Envelope: types.NewSuccessEnvelope(map[string]any{"offices": views}, nil)}, nil
}

func (r *HTTPRenderer) RenderOffice(ctx context.Context, office *types.Office, lang types.Language) (*types.ChannelReply, error) {
	return &types.ChannelReply{Channel: types.ChannelHTTP, Envelope: types.NewSuccessEnvelope(officeView(office), nil)}, nil
}

func (r *HTTPRenderer) RenderError(ctx context.Context, err error, lang types.Language) *types.ChannelReply {
	return &types.ChannelReply{Channel: types.ChannelHTTP, Envelope: types.NewErrorEnvelope("internal", err.Error(), nil, "")}
}

func (r *HTTPRenderer) RenderGreeting(ctx context.Context, lang types.Language) *types.ChannelReply {
	msg := "مرحبًا! كيف يمكنني مساعدتك في البحث عن إعلان اليوم؟"
	if lang == types.LanguageEnglish {
		msg = "Hi! What would you like to search for today?"
	}
	return &types.ChannelReply{Channel: types.ChannelHTTP, Envelope: types.NewSuccessEnvelope(map[string]any{"message": msg}, nil)}
}

func (r *HTTPRenderer) RenderHelp(ctx context.Context, lang types.Language) *types.ChannelReply {
	msg := "اكتب ما تبحث عنه، مثل: شقة للإيجار بدمشق 3 غرف."
	if lang == types.LanguageEnglish {
		msg = "Describe what you're looking for, e.g. \"apartment for rent in Damascus, 3 rooms\"."
	}
	return &types.ChannelReply{Channel: types.ChannelHTTP, Envelope: types.NewSuccessEnvelope(map[string]any{"message": msg}, nil)}
}

func toListingView(l *types.Listing, lang types.Language, res *types.RankedResult) listingView {
	v := listingView{
		ID:              l.ID,
		Title:           l.Title,
		Description:     l.Description,
		URL:             l.URL(),
		Price:           priceText(l, lang),
		TransactionType: string(l.TransactionType),
		MainImage:       l.MainImage,
	}
	if res != nil {
		v.MatchScore = res.MatchScore
		v.MatchedAttrs = res.MatchedAttributes
		v.UnmatchedAttrs = res.UnmatchedAttributes
	}
	return v
}

func officeView(o *types.Office) map[string]any {
	return map[string]any{
		"id":                    o.ID,
		"name":                  o.Name,
		"phone":                 o.Phone,
		"url":                   o.URL(),
		"premium":               o.Premium,
		"rating":                o.Rating,
		"active_listings_count": o.ActiveListingsCount,
		"total_listings_count":  o.TotalListingsCount,
	}
}

var _ interfaces.ChannelRenderer = (*HTTPRenderer)(nil)

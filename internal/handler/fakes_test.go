package handler

import (
	"context"
	"io"

	"github.com/kasioon/search-gateway/internal/types"
)

type fakeClassifier struct {
	intent *types.Intent
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, query string, lang types.Language) (*types.Intent, error) {
	return f.intent, f.err
}

type fakePlanner struct {
	plan *types.QueryPlan
	err  error
}

func (f *fakePlanner) Plan(ctx context.Context, query string, lang types.Language) (*types.QueryPlan, error) {
	return f.plan, f.err
}

type fakeExecutor struct {
	results  []*types.RankedResult
	strategy types.SearchStrategy
	total    int
	err      error
}

func (f *fakeExecutor) Execute(ctx context.Context, plan *types.QueryPlan, lang types.Language, page, limit int) ([]*types.RankedResult, types.SearchStrategy, int, error) {
	return f.results, f.strategy, f.total, f.err
}

type fakeStats struct{}

func (f *fakeStats) MostViewed(ctx context.Context, limit int) ([]*types.Listing, error) {
	return nil, nil
}
func (f *fakeStats) MostImpressioned(ctx context.Context, limit int) ([]*types.Listing, error) {
	return nil, nil
}
func (f *fakeStats) ListOffices(ctx context.Context, limit int) ([]*types.Office, error) {
	return nil, nil
}
func (f *fakeStats) OfficeDetails(ctx context.Context, idOrName string) (*types.Office, error) {
	return nil, nil
}
func (f *fakeStats) OfficeListings(ctx context.Context, officeID string, page, limit int) ([]*types.Listing, int, error) {
	return nil, 0, nil
}

type fakeRenderer struct {
	channel types.Channel
}

func (f *fakeRenderer) Channel() types.Channel { return f.channel }
func (f *fakeRenderer) RenderResults(ctx context.Context, results []*types.RankedResult, strategy types.SearchStrategy, total int, lang types.Language) (*types.ChannelReply, error) {
	return &types.ChannelReply{Channel: f.channel, Envelope: types.NewSuccessEnvelope(map[string]any{"total": total}, nil)}, nil
}
func (f *fakeRenderer) RenderListings(ctx context.Context, listings []*types.Listing, lang types.Language) (*types.ChannelReply, error) {
	return &types.ChannelReply{Channel: f.channel, Envelope: types.NewSuccessEnvelope(listings, nil)}, nil
}
func (f *fakeRenderer) RenderOffices(ctx context.Context, offices []*types.Office, lang types.Language) (*types.ChannelReply, error) {
	return &types.ChannelReply{Channel: f.channel, Envelope: types.NewSuccessEnvelope(offices, nil)}, nil
}
func (f *fakeRenderer) RenderOffice(ctx context.Context, office *types.Office, lang types.Language) (*types.ChannelReply, error) {
	return &types.ChannelReply{Channel: f.channel, Envelope: types.NewSuccessEnvelope(office, nil)}, nil
}
func (f *fakeRenderer) RenderError(ctx context.Context, err error, lang types.Language) *types.ChannelReply {
	return &types.ChannelReply{Channel: f.channel, Envelope: types.NewErrorEnvelope("500", err.Error(), nil, "")}
}
func (f *fakeRenderer) RenderGreeting(ctx context.Context, lang types.Language) *types.ChannelReply {
	return &types.ChannelReply{Channel: f.channel, Envelope: types.NewSuccessEnvelope(nil, nil)}
}
func (f *fakeRenderer) RenderHelp(ctx context.Context, lang types.Language) *types.ChannelReply {
	return &types.ChannelReply{Channel: f.channel, Envelope: types.NewSuccessEnvelope(nil, nil)}
}

type fakeSpeech struct {
	text string
	err  error
}

func (f *fakeSpeech) Transcribe(ctx context.Context, audio io.Reader, filename string, lang types.Language) (string, error) {
	return f.text, f.err
}

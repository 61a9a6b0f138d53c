// Package orchestrator sequences the classifier -> planner -> executor ->
// renderer pipeline. It is the one place that knows the full request
// shape; every stage it calls is replaceable behind its own interface.
package orchestrator

import (
	"context"
	"time"

	apperrors "github.com/kasioon/search-gateway/internal/errors"
	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// DefaultRequestTimeout bounds the whole pipeline; exceeding it discards
// partial progress and surfaces a Timeout error.
const DefaultRequestTimeout = 45 * time.Second

// Orchestrator wires the four pipeline stages together and dispatches by
// intent kind. It holds no mutable state of its own.
type Orchestrator struct {
	classifier     interfaces.IntentClassifier
	planner        interfaces.QueryPlanner
	executor       interfaces.SearchExecutor
	stats          interfaces.StatsService
	renderers      map[types.Channel]interfaces.ChannelRenderer
	requestTimeout time.Duration
}

// New wires the pipeline stages and the per-channel renderers
func New(
	classifier interfaces.IntentClassifier,
	planner interfaces.QueryPlanner,
	executor interfaces.SearchExecutor,
	stats interfaces.StatsService,
	renderers []interfaces.ChannelRenderer,
) *Orchestrator {
	byChannel := make(map[types.Channel]interfaces.ChannelRenderer, len(renderers))
	for _, r := range renderers {
		byChannel[r.Channel()] = r
	}
	return &Orchestrator{
		classifier:     classifier,
		planner:        planner,
		executor:       executor,
		stats:          stats,
		renderers:      byChannel,
		requestTimeout: DefaultRequestTimeout,
	}
}

// Handle runs the full pipeline for one inbound query and renders the
// result for the given channel. A renderer-level error is never returned
// to the caller: renderers fall back to RenderError instead.
func (o *Orchestrator) Handle(ctx context.Context, query string, lang types.Language, channel types.Channel, page, limit int) (reply *types.ChannelReply, err error) {
	renderer, ok := o.renderers[channel]
	if !ok {
		return nil, apperrors.NewInternalServerError("no renderer registered for channel")
	}

	ctx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()
	defer func() {
		if err == nil && ctx.Err() == context.DeadlineExceeded {
			reply = renderer.RenderError(ctx, apperrors.NewTimeoutError("request timed out", false), lang)
		}
	}()

	intent, err := o.classifier.Classify(ctx, query, lang)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}

	switch intent.Kind {
	case types.IntentSearch:
		return o.handleSearch(ctx, intent, lang, renderer, page, limit)
	case types.IntentMostViewed:
		return o.handleMostViewed(ctx, intent, lang, renderer)
	case types.IntentMostImpressioned:
		return o.handleMostImpressioned(ctx, intent, lang, renderer)
	case types.IntentGetOffices:
		return o.handleGetOffices(ctx, intent, lang, renderer)
	case types.IntentGetOfficeDetails:
		return o.handleOfficeDetails(ctx, intent, lang, renderer)
	case types.IntentGetOfficeListings:
		return o.handleOfficeListings(ctx, intent, lang, renderer, page, limit)
	case types.IntentGreeting:
		return renderer.RenderGreeting(ctx, lang), nil
	case types.IntentHelp:
		return renderer.RenderHelp(ctx, lang), nil
	default:
		return renderer.RenderHelp(ctx, lang), nil
	}
}

// Plan runs only the planner (no classification), for /api/analyze, which
// inspects the structured plan without executing a search.
func (o *Orchestrator) Plan(ctx context.Context, query string, lang types.Language) (*types.QueryPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()
	return o.planner.Plan(ctx, query, lang)
}

func (o *Orchestrator) handleSearch(ctx context.Context, intent *types.Intent, lang types.Language, renderer interfaces.ChannelRenderer, page, limit int) (*types.ChannelReply, error) {
	plan, err := o.planner.Plan(ctx, intent.Query, lang)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}

	results, strategy, total, err := o.executor.Execute(ctx, plan, lang, page, limit)
	if err != nil {
		logger.Errorf(ctx, "search executor failed: %v", err)
		return renderer.RenderError(ctx, err, lang), nil
	}

	reply, err := renderer.RenderResults(ctx, results, strategy, total, lang)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	return reply, nil
}

func (o *Orchestrator) handleMostViewed(ctx context.Context, intent *types.Intent, lang types.Language, renderer interfaces.ChannelRenderer) (*types.ChannelReply, error) {
	listings, err := o.stats.MostViewed(ctx, intent.EffectiveLimit())
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	reply, err := renderer.RenderListings(ctx, listings, lang)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	return reply, nil
}

func (o *Orchestrator) handleMostImpressioned(ctx context.Context, intent *types.Intent, lang types.Language, renderer interfaces.ChannelRenderer) (*types.ChannelReply, error) {
	listings, err := o.stats.MostImpressioned(ctx, intent.EffectiveLimit())
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	reply, err := renderer.RenderListings(ctx, listings, lang)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	return reply, nil
}

func (o *Orchestrator) handleGetOffices(ctx context.Context, intent *types.Intent, lang types.Language, renderer interfaces.ChannelRenderer) (*types.ChannelReply, error) {
	offices, err := o.stats.ListOffices(ctx, intent.EffectiveLimit())
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	reply, err := renderer.RenderOffices(ctx, offices, lang)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	return reply, nil
}

func (o *Orchestrator) handleOfficeDetails(ctx context.Context, intent *types.Intent, lang types.Language, renderer interfaces.ChannelRenderer) (*types.ChannelReply, error) {
	office, err := o.stats.OfficeDetails(ctx, intent.OfficeID)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	if office == nil {
		msg := "لم يتم العثور على المكتب المطلوب"
		if lang == types.LanguageEnglish {
			msg = "The requested office could not be found"
		}
		return renderer.RenderError(ctx, apperrors.NewNotFoundError(msg), lang), nil
	}
	reply, err := renderer.RenderOffice(ctx, office, lang)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	return reply, nil
}

func (o *Orchestrator) handleOfficeListings(ctx context.Context, intent *types.Intent, lang types.Language, renderer interfaces.ChannelRenderer, page, limit int) (*types.ChannelReply, error) {
	listings, _, err := o.stats.OfficeListings(ctx, intent.OfficeID, page, limit)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	reply, err := renderer.RenderListings(ctx, listings, lang)
	if err != nil {
		return renderer.RenderError(ctx, err, lang), nil
	}
	return reply, nil
}

package pipeline

import (
	"github.com/meridian-ai/meridian/internal/checkpoint"
	"github.com/meridian-ai/meridian/internal/config"
	"github.com/meridian-ai/meridian/internal/graph"
	"github.com/meridian-ai/meridian/internal/market"
	"github.com/meridian-ai/meridian/internal/search"
	"github.com/meridian-ai/meridian/internal/stage"
)

// rateBurst is the token bucket burst for rate-limited HTTP collaborators.
const rateBurst = 2

// buildRegistry constructs the nine stages against the resolved
// collaborators and registers them under their canonical names.
func buildRegistry(o options) (*stage.Registry, error) {
	stageOpts := []stage.Option{stage.WithLogger(o.logger)}

	reg := stage.NewRegistry()
	for _, s := range []graph.Stage{
		stage.NewPlanner(o.provider, stageOpts...),
		stage.NewResearcher(o.provider, o.market, o.search, stageOpts...),
		stage.NewAnalyst(o.provider, stageOpts...),
		stage.NewWriter(o.provider, stageOpts...),
		stage.NewQualityChecker(o.provider, stageOpts...),
		stage.NewHumanApproval(stageOpts...),
		stage.NewRiskAssessor(o.provider, stageOpts...),
		stage.NewFinalizer(stageOpts...),
		stage.NewSimpleResponse(stageOpts...),
	} {
		if err := reg.Register(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildGraph lays out the report workflow. Both complexity routes pass
// through the researcher first: even a simple price lookup needs market
// data before it can answer. The quality loop back to the writer is the
// only cycle, bounded by the revision cap inside ShouldRevise.
func buildGraph(reg *stage.Registry, requireApproval bool) (*graph.Graph, error) {
	b := graph.NewBuilder(GraphName).
		AddStage(reg.MustGet(stage.StagePlanner)).
		AddStage(reg.MustGet(stage.StageResearcher)).
		AddStage(reg.MustGet(stage.StageAnalyst)).
		AddStage(reg.MustGet(stage.StageWriter)).
		AddStage(reg.MustGet(stage.StageQualityChecker)).
		AddStage(reg.MustGet(stage.StageHumanApproval)).
		AddStage(reg.MustGet(stage.StageRiskAssessor)).
		AddStage(reg.MustGet(stage.StageFinalizer)).
		AddStage(reg.MustGet(stage.StageSimpleResponse)).
		SetEntry(stage.StagePlanner).
		AddConditionalEdges(stage.StagePlanner, stage.RouteByComplexity, map[string]string{
			stage.RouteSimple:  stage.StageResearcher,
			stage.RouteComplex: stage.StageResearcher,
		}).
		AddConditionalEdges(stage.StageResearcher, stage.RouteAfterResearch, map[string]string{
			stage.RouteSimple:  stage.StageSimpleResponse,
			stage.RouteComplex: stage.StageAnalyst,
		}).
		AddEdge(stage.StageAnalyst, stage.StageWriter).
		AddEdge(stage.StageWriter, stage.StageQualityChecker).
		AddConditionalEdges(stage.StageQualityChecker, stage.ShouldRevise, map[string]string{
			stage.DecisionApprove: stage.StageHumanApproval,
			stage.DecisionRevise:  stage.StageWriter,
		}).
		AddEdge(stage.StageHumanApproval, stage.StageRiskAssessor).
		AddEdge(stage.StageRiskAssessor, stage.StageFinalizer).
		AddEdge(stage.StageFinalizer, graph.End).
		AddEdge(stage.StageSimpleResponse, graph.End)

	if requireApproval {
		b.InterruptBefore(stage.StageHumanApproval)
	}
	return b.Build()
}

// buildMarket selects the market data provider from config.
func buildMarket(cfg config.MarketConfig) market.Provider {
	if cfg.Provider != "http" {
		return market.NewStaticProvider()
	}
	opts := []market.HTTPOption{}
	if cfg.APIKey != "" {
		opts = append(opts, market.WithAPIKey(cfg.APIKey))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, market.WithRateLimit(cfg.RateLimit, rateBurst))
	}
	return market.NewHTTPProvider(cfg.BaseURL, opts...)
}

// buildSearch selects the web search client from config.
func buildSearch(cfg config.SearchConfig) search.Client {
	if cfg.Provider != "http" {
		return search.NewStaticClient()
	}
	opts := []search.HTTPOption{
		search.WithMaxResults(cfg.MaxResults),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, search.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, search.WithRateLimit(cfg.RateLimit, rateBurst))
	}
	return search.NewHTTPClient(cfg.APIKey, opts...)
}

// buildStore selects the checkpoint backend from config.
func buildStore(cfg config.CheckpointConfig) (checkpoint.Store, error) {
	if cfg.Backend == "sqlite" {
		return checkpoint.NewSQLiteStore(cfg.Path)
	}
	var opts []checkpoint.MemoryStoreOption
	if cfg.MaxEntries > 0 {
		opts = append(opts, checkpoint.WithMaxEntries(cfg.MaxEntries))
	}
	if cfg.TTL > 0 {
		opts = append(opts, checkpoint.WithTTL(cfg.TTL))
	}
	return checkpoint.NewMemoryStore(opts...), nil
}

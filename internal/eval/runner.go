package eval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-ai/meridian/internal/pipeline"
	"github.com/meridian-ai/meridian/internal/stage"
)

// Result is the outcome of one case.
type Result struct {
	Case     Case          `json:"case"`
	ThreadID string        `json:"thread_id,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`

	Complexity    string   `json:"complexity,omitempty"`
	Company       string   `json:"company,omitempty"`
	Path          string   `json:"path,omitempty"`
	Visited       []string `json:"visited,omitempty"`
	RevisionCount int      `json:"revision_count"`
	QualityScore  int      `json:"quality_score,omitempty"`
	ReportLength  int      `json:"report_length"`
	Errors        []string `json:"errors,omitempty"`

	ComplexityMatch bool `json:"complexity_match"`
	PathMatch       bool `json:"path_match"`
}

// Passed reports whether the case ran and met its expectations.
func (r Result) Passed() bool {
	return r.Err == nil && r.ComplexityMatch && r.PathMatch
}

// Summary aggregates a suite run.
type Summary struct {
	Suite             string        `json:"suite"`
	Total             int           `json:"total"`
	Succeeded         int           `json:"succeeded"`
	Failed            int           `json:"failed"`
	ComplexityMatches int           `json:"complexity_matches"`
	PathMatches       int           `json:"path_matches"`
	AvgQualityScore   float64       `json:"avg_quality_score"`
	AvgRevisions      float64       `json:"avg_revisions"`
	Duration          time.Duration `json:"duration"`
	Results           []Result      `json:"results"`
}

// ComplexityAccuracy is the share of succeeded cases whose planner
// classification matched.
func (s *Summary) ComplexityAccuracy() float64 {
	if s.Succeeded == 0 {
		return 0
	}
	return float64(s.ComplexityMatches) / float64(s.Succeeded)
}

// PathAccuracy is the share of succeeded cases that took the expected
// branch.
func (s *Summary) PathAccuracy() float64 {
	if s.Succeeded == 0 {
		return 0
	}
	return float64(s.PathMatches) / float64(s.Succeeded)
}

// String renders the summary as a compact report block.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "suite %s: %d cases, %d succeeded, %d failed\n",
		s.Suite, s.Total, s.Succeeded, s.Failed)
	fmt.Fprintf(&b, "complexity accuracy %.0f%%, path accuracy %.0f%%\n",
		s.ComplexityAccuracy()*100, s.PathAccuracy()*100)
	fmt.Fprintf(&b, "avg quality %.1f, avg revisions %.1f, total %s",
		s.AvgQualityScore, s.AvgRevisions, s.Duration.Round(time.Millisecond))
	return b.String()
}

// Runner executes suites against a coordinator. The coordinator must
// run without the approval gate; a suspended case is recorded as a
// failure rather than resumed.
type Runner struct {
	coord    *pipeline.Coordinator
	parallel int
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithParallelism bounds how many cases run concurrently. The default
// of 1 keeps runs sequential, which scripted providers require; raise
// it against live backends.
func WithParallelism(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.parallel = n
		}
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner over the coordinator.
func NewRunner(coord *pipeline.Coordinator, opts ...RunnerOption) *Runner {
	r := &Runner{
		coord:    coord,
		parallel: 1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every case in the suite and aggregates the results.
// Case failures land in the summary; only a cancelled context fails
// the run itself.
func (r *Runner) Run(ctx context.Context, suite *Suite) (*Summary, error) {
	if err := suite.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	results := make([]Result, len(suite.Cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, cs := range suite.Cases {
		i, cs := i, cs
		g.Go(func() error {
			results[i] = r.runCase(ctx, cs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return summarize(suite.Name, results, time.Since(started)), nil
}

// runCase executes one query and scores it.
func (r *Runner) runCase(ctx context.Context, cs Case) Result {
	started := time.Now()
	res := Result{Case: cs}

	r.logger.InfoContext(ctx, "Eval case started", "case", cs.ID, "query", cs.Query)

	run, err := r.coord.Start(ctx, cs.Query)
	res.Duration = time.Since(started)
	if err != nil {
		res.Err = err
		r.logger.WarnContext(ctx, "Eval case failed", "case", cs.ID, "error", err)
		return res
	}
	if run.Suspended() {
		res.Err = fmt.Errorf("run suspended at %q; eval requires an ungated coordinator", run.NextStage)
		return res
	}

	st := run.State
	res.ThreadID = run.ThreadID
	res.Visited = run.Visited
	res.Complexity = string(st.Complexity)
	res.Company = st.Company
	res.Path = pathTaken(run.Visited)
	res.RevisionCount = st.RevisionCount
	if st.QualityReview != nil {
		res.QualityScore = st.QualityReview.Score
	}
	res.ReportLength = len(st.FinalReport)
	res.Errors = st.Errors
	res.ComplexityMatch = cs.ExpectedComplexity == "" || res.Complexity == cs.ExpectedComplexity
	res.PathMatch = cs.ExpectedPath == "" || res.Path == cs.ExpectedPath

	r.logger.InfoContext(ctx, "Eval case finished",
		"case", cs.ID,
		"complexity", res.Complexity,
		"path", res.Path,
		"revisions", res.RevisionCount,
		"duration", res.Duration.Round(time.Millisecond))
	return res
}

// pathTaken labels the run by whether it short-circuited to the quick
// lookup stage.
func pathTaken(visited []string) string {
	for _, v := range visited {
		if v == stage.StageSimpleResponse {
			return PathSimpleResponse
		}
	}
	return PathFullPipeline
}

func summarize(name string, results []Result, elapsed time.Duration) *Summary {
	s := &Summary{
		Suite:    name,
		Total:    len(results),
		Duration: elapsed,
		Results:  results,
	}

	scored := 0
	revisions := 0
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		revisions += r.RevisionCount
		if r.ComplexityMatch {
			s.ComplexityMatches++
		}
		if r.PathMatch {
			s.PathMatches++
		}
		if r.QualityScore > 0 {
			s.AvgQualityScore += float64(r.QualityScore)
			scored++
		}
	}
	if scored > 0 {
		s.AvgQualityScore /= float64(scored)
	}
	if s.Succeeded > 0 {
		s.AvgRevisions = float64(revisions) / float64(s.Succeeded)
	}
	return s
}

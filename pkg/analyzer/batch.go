package analyzer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"AuthentiGo/pkg/models"
)

// FileOutcome is the result of analyzing one file in a batch
type FileOutcome struct {
	Path   string
	Result *models.AnalysisResult
	Err    error
}

// AnalyzeFiles analyzes paths on at most workers goroutines (NumCPU when
// workers <= 0). Outcomes keep the order of paths. A failing file is
// reported in its outcome and does not stop the batch; only cancellation
// of ctx does.
func AnalyzeFiles(ctx context.Context, registry *Registry, paths []string, workers int, options AnalysisOptions) ([]FileOutcome, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]FileOutcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := registry.AnalyzeFile(p, options)
			outcomes[i] = FileOutcome{Path: p, Result: result, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Summary counts batch outcomes by risk level
type Summary struct {
	Total  int
	Failed int
	ByRisk map[models.RiskLevel]int
	High   []*models.AnalysisResult
}

// Summarize tallies outcomes the way the CLI reports them
func Summarize(outcomes []FileOutcome) Summary {
	s := Summary{ByRisk: make(map[models.RiskLevel]int)}
	for _, o := range outcomes {
		if o.Path == "" && o.Result == nil && o.Err == nil {
			continue // never scheduled
		}
		s.Total++
		if o.Err != nil || o.Result == nil {
			s.Failed++
			continue
		}
		s.ByRisk[o.Result.Risk]++
		if o.Result.Risk == models.RiskHigh {
			s.High = append(s.High, o.Result)
		}
	}
	return s
}

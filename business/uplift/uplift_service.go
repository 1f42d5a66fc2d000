package uplift

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"causalUplift/domain"
	"causalUplift/pkg/logger"

	"github.com/google/uuid"
)

// ---- Repository interfaces ----

type DatasetRepository interface {
	Load(ctx context.Context, path string) (domain.Dataset, error)
}

type ReportRepository interface {
	Save(ctx context.Context, report *domain.UpliftReport) error
	FindByID(ctx context.Context, id string) (domain.UpliftReport, error)
	FindAll(ctx context.Context, limit int) ([]domain.UpliftReport, error)
}

type ChartSource interface {
	Latest(ctx context.Context) (domain.Artifact, io.ReadCloser, error)
}

// ---- Usecase / Service ----

type UpliftService struct {
	datasetRepo DatasetRepository
	predictor   Predictor
	emitter     Emitter
	reportRepo  ReportRepository
	defaultCfg  Config

	// one report at a time; the chart key is shared between runs
	mu sync.Mutex
}

// NewUpliftService wires the pipeline. reportRepo may be nil, in which case
// reports are returned but not stored.
func NewUpliftService(
	datasetRepo DatasetRepository,
	predictor Predictor,
	emitter Emitter,
	reportRepo ReportRepository,
	defaultCfg Config,
) *UpliftService {
	return &UpliftService{
		datasetRepo: datasetRepo,
		predictor:   predictor,
		emitter:     emitter,
		reportRepo:  reportRepo,
		defaultCfg:  defaultCfg,
	}
}

// Config returns a copy of the service defaults, suitable for overriding.
func (s *UpliftService) Config() Config {
	cfg := s.defaultCfg
	cfg.LeakColumns = append([]string(nil), s.defaultCfg.LeakColumns...)
	return cfg
}

// GenerateReport runs split, score, rank, aggregate and emit once with the
// default configuration.
func (s *UpliftService) GenerateReport(ctx context.Context) (domain.UpliftReport, error) {
	return s.GenerateReportWith(ctx, s.Config())
}

func (s *UpliftService) GenerateReportWith(ctx context.Context, cfg Config) (report domain.UpliftReport, err error) {
	if err := ctx.Err(); err != nil {
		return domain.UpliftReport{}, fmt.Errorf("context error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		ReportsTotal.WithLabelValues(statusLabel(err)).Inc()
		return domain.UpliftReport{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	ctx = WithRunID(ctx, runID)

	defer func() {
		ReportsTotal.WithLabelValues(statusLabel(err)).Inc()
		if err == nil {
			ReportDuration.Observe(time.Since(start).Seconds())
		}
	}()

	// 1) load
	logger.Info("Checking for data", "run_id", runID, "path", cfg.InputPath)
	ds, err := s.datasetRepo.Load(ctx, cfg.InputPath)
	if err != nil {
		return domain.UpliftReport{}, err
	}

	// 2) split
	train, test, err := Split(ds, cfg.TestRatio, cfg.Seed)
	if err != nil {
		return domain.UpliftReport{}, err
	}
	logger.Info("Split dataset",
		"run_id", runID,
		"ratio", cfg.TestRatio,
		"seed", cfg.Seed,
		"train_size", train.Len(),
		"test_size", test.Len(),
	)

	// 3) score
	scorer := NewScorerAdapter(s.predictor, cfg.LeakColumns)
	res, err := scorer.Score(ctx, test)
	if err != nil {
		return domain.UpliftReport{}, err
	}
	logger.Debug("uplift_scored",
		"run_id", runID,
		"mode", res.Mode,
		"dropped", res.Dropped,
		"count", len(res.Scores),
	)

	scored, err := Attach(test, res.Scores)
	if err != nil {
		return domain.UpliftReport{}, &domain.ScoringError{Cause: err}
	}

	// 4) rank + aggregate
	ranked, err := Rank(scored)
	if err != nil {
		return domain.UpliftReport{}, err
	}
	deciles, err := Aggregate(ranked)
	if err != nil {
		return domain.UpliftReport{}, err
	}

	// 5) emit
	artifact, err := s.emitter.Emit(ctx, deciles)
	if err != nil {
		return domain.UpliftReport{}, err
	}
	logger.Info("Chart saved", "run_id", runID, "location", artifact.Location)

	report = domain.UpliftReport{
		ID:             runID,
		InputPath:      cfg.InputPath,
		DatasetSize:    ds.Len(),
		TestSize:       test.Len(),
		TestRatio:      cfg.TestRatio,
		Seed:           cfg.Seed,
		ScoringMode:    res.Mode,
		DroppedColumns: res.Dropped,
		ChartLocation:  artifact.Location,
		CreatedAt:      time.Now().UTC(),
		Deciles:        deciles,
		Artifact:       &artifact,
	}

	if s.reportRepo != nil {
		if err := s.reportRepo.Save(ctx, &report); err != nil {
			return report, fmt.Errorf("save report: %w", err)
		}
	}

	TestRecords.Set(float64(test.Len()))
	for _, m := range deciles {
		DecileLiftPercent.WithLabelValues(strconv.Itoa(m.Decile)).Set(m.LiftPercent)
	}

	return report, nil
}

func (s *UpliftService) GetReport(ctx context.Context, id string) (domain.UpliftReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.UpliftReport{}, fmt.Errorf("context error: %w", err)
	}
	if s.reportRepo == nil {
		return domain.UpliftReport{}, domain.ErrReportNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.UpliftReport{}, domain.ErrReportNotFound
	}
	return s.reportRepo.FindByID(ctx, id)
}

func (s *UpliftService) ListReports(ctx context.Context, limit int) ([]domain.UpliftReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 20
	}
	if s.reportRepo == nil {
		return []domain.UpliftReport{}, nil
	}
	return s.reportRepo.FindAll(ctx, limit)
}

// LatestChart opens the chart written by the most recent report.
func (s *UpliftService) LatestChart(ctx context.Context) (domain.Artifact, io.ReadCloser, error) {
	src, ok := s.emitter.(ChartSource)
	if !ok {
		return domain.Artifact{}, nil, errors.New("emitter does not keep charts")
	}
	return src.Latest(ctx)
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, domain.ErrDataAccess):
		return "data_access_error"
	case errors.Is(err, domain.ErrScoring):
		return "scoring_error"
	case errors.Is(err, domain.ErrInsufficientData):
		return "insufficient_data"
	default:
		return "error"
	}
}

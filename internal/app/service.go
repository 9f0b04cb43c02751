// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the report command.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/starboard/internal/adapters/render"
	repository "github.com/okian/starboard/internal/adapters/repository"
	"github.com/okian/starboard/internal/adapters/source"
	"github.com/okian/starboard/internal/domain/aggregate"
	"github.com/okian/starboard/internal/domain/flatten"
	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/types"
	"github.com/okian/starboard/pkg/logger"
	"github.com/okian/starboard/pkg/metrics"
)

// Result is everything one run produces. Values are not mutated after the
// run returns.
type Result struct {
	RunID     string
	Records   []model.CompletionRecord
	Views     model.Views
	Summary   model.Summary
	Standings []types.Entry
	Report    render.Report
	Duration  time.Duration
}

// Service loads a leaderboard export and derives the report from it.
type Service struct {
	mu sync.RWMutex

	// Core components
	leaderboard repository.Store
	flattener   *flatten.Flattener

	// Configuration
	dataPath  string
	anonymize bool
	location  *time.Location
	minHour   int
	dayMatch  aggregate.DayMatch
	topN      int
	now       func() time.Time

	// State
	started bool
	last    *Result

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataPath sets the leaderboard export read by Start, Reload and Run.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithAnonymize replaces display names with "Participant N".
func WithAnonymize(anonymize bool) Option {
	return func(s *Service) {
		s.anonymize = anonymize
	}
}

// WithLocation sets the location completion times are resolved in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithMinHour sets the earliest hour kept by the time-of-day view.
func WithMinHour(hour int) Option {
	return func(s *Service) {
		if hour >= 0 && hour < 24 {
			s.minHour = hour
		}
	}
}

// WithDayMatch sets the release-day rule of the time-of-day view.
func WithDayMatch(match aggregate.DayMatch) Option {
	return func(s *Service) {
		if match != nil {
			s.dayMatch = match
		}
	}
}

// WithTopN bounds the summary listing; 0 keeps everyone.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.topN = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source stamped on reports.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath: "leaderboard.json",
		location: time.Local,
		minHour:  aggregate.DefaultMinHour,
		dayMatch: aggregate.SameCalendarDay,
		topN:     5,
		now:      time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.flattener = flatten.New(
		flatten.WithAnonymize(s.anonymize),
		flatten.WithLocation(s.location),
	)
	s.leaderboard = repository.NewSnapshotStore(context.Background(), nil)
	if s.logger == nil {
		s.logger = logger.Get()
	}

	return s
}

// log returns the logger fixed at construction; it is never reassigned.
func (s *Service) log() logger.Logger {
	return s.logger
}

// Start runs the pipeline once and publishes the result for readers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.log().Info(ctx, "starting report service...", logger.String("dataPath", s.dataPath))
	if err := s.reload(ctx); err != nil {
		return err
	}
	s.started = true
	s.log().Info(ctx, "report service started")
	return nil
}

// Reload re-reads the data file and replaces the published result. On
// failure the previous result stays in place.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *Service) reload(ctx context.Context) error {
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	s.last = res
	s.leaderboard.Publish(res.Standings)
	return nil
}

// Stop releases the published result.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.log().Info(context.Background(), "stopping report service...")
	s.leaderboard.Publish(nil)
	s.last = nil
	s.started = false
	s.log().Info(context.Background(), "report service stopped")
}

// Run loads the configured data file and processes it. Nothing is
// published.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	doc, err := source.Load(ctx, s.dataPath)
	if err != nil {
		metrics.RecordRun()
		metrics.RecordRunError(errorKind(err))
		s.log().Error(ctx, "load leaderboard failed", logger.String("dataPath", s.dataPath), logger.Error(err))
		return nil, err
	}
	return s.Process(ctx, doc)
}

// Process derives every view from an already decoded document. A
// validation, parse or integrity failure aborts the run before any view is
// produced.
func (s *Service) Process(ctx context.Context, doc *model.Document) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := s.log().Named("run")
	metrics.RecordRun()

	res, err := s.process(doc, runID)
	if err != nil {
		kind := errorKind(err)
		metrics.RecordRunError(kind)
		log.Error(ctx, "run failed",
			logger.String("runId", runID),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return nil, err
	}

	res.Duration = time.Since(start)
	metrics.RecordRunDuration(durationMs(res.Duration))
	metrics.UpdateRecords(len(res.Records))
	log.Info(ctx, "run finished",
		logger.String("runId", runID),
		logger.Int("records", len(res.Records)),
		logger.Int("participants", res.Summary.Participants),
		logger.Bool("anonymized", s.anonymize),
		logger.Duration("duration", res.Duration),
		logger.Float64("durationMs", durationMs(res.Duration)),
	)
	return res, nil
}

func (s *Service) process(doc *model.Document, runID string) (*Result, error) {
	records, err := s.flattener.Flatten(doc)
	if err != nil {
		return nil, err
	}
	views, err := aggregate.Build(records,
		aggregate.WithMinHour(s.minHour),
		aggregate.WithDayMatch(s.dayMatch),
	)
	if err != nil {
		return nil, err
	}
	summary, err := aggregate.Summarize(records, s.topN)
	if err != nil {
		return nil, err
	}
	standings, err := aggregate.Standings(records)
	if err != nil {
		return nil, err
	}

	report := render.Describe(views, summary, records, render.Meta{
		RunID:       runID,
		Event:       doc.Event,
		GeneratedAt: s.now().In(s.location),
		Anonymized:  s.anonymize,
		Location:    s.location.String(),
	})
	return &Result{
		RunID:     runID,
		Records:   records,
		Views:     views,
		Summary:   summary,
		Standings: standings,
		Report:    report,
	}, nil
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// errorKind labels run failures for metrics and logs.
func errorKind(err error) string {
	switch {
	case errors.Is(err, flatten.ErrValidation):
		return "validation"
	case errors.Is(err, flatten.ErrParse):
		return "parse"
	case errors.Is(err, aggregate.ErrIntegrity):
		return "integrity"
	case errors.Is(err, source.ErrDecode):
		return "decode"
	case errors.Is(err, source.ErrRead), errors.Is(err, source.ErrTooBig):
		return "read"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

func (s *Service) current() (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, ErrNotStarted
	}
	return s.last, nil
}

// Report returns the published render description.
func (s *Service) Report(_ context.Context) (render.Report, error) {
	res, err := s.current()
	if err != nil {
		return render.Report{}, err
	}
	return res.Report, nil
}

// Records returns the published completion records.
func (s *Service) Records(_ context.Context) ([]model.CompletionRecord, error) {
	res, err := s.current()
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// TopN returns the top N participants by local score.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if _, err := s.current(); err != nil {
		return nil, err
	}
	entries, err := s.leaderboard.TopN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("top %d: %w", n, err)
	}
	return entries, nil
}

// Rank returns the standing of one participant by display name.
func (s *Service) Rank(ctx context.Context, name string) (types.Entry, error) {
	if _, err := s.current(); err != nil {
		return types.Entry{}, err
	}
	return s.leaderboard.Rank(ctx, name)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"dataPath":  s.dataPath,
		"anonymize": s.anonymize,
		"location":  s.location.String(),
		"minHour":   s.minHour,
		"topN":      s.topN,
	}

	if s.last != nil {
		stats["runId"] = s.last.RunID
		stats["participants"] = s.leaderboard.Count(context.Background())
		stats["completions"] = len(s.last.Records)
		stats["days"] = len(s.last.Views.DayTotals)
		stats["durationMs"] = durationMs(s.last.Duration)
		stats["generatedAt"] = s.last.Report.Meta.GeneratedAt
	}

	return stats
}

// Package service provides the prediction context shared by the HTTP
// surfaces: validate, derive, score and bucketize.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/eta/internal/adapters/mlflow"
	"github.com/okian/eta/internal/domain/features"
	"github.com/okian/eta/internal/domain/model"
	"github.com/okian/eta/internal/domain/presentation"
	"github.com/okian/eta/internal/domain/types"
	"github.com/okian/eta/pkg/logger"
	"github.com/okian/eta/pkg/metrics"
)

// Pinger is implemented by predictors that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type breakerReporter interface {
	BreakerState() string
}

// Prediction is one scored order with everything derived along the way.
type Prediction struct {
	RequestID string
	Order     model.RawOrderRecord
	Features  features.EngineeredRecord
	Result    presentation.Result
}

// View returns the read shape served to clients.
func (p Prediction) View() types.Prediction {
	return types.Prediction{
		RequestID:       p.RequestID,
		Hours:           p.Result.Hours,
		Days:            p.Result.Days,
		RemainingHours:  p.Result.RemainingHours,
		Tier:            string(p.Result.Tier),
		BackgroundColor: p.Result.Scheme.Background,
		TextColor:       p.Result.Scheme.Text,
		Suggestions:     p.Result.Suggestions,
		Summary:         p.Result.Summary(),
	}
}

// Service is built once per process and is read-only afterwards.
type Service struct {
	predictor    mlflow.Predictor
	info         types.ModelInfo
	startupCheck bool
	newID        func() string
	logger       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStartupCheck enables or disables the readiness ping in Start.
func WithStartupCheck(enabled bool) Option {
	return func(s *Service) {
		s.startupCheck = enabled
	}
}

// WithModelInfo sets the model card served to clients.
func WithModelInfo(info types.ModelInfo) Option {
	return func(s *Service) {
		s.info = info
	}
}

// WithIDGenerator replaces the request id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New constructs a Service around predictor. It panics on a nil predictor.
func New(predictor mlflow.Predictor, opts ...Option) *Service {
	if predictor == nil {
		panic("predictor is nil")
	}
	s := &Service{
		predictor:    predictor,
		info:         types.DefaultModelInfo(),
		startupCheck: true,
		newID:        uuid.NewString,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start checks once that the model is reachable when the predictor supports it.
func (s *Service) Start(ctx context.Context) error {
	p, ok := s.predictor.(Pinger)
	if !s.startupCheck || !ok {
		s.logger.Info(ctx, "prediction service started", logger.Bool("startupCheck", false))
		return nil
	}

	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		s.logger.Error(ctx, "model readiness check failed",
			logger.Error(err),
			logger.String("servingURL", s.info.ServingURL),
		)
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	s.logger.Info(ctx, "prediction service started",
		logger.Bool("startupCheck", true),
		logger.String("modelURI", s.info.ModelURI),
		logger.Duration("pingTook", time.Since(start)),
	)
	return nil
}

// ModelInfo returns the model card.
func (s *Service) ModelInfo() types.ModelInfo { return s.info }

// BreakerState reports the model circuit breaker state, "closed" when the
// predictor has none.
func (s *Service) BreakerState() string {
	if b, ok := s.predictor.(breakerReporter); ok {
		return b.BreakerState()
	}
	return "closed"
}

// Predict scores a single order.
func (s *Service) Predict(ctx context.Context, raw model.RawOrderRecord) (Prediction, error) {
	out, err := s.PredictBatch(ctx, []model.RawOrderRecord{raw})
	if err != nil {
		return Prediction{}, err
	}
	return out[0], nil
}

// PredictBatch scores orders with a single model call. Any invalid order
// fails the whole batch before the model is called.
func (s *Service) PredictBatch(ctx context.Context, raws []model.RawOrderRecord) ([]Prediction, error) {
	if len(raws) == 0 {
		return []Prediction{}, nil
	}
	start := time.Now()

	for i, raw := range raws {
		if err := model.Validate(raw); err != nil {
			metrics.RecordPredictionError("validate")
			return nil, batchErr(len(raws), i, err)
		}
	}

	rows := make([]features.EngineeredRecord, len(raws))
	for i, raw := range raws {
		rec, err := features.Derive(raw)
		if err != nil {
			metrics.RecordPredictionError("derive")
			return nil, batchErr(len(raws), i, err)
		}
		rows[i] = rec
	}

	preds, err := s.predictor.Predict(ctx, rows)
	if err != nil {
		metrics.RecordPredictionError("model")
		s.logger.Error(ctx, "prediction failed", logger.Error(err), logger.Int("orders", len(rows)))
		return nil, fmt.Errorf("%w: %w", ErrModel, err)
	}
	if len(preds) != len(rows) {
		metrics.RecordPredictionError("model")
		return nil, fmt.Errorf("%w: got %d predictions for %d orders", ErrModel, len(preds), len(rows))
	}

	latencyMs := float64(time.Since(start).Milliseconds())
	out := make([]Prediction, len(rows))
	for i, rec := range rows {
		res := presentation.Bucketize(preds[i])
		out[i] = Prediction{
			RequestID: s.newID(),
			Order:     raws[i],
			Features:  rec,
			Result:    res,
		}
		metrics.RecordPrediction(string(res.Tier), res.Hours, latencyMs)
		s.logger.Debug(ctx, "order predicted",
			logger.String("requestID", out[i].RequestID),
			logger.Float64("hours", res.Hours),
			logger.String("tier", string(res.Tier)),
		)
	}
	return out, nil
}

func batchErr(n, i int, err error) error {
	if n == 1 {
		return err
	}
	return fmt.Errorf("order %d: %w", i, err)
}

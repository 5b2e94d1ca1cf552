package lexicon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/0Calories/kotoba-plus/internal/application"
	"github.com/0Calories/kotoba-plus/internal/domain/analyst"
	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
	"github.com/0Calories/kotoba-plus/internal/logger"
)

// ErrHistoryDisabled is returned by the history reads when no repository is wired
var ErrHistoryDisabled = errors.New("analysis history disabled")

// Stage of one Analyze call
type Stage string

const (
	StageValidating Stage = "validating"
	StageBuilding   Stage = "building"
	StageCalling    Stage = "calling"
	StageParsing    Stage = "parsing"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// sideEffectTimeout bounds history writes and archiving, which outlive request cancellation
const sideEffectTimeout = 5 * time.Second

// describer is implemented by provider adapters
type describer interface {
	Name() string
	ModelName() string
}

type Service struct {
	client  lexicon.Client
	history analyst.Repository
	archive lexicon.PayloadArchive
	clock   application.Clock
	newID   func() string
}

// Option configures optional collaborators of the Service
type Option func(*Service)

// WithHistory records every provider call in repo
func WithHistory(repo analyst.Repository) Option {
	return func(s *Service) { s.history = repo }
}

// WithArchive stores payloads that fail to parse
func WithArchive(a lexicon.PayloadArchive) Option {
	return func(s *Service) { s.archive = a }
}

// WithClock replaces the wall clock
func WithClock(c application.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func NewService(client lexicon.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		clock:  application.SystemClock{},
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs validate, build, call and parse once each. The error of the
// failing stage is returned as is so callers can match the lexicon sentinels.
// History and archive failures are logged and never change the outcome.
func (s *Service) Analyze(ctx context.Context, word string) (lexicon.AnalysisResult, error) {
	log := *logger.Named(ctx, "lexicon")
	provider, model := s.describe()

	req, err := lexicon.NewAnalysisRequest(word)
	if err != nil {
		logFailure(&log, StageValidating, err)
		return lexicon.AnalysisResult{}, err
	}

	// building cannot fail once the word is valid
	q := req.Query()
	log = log.With().
		Str("word", q.Word).
		Str("template", q.TemplateID+"@"+q.TemplateVersion).
		Str("provider", provider).
		Logger()

	start := s.clock.Now()
	raw, err := s.client.Execute(ctx, q)
	if err != nil {
		logFailure(&log, StageCalling, err)
		s.record(ctx, &log, q, start, nil, err)
		return lexicon.AnalysisResult{}, err
	}

	res, err := lexicon.Parse(raw)
	if err != nil {
		logFailure(&log, StageParsing, err)
		s.archivePayload(ctx, &log, q, start, raw)
		s.record(ctx, &log, q, start, nil, err)
		return lexicon.AnalysisResult{}, err
	}

	s.record(ctx, &log, q, start, &res, nil)
	log.Info().
		Str("stage", string(StageDone)).
		Str("model", model).
		Int("definitions", len(res.Definitions)).
		Dur("elapsed", s.clock.Now().Sub(start)).
		Msg("analysis done")
	return res, nil
}

// ListAnalyses pages through recorded analyses, newest first
func (s *Service) ListAnalyses(ctx context.Context, page, pageSize int) ([]*analyst.Analysis, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Paginate(ctx, page, pageSize)
}

// GetAnalysis returns one recorded analysis
func (s *Service) GetAnalysis(ctx context.Context, id string) (*analyst.Analysis, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Get(ctx, analyst.AnalysisID(id))
}

func (s *Service) describe() (string, string) {
	if d, ok := s.client.(describer); ok {
		return d.Name(), d.ModelName()
	}
	return "unknown", ""
}

func logFailure(log *logger.Logger, stage Stage, err error) {
	ev := log.Warn()
	if stage != StageValidating {
		ev = log.Error()
	}
	ev = ev.Err(err).
		Str("stage", string(StageFailed)).
		Str("failed_stage", string(stage)).
		Str("kind", string(lexicon.KindOf(err)))

	var se *lexicon.ServiceError
	if errors.As(err, &se) {
		ev = ev.Int("provider_status", se.Status).Str("provider_code", se.Code).Str("provider_message", se.Message)
	}
	var sch *lexicon.SchemaError
	if errors.As(err, &sch) {
		ev = ev.Str("field", sch.Field)
	}
	ev.Msg("analysis failed")
}

func (s *Service) record(ctx context.Context, log *logger.Logger, q lexicon.ExternalRequest, start time.Time, res *lexicon.AnalysisResult, callErr error) {
	if s.history == nil {
		return
	}
	provider, model := s.describe()
	now := s.clock.Now()
	a := &analyst.Analysis{
		ID:              analyst.AnalysisID(s.newID()),
		Word:            q.Word,
		TemplateID:      q.TemplateID,
		TemplateVersion: q.TemplateVersion,
		Provider:        provider,
		Model:           model,
		Status:          analyst.StatusDone,
		Result:          "{}",
		LatencyMS:       now.Sub(start).Milliseconds(),
		CreatedAt:       now,
	}
	if callErr != nil {
		a.Status = analyst.StatusFailed
		a.ErrorKind = string(lexicon.KindOf(callErr))
		a.ErrorDetail = callErr.Error()
	}
	if res != nil {
		b, err := json.Marshal(res)
		if err != nil {
			log.Warn().Err(err).Msg("encode result for history")
		} else {
			a.Result = string(b)
		}
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.history.Save(sctx, a); err != nil {
		log.Warn().Err(err).Str("analysis_id", string(a.ID)).Msg("history save failed")
	}
}

func (s *Service) archivePayload(ctx context.Context, log *logger.Logger, q lexicon.ExternalRequest, at time.Time, raw lexicon.RawPayload) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("%s/%s/%s/%s", q.TemplateID, q.TemplateVersion, at.UTC().Format("2006-01-02"), s.newID())

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	loc, err := s.archive.Archive(actx, key, raw)
	if err != nil {
		log.Warn().Err(err).Msg("payload archive failed")
		return
	}
	log.Info().Str("archive", loc).Msg("unparsable payload archived")
}

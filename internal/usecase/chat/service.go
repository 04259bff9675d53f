package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"warehouse-assistant-bot/internal/domain"
	"warehouse-assistant-bot/internal/usecase/answer"
)

const DefaultActivityTail = 10

// Retriever searches the records of one snapshot. An empty snapshotID
// selects the shared default snapshot.
type Retriever interface {
	Retrieve(ctx context.Context, snapshotID, query string) ([]domain.Record, error)
}

type Composer interface {
	Compose(ctx context.Context, mode domain.Mode, records []domain.Record, question string) answer.Result
}

type Scorer interface {
	Score(question, answer, records string) domain.Confidence
}

// Services are the process-wide retriever and model, built together by
// a Factory and replaced together on refresh.
type Services struct {
	Retriever Retriever
	Composer  Composer
}

type Factory func(ctx context.Context) (Services, error)

type Service struct {
	services atomic.Pointer[Services]
	factory  Factory
	refresh  sync.Mutex

	scorer       Scorer
	activityTail int
	log          *zap.Logger
	now          func() time.Time
}

type Option func(*Service)

func WithActivityTail(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.activityTail = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService builds the initial services with factory. The same factory
// is used again by Refresh.
func NewService(ctx context.Context, factory Factory, scorer Scorer, opts ...Option) (*Service, error) {
	s := &Service{
		factory:      factory,
		scorer:       scorer,
		activityTail: DefaultActivityTail,
		log:          zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	svc, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	s.services.Store(&svc)
	return s, nil
}

// Ask runs one turn: retrieve, compose, score and record. Only an empty
// question is rejected; every accepted question yields exactly one
// assistant message.
func (s *Service) Ask(ctx context.Context, sess *domain.Session, question string) (domain.Turn, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Turn{}, domain.ErrInvalidInput
	}

	// services are pinned for the whole turn so a refresh lands between turns
	svc := s.services.Load()
	ts := s.now()
	userMsg := sess.AppendUserTurn(question, ts)
	log := s.log.With(
		zap.String("session_id", sess.ID),
		zap.String("mode", string(sess.Mode())),
	)

	degraded := false
	records, err := svc.Retriever.Retrieve(ctx, sess.Snapshot(), question)
	if err != nil {
		if !errors.Is(err, domain.ErrRetrievalUnavailable) {
			log.Error("retrieval failed", zap.Error(err))
		} else {
			log.Warn("retrieval unavailable, answering without records", zap.Error(err))
		}
		records = nil
		degraded = true
	}
	recordsText := domain.JoinRecords(records)

	res := svc.Composer.Compose(ctx, sess.Mode(), records, question)
	if res.Recovered {
		degraded = true
	}

	conf := s.scorer.Score(question, res.Text, recordsText)
	assistantMsg := sess.AppendAssistantTurn(res.Text, conf, ts)

	log.Info("turn completed",
		zap.Int("question_len", len(question)),
		zap.Int("records", len(records)),
		zap.Float64("score", conf.Score),
		zap.Bool("degraded", degraded),
		zap.Duration("elapsed", s.now().Sub(ts)),
	)

	return domain.Turn{
		User:       userMsg,
		Assistant:  assistantMsg,
		Confidence: conf,
		Records:    len(records),
		Degraded:   degraded,
		Activity:   sess.ActivityTail(s.activityTail),
	}, nil
}

// Refresh rebuilds the retriever and model and swaps them in. A turn
// already in flight keeps the services it started with.
func (s *Service) Refresh(ctx context.Context, sess *domain.Session) error {
	s.refresh.Lock()
	defer s.refresh.Unlock()

	svc, err := s.factory(ctx)
	if err != nil {
		s.log.Error("refresh failed", zap.Error(err))
		return err
	}
	s.services.Store(&svc)
	sess.Log("Data cache refreshed")
	s.log.Info("services refreshed", zap.String("session_id", sess.ID))
	return nil
}

func (s *Service) Clear(sess *domain.Session) {
	sess.Clear()
}

func (s *Service) SetMode(sess *domain.Session, mode domain.Mode) {
	sess.SetMode(mode)
}

// Activity returns the visible tail of the session's activity log.
func (s *Service) Activity(sess *domain.Session) []domain.ActivityEntry {
	return sess.ActivityTail(s.activityTail)
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/soaringjerry/SheHuMaan/internal/intake"
	"github.com/soaringjerry/SheHuMaan/internal/nav"
	"github.com/soaringjerry/SheHuMaan/internal/results"
)

// Notification keys emitted by SubmissionService.
const (
	SubmitSuccessKey    = "submit.success"
	ValidationFailedKey = "error.validation"
)

// SubmissionService sends one session's intake to the classifier and keeps
// the latest result. At most one submission runs at a time; a second one
// fails fast instead of queueing.
type SubmissionService struct {
	classifier Classifier
	store      results.Store
	navigator  nav.Navigator
	notifier   nav.Notifier
	log        *zap.Logger
	inflight   *semaphore.Weighted
	now        func() time.Time
}

func NewSubmissionService(classifier Classifier, store results.Store, navigator nav.Navigator, notifier nav.Notifier, log *zap.Logger) *SubmissionService {
	if log == nil {
		log = zap.NewNop()
	}
	if navigator == nil {
		navigator = nav.NavigatorFunc(func(nav.View) {})
	}
	if notifier == nil {
		notifier = nav.NotifierFunc(func(nav.Notification) {})
	}
	return &SubmissionService{
		classifier: classifier,
		store:      store,
		navigator:  navigator,
		notifier:   notifier,
		log:        log,
		inflight:   semaphore.NewWeighted(1),
		now:        time.Now,
	}
}

// Submit validates in, classifies it and saves the result. On success it
// navigates to the dashboard and returns the stored result. in is never
// modified.
func (s *SubmissionService) Submit(ctx context.Context, in intake.Input) (*results.Result, error) {
	if err := intake.ValidateForSubmit(in); err != nil {
		var fields []string
		var ve *intake.ValidationErrors
		if errors.As(err, &ve) {
			fields = ve.Fields()
		}
		return nil, NewValidationError("Please fill in all required fields", fields, err)
	}

	if !s.inflight.TryAcquire(1) {
		return nil, NewInProgressError()
	}
	defer s.inflight.Release(1)

	r, err := s.classifier.Classify(ctx, in.Clone())
	if err != nil {
		if se, ok := AsServiceError(err); ok {
			s.log.Warn("Classification failed", zap.String("code", string(se.Code)), zap.Error(err))
			return nil, err
		}
		s.log.Warn("Classification failed", zap.Error(err))
		return nil, NewTransportError(err)
	}
	if r == nil {
		return nil, NewMalformedResultError(errors.New("empty classifier response"))
	}
	if err := r.Validate(); err != nil {
		return nil, NewMalformedResultError(err)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp == "" {
		r.Timestamp = s.now().UTC().Format(time.RFC3339)
	}

	if err := s.store.Save(ctx, r); err != nil {
		s.log.Error("Failed to save assessment result", zap.String("result_id", r.ID), zap.Error(err))
		return nil, NewStorageError(err)
	}
	s.log.Info("Assessment classified",
		zap.String("result_id", r.ID),
		zap.String("stress_level", string(r.StressLevel)),
		zap.String("burnout_risk", string(r.BurnoutRisk)),
	)
	s.notifier.Notify(nav.Notification{Level: nav.LevelSuccess, Key: SubmitSuccessKey})
	s.navigator.Navigate(nav.Results)
	return r, nil
}

// Result loads the stored result, mapping absence to a missing_result error.
func (s *SubmissionService) Result(ctx context.Context) (*results.Result, error) {
	r, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, results.ErrAbsent) {
			return nil, NewMissingResultError()
		}
		return nil, NewStorageError(err)
	}
	return r, nil
}

// Store returns the session's result store.
func (s *SubmissionService) Store() results.Store { return s.store }

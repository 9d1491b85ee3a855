package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/domain/repositories"
	"github.com/neuvia/backend/internal/infrastructure/observability"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

// IntakeState is the state an intake submission ended in
type IntakeState string

const (
	IntakeStateEditing    IntakeState = "editing"
	IntakeStateValidating IntakeState = "validating"
	IntakeStateBlocked    IntakeState = "blocked"
	IntakeStateSubmitting IntakeState = "submitting"
	IntakeStateReporting  IntakeState = "reporting"
	IntakeStateFailed     IntakeState = "failed"
)

// ErrSubmissionInProgress is returned when the user already has a submission in flight
var ErrSubmissionInProgress = apperrors.NewConflictError("an intake submission is already in progress")

const intakeLockPrefix = "intake:inflight:"

// RiskAssessor produces a risk report for normalized symptoms
type RiskAssessor interface {
	Assess(ctx context.Context, userID string, symptoms entities.NormalizedSymptoms) (*entities.RiskReport, error)
}

// IntakeOutcome is the result of one submission. Fields always carries the
// form as submitted so the patient can correct and resubmit it.
type IntakeOutcome struct {
	State         IntakeState
	User          entities.UserIdentity
	Fields        entities.FieldSet
	Missing       []string
	Report        *entities.RiskReport
	Notifications []string
	LogID         string
}

// IntakeService runs the structured intake flow: validate, normalize,
// persist, assess, report
type IntakeService struct {
	repo     repositories.SymptomLogRepository
	assessor RiskAssessor
	notifier *TrendNotificationService
	locks    providers.CacheProvider
	lockTTL  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewIntakeService creates a new intake service. locks and notifier may be nil.
func NewIntakeService(
	repo repositories.SymptomLogRepository,
	assessor RiskAssessor,
	notifier *TrendNotificationService,
	locks providers.CacheProvider,
	lockTTL time.Duration,
) *IntakeService {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &IntakeService{
		repo:     repo,
		assessor: assessor,
		notifier: notifier,
		locks:    locks,
		lockTTL:  lockTTL,
		now:      func() time.Time { return time.Now().UTC() },
		inflight: make(map[string]struct{}),
	}
}

// WithClock replaces the submission clock
func (s *IntakeService) WithClock(now func() time.Time) *IntakeService {
	s.now = now
	return s
}

// Submit processes one intake form for user. A form with missing required
// fields comes back Blocked with a nil error. Persistence and analysis
// failures come back Failed together with the typed error.
func (s *IntakeService) Submit(ctx context.Context, user entities.UserIdentity, fields entities.FieldSet) (*IntakeOutcome, error) {
	ctx, span := observability.StartSpan(ctx, "IntakeService.Submit")
	defer span.End()

	if strings.TrimSpace(user.ID) == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}

	release, err := s.acquire(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	logger := observability.LoggerFromContext(ctx).With().Str("user_id", user.ID).Logger()
	outcome := &IntakeOutcome{State: IntakeStateValidating, User: user, Fields: fields}

	validation := ValidateIntake(fields, entities.RequiredIntakeKeys)
	if !validation.OK {
		outcome.State = IntakeStateBlocked
		outcome.Missing = validation.Missing
		logger.Info().Strs("missing", validation.Missing).Msg("Intake blocked on missing fields")
		return outcome, nil
	}

	outcome.State = IntakeStateSubmitting
	symptoms := NormalizeIntake(fields)
	now := s.now()

	record := &entities.SymptomLog{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Symptoms:    symptoms,
		SubmittedAt: now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Msg("Failed to persist symptom log")
		outcome.State = IntakeStateFailed
		return outcome, apperrors.NewPersistenceError("failed to save symptom log", err)
	}
	outcome.LogID = record.ID

	var (
		report        *entities.RiskReport
		notifications []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = s.assessor.Assess(gctx, user.ID, symptoms)
		return err
	})
	if s.notifier != nil {
		g.Go(func() error {
			n, err := s.notifier.ForUser(gctx, user.ID, now)
			if err != nil {
				logger.Warn().Err(err).Msg("Trend notifications unavailable")
				return nil
			}
			notifications = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		observability.RecordError(span, err)
		logger.Warn().Err(err).Msg("Risk assessment failed")
		outcome.State = IntakeStateFailed
		if !apperrors.IsType(err, apperrors.ErrorTypeAnalysisUnavailable) {
			err = apperrors.NewAnalysisUnavailableError("risk analysis unavailable", err)
		}
		return outcome, err
	}

	outcome.State = IntakeStateReporting
	outcome.Report = report
	outcome.Notifications = notifications
	if outcome.Notifications == nil {
		outcome.Notifications = []string{}
	}
	logger.Info().Int("conditions", report.Len()).Msg("Intake assessed")

	return outcome, nil
}

// acquire takes the per-user submission lock: locally always, and in the
// shared cache when one is configured. A cache outage degrades to the local lock.
func (s *IntakeService) acquire(ctx context.Context, userID string) (func(), error) {
	s.mu.Lock()
	if _, busy := s.inflight[userID]; busy {
		s.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	s.inflight[userID] = struct{}{}
	s.mu.Unlock()

	releaseLocal := func() {
		s.mu.Lock()
		delete(s.inflight, userID)
		s.mu.Unlock()
	}

	if s.locks == nil {
		return releaseLocal, nil
	}

	key := intakeLockPrefix + userID
	ok, err := s.locks.SetNX(ctx, key, []byte("1"), s.lockTTL)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Intake lock unavailable, using local lock only")
		return releaseLocal, nil
	}
	if !ok {
		releaseLocal()
		return nil, ErrSubmissionInProgress
	}

	return func() {
		if err := s.locks.Delete(context.WithoutCancel(ctx), key); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to release intake lock")
		}
		releaseLocal()
	}, nil
}

package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/entities"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

type MockRiskAssessor struct {
	mock.Mock
}

func (m *MockRiskAssessor) Assess(ctx context.Context, userID string, symptoms entities.NormalizedSymptoms) (*entities.RiskReport, error) {
	args := m.Called(ctx, userID, symptoms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RiskReport), args.Error(1)
}

type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCacheProvider) SetNX(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

var patient = entities.UserIdentity{ID: "u1", Name: "Ada", Email: "ada@example.com"}

func sampleReport() *entities.RiskReport {
	return entities.NewRiskReport([]entities.RiskAssessment{
		{Condition: "preeclampsia", RiskLevel: entities.RiskModerate, Reasons: []string{"BP elevated"}},
	})
}

func TestIntakeService_Submit_Blocked(t *testing.T) {
	repo := new(MockSymptomLogRepository)
	assessor := new(MockRiskAssessor)
	svc := services.NewIntakeService(repo, assessor, nil, nil, time.Minute)

	values := completeIntake()
	delete(values, "bp")
	fields := entities.NewFieldSet(values)

	outcome, err := svc.Submit(context.Background(), patient, fields)
	require.NoError(t, err)
	assert.Equal(t, services.IntakeStateBlocked, outcome.State)
	assert.Equal(t, []string{"bp"}, outcome.Missing)
	assert.Equal(t, fields, outcome.Fields)
	assert.Nil(t, outcome.Report)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assessor.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_Reporting(t *testing.T) {
	repo := new(MockSymptomLogRepository)
	assessor := new(MockRiskAssessor)

	var saved *entities.SymptomLog
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.SymptomLog")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*entities.SymptomLog) }).
		Return(nil)
	repo.On("ListSince", mock.Anything, "u1", mock.Anything).
		Return(dailyLogs(3, map[string]string{"bp": "150"}), nil)
	assessor.On("Assess", mock.Anything, "u1", mock.Anything).Return(sampleReport(), nil)

	svc := services.NewIntakeService(repo, assessor, services.NewTrendNotificationService(repo, 7), nil, time.Minute).
		WithClock(func() time.Time { return today })
	fields := entities.NewFieldSet(completeIntake())

	outcome, err := svc.Submit(context.Background(), patient, fields)
	require.NoError(t, err)
	assert.Equal(t, services.IntakeStateReporting, outcome.State)
	assert.Equal(t, patient, outcome.User)
	assert.Equal(t, fields, outcome.Fields)
	assert.Equal(t, 1, outcome.Report.Len())
	require.Len(t, outcome.Notifications, 1)
	assert.Contains(t, outcome.Notifications[0], "blood pressure")

	require.NotNil(t, saved)
	assert.Equal(t, outcome.LogID, saved.ID)
	assert.Equal(t, "u1", saved.UserID)
	bp, ok := saved.Symptoms.Number("bp")
	assert.True(t, ok)
	assert.Equal(t, 120.0, bp)

	assessed := assessor.Calls[0].Arguments.Get(2).(entities.NormalizedSymptoms)
	assert.Equal(t, saved.Symptoms, assessed)
}

func TestIntakeService_Submit_PersistenceFailure(t *testing.T) {
	repo := new(MockSymptomLogRepository)
	assessor := new(MockRiskAssessor)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := services.NewIntakeService(repo, assessor, nil, nil, time.Minute)
	fields := entities.NewFieldSet(completeIntake())

	outcome, err := svc.Submit(context.Background(), patient, fields)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypePersistence))
	assert.Equal(t, services.IntakeStateFailed, outcome.State)
	assert.Equal(t, fields, outcome.Fields)
	assessor.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_AnalysisUnavailable(t *testing.T) {
	repo := new(MockSymptomLogRepository)
	assessor := new(MockRiskAssessor)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("ListSince", mock.Anything, mock.Anything, mock.Anything).Return([]*entities.SymptomLog{}, nil).Maybe()
	assessor.On("Assess", mock.Anything, "u1", mock.Anything).
		Return(nil, apperrors.NewAnalysisUnavailableError("model offline", nil))

	svc := services.NewIntakeService(repo, assessor, services.NewTrendNotificationService(repo, 7), nil, time.Minute)
	fields := entities.NewFieldSet(completeIntake())

	outcome, err := svc.Submit(context.Background(), patient, fields)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAnalysisUnavailable))
	assert.Contains(t, err.Error(), "model offline")
	assert.Equal(t, services.IntakeStateFailed, outcome.State)
	assert.Equal(t, fields, outcome.Fields)
	assert.Nil(t, outcome.Report)
}

func TestIntakeService_Submit_NotificationFailureIsTolerated(t *testing.T) {
	repo := new(MockSymptomLogRepository)
	assessor := new(MockRiskAssessor)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("ListSince", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	assessor.On("Assess", mock.Anything, mock.Anything, mock.Anything).Return(sampleReport(), nil)

	svc := services.NewIntakeService(repo, assessor, services.NewTrendNotificationService(repo, 7), nil, time.Minute)

	outcome, err := svc.Submit(context.Background(), patient, entities.NewFieldSet(completeIntake()))
	require.NoError(t, err)
	assert.Equal(t, services.IntakeStateReporting, outcome.State)
	assert.Empty(t, outcome.Notifications)
}

func TestIntakeService_Submit_OneInFlightPerUser(t *testing.T) {
	repo := new(MockSymptomLogRepository)
	assessor := new(MockRiskAssessor)
	started := make(chan struct{})
	release := make(chan struct{})
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	assessor.On("Assess", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(sampleReport(), nil).Once()
	assessor.On("Assess", mock.Anything, mock.Anything, mock.Anything).Return(sampleReport(), nil)

	svc := services.NewIntakeService(repo, assessor, nil, nil, time.Minute)
	fields := entities.NewFieldSet(completeIntake())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), patient, fields)
		done <- err
	}()
	<-started

	_, err := svc.Submit(context.Background(), patient, fields)
	assert.ErrorIs(t, err, services.ErrSubmissionInProgress)

	other := entities.UserIdentity{ID: "u2"}
	outcome, err := svc.Submit(context.Background(), other, fields)
	require.NoError(t, err, "other users are not blocked")
	assert.Equal(t, services.IntakeStateReporting, outcome.State)

	close(release)
	require.NoError(t, <-done)

	outcome, err = svc.Submit(context.Background(), patient, fields)
	require.NoError(t, err)
	assert.Equal(t, services.IntakeStateReporting, outcome.State)
}

func TestIntakeService_Submit_SharedLock(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		repo := new(MockSymptomLogRepository)
		locks := new(MockCacheProvider)
		locks.On("SetNX", mock.Anything, "intake:inflight:u1", []byte("1"), 30*time.Second).Return(false, nil)

		svc := services.NewIntakeService(repo, new(MockRiskAssessor), nil, locks, 30*time.Second)
		_, err := svc.Submit(context.Background(), patient, entities.NewFieldSet(completeIntake()))
		assert.ErrorIs(t, err, services.ErrSubmissionInProgress)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("acquired and released", func(t *testing.T) {
		repo := new(MockSymptomLogRepository)
		assessor := new(MockRiskAssessor)
		locks := new(MockCacheProvider)
		locks.On("SetNX", mock.Anything, "intake:inflight:u1", mock.Anything, mock.Anything).Return(true, nil)
		locks.On("Delete", mock.Anything, "intake:inflight:u1").Return(nil).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		assessor.On("Assess", mock.Anything, mock.Anything, mock.Anything).Return(sampleReport(), nil)

		svc := services.NewIntakeService(repo, assessor, nil, locks, time.Minute)
		_, err := svc.Submit(context.Background(), patient, entities.NewFieldSet(completeIntake()))
		require.NoError(t, err)
		locks.AssertExpectations(t)
	})

	t.Run("cache outage falls back to local lock", func(t *testing.T) {
		repo := new(MockSymptomLogRepository)
		assessor := new(MockRiskAssessor)
		locks := new(MockCacheProvider)
		locks.On("SetNX", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		assessor.On("Assess", mock.Anything, mock.Anything, mock.Anything).Return(sampleReport(), nil)

		svc := services.NewIntakeService(repo, assessor, nil, locks, time.Minute)
		outcome, err := svc.Submit(context.Background(), patient, entities.NewFieldSet(completeIntake()))
		require.NoError(t, err)
		assert.Equal(t, services.IntakeStateReporting, outcome.State)
		locks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestIntakeService_Submit_RequiresUser(t *testing.T) {
	svc := services.NewIntakeService(new(MockSymptomLogRepository), new(MockRiskAssessor), nil, nil, time.Minute)
	_, err := svc.Submit(context.Background(), entities.UserIdentity{}, entities.NewFieldSet(completeIntake()))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/entities"
)

type MockSymptomLogRepository struct {
	mock.Mock
}

func (m *MockSymptomLogRepository) Create(ctx context.Context, log *entities.SymptomLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSymptomLogRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.SymptomLog, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SymptomLog), args.Error(1)
}

var today = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// dailyLogs builds one log per day ending today, each with the given values
func dailyLogs(days int, values map[string]string) []*entities.SymptomLog {
	logs := make([]*entities.SymptomLog, 0, days)
	for i := days - 1; i >= 0; i-- {
		var symptoms entities.NormalizedSymptoms
		for k, v := range values {
			symptoms = append(symptoms, entities.NormalizedSymptom{Key: k, Value: services.CoerceValue(v)})
		}
		logs = append(logs, &entities.SymptomLog{
			UserID:      "u1",
			Symptoms:    symptoms,
			SubmittedAt: today.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}
	return logs
}

func TestGenerateNotifications(t *testing.T) {
	t.Run("reminder when nothing logged today", func(t *testing.T) {
		assert.Equal(t, []string{services.MissingLogReminder}, services.GenerateNotifications(nil, today))

		logs := dailyLogs(1, map[string]string{"mood": "4"})
		logs[0].SubmittedAt = today.Add(-24 * time.Hour)
		assert.Contains(t, services.GenerateNotifications(logs, today), services.MissingLogReminder)
	})

	t.Run("quiet history yields nothing", func(t *testing.T) {
		logs := dailyLogs(5, map[string]string{"mood": "4", "bp": "118", "anxiety": "1"})
		assert.Empty(t, services.GenerateNotifications(logs, today))
	})

	t.Run("three days of high blood pressure", func(t *testing.T) {
		logs := dailyLogs(3, map[string]string{"bp": "145"})
		got := services.GenerateNotifications(logs, today)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "preeclampsia")
	})

	t.Run("two days is not a trend", func(t *testing.T) {
		assert.Empty(t, services.GenerateNotifications(dailyLogs(2, map[string]string{"bp": "150"}), today))
	})

	t.Run("one normal reading breaks the trend", func(t *testing.T) {
		logs := dailyLogs(3, map[string]string{"mood": "1"})
		logs[1].Symptoms = entities.NormalizedSymptoms{{Key: "mood", Value: entities.NumberValue(decimal.NewFromInt(3))}}
		assert.Empty(t, services.GenerateNotifications(logs, today))
	})

	t.Run("combined rules need every signal", func(t *testing.T) {
		assert.Empty(t, services.GenerateNotifications(dailyLogs(3, map[string]string{"fatigue": "5", "heart_rate": "90"}), today))

		got := services.GenerateNotifications(dailyLogs(3, map[string]string{"fatigue": "5", "heart_rate": "105"}), today)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "anaemia")
	})

	t.Run("boolean spotting counts with pain", func(t *testing.T) {
		got := services.GenerateNotifications(dailyLogs(2, map[string]string{"spotting": "true", "pain": "4"}), today)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "miscarriage")
	})

	t.Run("thyroid rules look back five entries", func(t *testing.T) {
		assert.Empty(t, services.GenerateNotifications(dailyLogs(4, map[string]string{"cold_sensitivity": "5"}), today))
		assert.Len(t, services.GenerateNotifications(dailyLogs(5, map[string]string{"cold_sensitivity": "5"}), today), 1)
	})
}

func TestTrendNotificationService_ForUser(t *testing.T) {
	repo := new(MockSymptomLogRepository)
	repo.On("ListSince", mock.Anything, "u1", today.Add(-7*24*time.Hour)).
		Return(dailyLogs(3, map[string]string{"anxiety": "5"}), nil).Once()
	repo.On("ListSince", mock.Anything, "u2", mock.Anything).Return(nil, errors.New("db down")).Once()

	svc := services.NewTrendNotificationService(repo, 7)

	got, err := svc.ForUser(context.Background(), "u1", today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Anxiety")

	_, err = svc.ForUser(context.Background(), "u2", today)
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

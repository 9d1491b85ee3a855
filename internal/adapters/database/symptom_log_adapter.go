package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/repositories"
	"github.com/neuvia/backend/internal/infrastructure/clients/postgres"
	"github.com/neuvia/backend/internal/infrastructure/observability"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

const symptomLogsTable = "symptom_logs"

// SymptomLogAdapter implements SymptomLogRepository in Postgres
type SymptomLogAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewSymptomLogAdapter creates a new symptom log adapter. metrics may be nil.
func NewSymptomLogAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.SymptomLogRepository {
	return &SymptomLogAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Create inserts a symptom log
func (a *SymptomLogAdapter) Create(ctx context.Context, log *entities.SymptomLog) error {
	if log == nil {
		return apperrors.NewInternalError("symptom log is nil", fmt.Errorf("symptom log is nil"))
	}
	defer a.observe(ctx, "symptom_logs.create", time.Now())

	symptoms, err := json.Marshal(log.Symptoms)
	if err != nil {
		return apperrors.NewInternalError("failed to encode symptoms", err)
	}

	record := goqu.Record{
		"id":           log.ID,
		"user_id":      log.UserID,
		"symptoms":     string(symptoms),
		"submitted_at": log.SubmittedAt,
	}

	query, args, err := a.db.Insert(symptomLogsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build symptom log insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to create symptom log", err)
	}
	return nil
}

// ListSince returns the user's logs submitted at or after since, oldest first
func (a *SymptomLogAdapter) ListSince(ctx context.Context, userID string, since time.Time) ([]*entities.SymptomLog, error) {
	defer a.observe(ctx, "symptom_logs.list_since", time.Now())

	query, args, err := a.db.From(symptomLogsTable).
		Select("id", "user_id", "symptoms", "submitted_at").
		Where(
			goqu.C("user_id").Eq(userID),
			goqu.C("submitted_at").Gte(since),
		).
		Order(goqu.C("submitted_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build symptom log query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list symptom logs", err)
	}
	defer rows.Close()

	var logs []*entities.SymptomLog
	for rows.Next() {
		var (
			log      entities.SymptomLog
			symptoms []byte
		)
		if err := rows.Scan(&log.ID, &log.UserID, &symptoms, &log.SubmittedAt); err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan symptom log", err)
		}
		if err := json.Unmarshal(symptoms, &log.Symptoms); err != nil {
			return nil, apperrors.NewInternalError("failed to decode symptoms", err)
		}
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate symptom logs", err)
	}
	return logs, nil
}

func (a *SymptomLogAdapter) observe(ctx context.Context, op string, start time.Time) {
	observability.RecordDBMetric(ctx, a.metrics, op, time.Since(start))
}

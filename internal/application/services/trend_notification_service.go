package services

import (
	"context"
	"fmt"
	"time"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/repositories"
)

// MissingLogReminder is added when the patient has not logged symptoms today
const MissingLogReminder = "You haven't logged today's symptoms. Please update to get accurate insights."

type comparison int

const (
	atLeast comparison = iota
	atMost
)

// trendCheck holds when the last `entries` logs all satisfy the comparison against threshold
type trendCheck struct {
	key       string
	threshold float64
	cmp       comparison
	entries   int
}

// trendRule fires its message when every check holds
type trendRule struct {
	checks  []trendCheck
	message string
}

var trendRules = []trendRule{
	{[]trendCheck{{"mood", 2, atMost, 3}}, "Mood low for 3+ days: possible emotional health issue."},
	{[]trendCheck{{"anxiety", 4, atLeast, 3}}, "Anxiety has been high for 3+ days. Consider stress relief or speaking with someone."},
	{[]trendCheck{{"thirst_level", 4, atLeast, 3}}, "Excessive thirst for 3+ days: possible gestational diabetes sign."},
	{[]trendCheck{{"frequent_urination", 10, atLeast, 3}}, "Frequent urination for 3+ days: monitor sugar-related symptoms."},
	{[]trendCheck{{"fatigue", 4, atLeast, 3}, {"heart_rate", 100, atLeast, 3}}, "Fatigue with high heart rate for 3+ days: possible anaemia. Track iron intake."},
	{[]trendCheck{{"cold_sensitivity", 4, atLeast, 5}}, "Persistent cold sensitivity over 5+ days: possible thyroid issue."},
	{[]trendCheck{{"hair_loss", 3, atLeast, 5}}, "Hair loss continues over 5+ days: may be related to hypothyroidism."},
	{[]trendCheck{{"bp", 140, atLeast, 3}}, "High blood pressure for 3+ days: possible preeclampsia."},
	{[]trendCheck{{"swelling", 3, atLeast, 3}}, "Swelling present for 3+ days: monitor with other blood pressure symptoms."},
	{[]trendCheck{{"burning_urine", 3, atLeast, 3}}, "Pain while urinating for 3+ days: possible UTI."},
	{[]trendCheck{{"foul_smell", 2, atLeast, 3}}, "Foul urine smell for 3+ days: may indicate infection."},
	{[]trendCheck{{"spotting", 1, atLeast, 2}, {"pain", 3, atLeast, 2}}, "Spotting with pain: could be an early miscarriage warning. Seek medical attention."},
}

// TrendNotificationService derives tracking notifications from a patient's recent symptom logs
type TrendNotificationService struct {
	repo   repositories.SymptomLogRepository
	window time.Duration
}

// NewTrendNotificationService creates a notification service looking back historyDays days
func NewTrendNotificationService(repo repositories.SymptomLogRepository, historyDays int) *TrendNotificationService {
	if historyDays <= 0 {
		historyDays = 7
	}
	return &TrendNotificationService{repo: repo, window: time.Duration(historyDays) * 24 * time.Hour}
}

// ForUser loads the user's recent logs and evaluates them as of now
func (s *TrendNotificationService) ForUser(ctx context.Context, userID string, now time.Time) ([]string, error) {
	logs, err := s.repo.ListSince(ctx, userID, now.Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("failed to load symptom history: %w", err)
	}
	return GenerateNotifications(logs, now), nil
}

// GenerateNotifications evaluates the trend rules over logs (oldest first).
// A rule needs at least as many logs as it inspects; each of the most recent
// ones must carry a numeric (or boolean) value meeting the threshold.
func GenerateNotifications(logs []*entities.SymptomLog, now time.Time) []string {
	notifications := []string{}

	if len(logs) == 0 || !sameDay(logs[len(logs)-1].SubmittedAt, now) {
		notifications = append(notifications, MissingLogReminder)
	}

	for _, rule := range trendRules {
		fires := true
		for _, check := range rule.checks {
			if !check.holds(logs) {
				fires = false
				break
			}
		}
		if fires {
			notifications = append(notifications, rule.message)
		}
	}

	return notifications
}

func (c trendCheck) holds(logs []*entities.SymptomLog) bool {
	if len(logs) < c.entries {
		return false
	}
	for _, log := range logs[len(logs)-c.entries:] {
		v, ok := trendValue(log.Symptoms, c.key)
		if !ok {
			return false
		}
		switch c.cmp {
		case atLeast:
			if v < c.threshold {
				return false
			}
		case atMost:
			if v > c.threshold {
				return false
			}
		}
	}
	return true
}

func trendValue(symptoms entities.NormalizedSymptoms, key string) (float64, bool) {
	v, ok := symptoms.Get(key)
	if !ok {
		return 0, false
	}
	if v.Kind == entities.ValueBool {
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return v.Float()
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

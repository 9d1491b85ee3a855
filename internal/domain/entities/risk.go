package entities

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// RiskLevel is the ordinal risk classification for one condition
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Rank orders risk levels: Low < Moderate < High. Unknown levels rank 0.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 1
	case RiskModerate:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// ParseRiskLevel reads the leading word of a scorer label, case-insensitively.
// "High (72%)" and "high" both parse as High; "Low Risk (0%)" parses as Low.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	word := strings.TrimSpace(s)
	if i := strings.IndexFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }); i >= 0 {
		word = word[:i]
	}
	switch strings.ToLower(word) {
	case "low":
		return RiskLow, true
	case "moderate", "medium":
		return RiskModerate, true
	case "high":
		return RiskHigh, true
	default:
		return "", false
	}
}

// CompareRiskLevels returns -1, 0 or +1 comparing a to b by severity
func CompareRiskLevels(a, b RiskLevel) int {
	switch ra, rb := a.Rank(), b.Rank(); {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// Probability is a condition probability in percent. The scorer sends it as
// "72%"; a bare JSON number is read as a percentage too.
type Probability float64

// String renders the probability the way the scorer sends it, e.g. "72%"
func (p Probability) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64) + "%"
}

// MarshalJSON writes the "72%" string form
func (p Probability) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// parseProbability reads 72, "72", "72%" or " 72.5 % ". Null, NaN, infinities
// and anything unparseable yield nil rather than an error.
func parseProbability(raw json.RawMessage) *Probability {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	p := Probability(f)
	return &p
}

// RiskAssessment is the risk verdict for one condition
type RiskAssessment struct {
	Condition       ConditionName `json:"condition"`
	RiskLevel       RiskLevel     `json:"risk_level"`
	Probability     *Probability  `json:"probability,omitempty"`
	Reasons         []string      `json:"why"`
	Recommendations []string      `json:"recommendations"`
}

// RiskReport is an ordered, read-only set of assessments, at most one per condition
type RiskReport struct {
	entries []RiskAssessment
}

// NewRiskReport copies entries into a report. A later entry for a condition
// already present is ignored.
func NewRiskReport(entries []RiskAssessment) *RiskReport {
	out := make([]RiskAssessment, 0, len(entries))
	seen := make(map[ConditionName]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Condition]; dup {
			continue
		}
		seen[e.Condition] = struct{}{}
		e.Reasons = nonNil(slices.Clone(e.Reasons))
		e.Recommendations = nonNil(slices.Clone(e.Recommendations))
		out = append(out, e)
	}
	return &RiskReport{entries: out}
}

// Entries returns the assessments in report order
func (r *RiskReport) Entries() []RiskAssessment {
	if r == nil {
		return nil
	}
	return slices.Clone(r.entries)
}

// Len returns the number of assessments
func (r *RiskReport) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Get returns the assessment for condition
func (r *RiskReport) Get(condition ConditionName) (RiskAssessment, bool) {
	if r == nil {
		return RiskAssessment{}, false
	}
	for _, e := range r.entries {
		if e.Condition == condition {
			return e, true
		}
	}
	return RiskAssessment{}, false
}

// SortedBySeverity returns the assessments ordered High to Low, keeping report
// order among equal levels
func (r *RiskReport) SortedBySeverity() []RiskAssessment {
	out := r.Entries()
	slices.SortStableFunc(out, func(a, b RiskAssessment) int {
		return CompareRiskLevels(b.RiskLevel, a.RiskLevel)
	})
	return out
}

// assessmentWire is one disease_analysis entry. Extra scorer keys such as
// symptom_contributions are ignored.
type assessmentWire struct {
	RiskLevel       *string         `json:"risk_level"`
	Probability     json.RawMessage `json:"probability,omitempty"`
	Why             []string        `json:"why"`
	Recommendations []string        `json:"recommendations"`
}

// MarshalJSON encodes the report as {condition: {risk_level, probability, why, recommendations}}
// keeping report order
func (r *RiskReport) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for _, e := range r.Entries() {
		level := string(e.RiskLevel)
		wire := assessmentWire{
			RiskLevel:       &level,
			Why:             e.Reasons,
			Recommendations: e.Recommendations,
		}
		if e.Probability != nil {
			p, err := json.Marshal(e.Probability)
			if err != nil {
				return nil, err
			}
			wire.Probability = p
		}
		v, err := json.Marshal(wire)
		if err != nil {
			return nil, err
		}
		if err := w.field(string(e.Condition), v); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

// UnmarshalJSON decodes the wire shape written by MarshalJSON. Entries whose
// risk level is missing or unrecognised are dropped.
func (r *RiskReport) UnmarshalJSON(data []byte) error {
	scored, err := decodeScoredConditions(data)
	if err != nil {
		return err
	}
	*r = *ReportFromScored(scored)
	return nil
}

// ScoredCondition is one raw entry returned by the risk-scoring collaborator
type ScoredCondition struct {
	Condition       ConditionName
	RiskLevel       *string
	Probability     *Probability
	Reasons         []string
	Recommendations []string
}

// ScoringResult is the decoded response of the risk-scoring collaborator.
// Conditions keep the order they were sent in.
type ScoringResult struct {
	Success    bool
	Conditions []ScoredCondition
	Error      string
}

// UnmarshalJSON decodes {success, disease_analysis, error} preserving condition order
func (s *ScoringResult) UnmarshalJSON(data []byte) error {
	var out ScoringResult
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "success":
			return json.Unmarshal(raw, &out.Success)
		case "error":
			var msg *string
			if err := json.Unmarshal(raw, &msg); err != nil {
				return err
			}
			if msg != nil {
				out.Error = *msg
			}
		case "disease_analysis":
			conds, err := decodeScoredConditions(raw)
			if err != nil {
				return err
			}
			out.Conditions = conds
		}
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

func decodeScoredConditions(data []byte) ([]ScoredCondition, error) {
	var out []ScoredCondition
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var w assessmentWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return err
		}
		out = append(out, ScoredCondition{
			Condition:       ConditionName(key),
			RiskLevel:       w.RiskLevel,
			Probability:     parseProbability(w.Probability),
			Reasons:         w.Why,
			Recommendations: w.Recommendations,
		})
		return nil
	})
	return out, err
}

// ReportFromScored keeps scored conditions with a recognised risk level, in order
func ReportFromScored(scored []ScoredCondition) *RiskReport {
	entries := make([]RiskAssessment, 0, len(scored))
	for _, sc := range scored {
		if sc.RiskLevel == nil {
			continue
		}
		level, ok := ParseRiskLevel(*sc.RiskLevel)
		if !ok {
			continue
		}
		entries = append(entries, RiskAssessment{
			Condition:       sc.Condition,
			RiskLevel:       level,
			Probability:     sc.Probability,
			Reasons:         sc.Reasons,
			Recommendations: sc.Recommendations,
		})
	}
	return NewRiskReport(entries)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

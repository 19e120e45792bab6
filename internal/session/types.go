package session

import "encoding/json"

// EngagementLevel describes how deeply a user engaged during one session.
type EngagementLevel string

const (
	EngagementVeryLow  EngagementLevel = "very_low"
	EngagementLow      EngagementLevel = "low"
	EngagementMedium   EngagementLevel = "medium"
	EngagementHigh     EngagementLevel = "high"
	EngagementVeryHigh EngagementLevel = "very_high"
)

// IsHigh reports whether the level counts as high engagement.
func (e EngagementLevel) IsHigh() bool {
	return e == EngagementHigh || e == EngagementVeryHigh
}

// UrgencyLevel describes the time pressure signaled in a session.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)

// Score maps urgency to a numeric feature value.
func (u UrgencyLevel) Score() float64 {
	switch u {
	case UrgencyHigh:
		return 1.0
	case UrgencyMedium:
		return 0.5
	default:
		return 0.0
	}
}

// ExpertiseLevel describes the user's apparent domain expertise.
type ExpertiseLevel string

const (
	ExpertiseNovice       ExpertiseLevel = "novice"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseExpert       ExpertiseLevel = "expert"
)

// Score maps expertise to a numeric feature value.
func (e ExpertiseLevel) Score() float64 {
	switch e {
	case ExpertiseExpert:
		return 1.0
	case ExpertiseIntermediate:
		return 0.5
	default:
		return 0.0
	}
}

// Record is one behavioral touchpoint for a user.
//
// Timestamp is an ISO-8601 string and may be empty or malformed; the
// temporal feature block skips values it cannot parse.
type Record struct {
	Intent              string          `json:"intent"`
	Confidence          float64         `json:"confidence"`
	Timestamp           string          `json:"timestamp,omitempty"`
	Channel             string          `json:"channel"`
	EngagementLevel     EngagementLevel `json:"engagement_level"`
	HasBudgetConstraint bool            `json:"has_budget_constraint"`
	HasTimeConstraint   bool            `json:"has_time_constraint"`
	HasKnowledgeGap     bool            `json:"has_knowledge_gap"`
	UrgencyLevel        UrgencyLevel    `json:"urgency_level"`
	ExpertiseLevel      ExpertiseLevel  `json:"expertise_level"`

	// confidenceSet distinguishes an explicit zero from an absent value
	// when records are built through NewRecord.
	confidenceSet bool
}

// Defaults applied by Normalized for fields the ingestion layer left empty.
const (
	DefaultIntent     = "unknown"
	DefaultConfidence = 0.5
	DefaultChannel    = "direct"
)

// NewRecord builds a record with an explicitly captured confidence.
// Records built as plain literals get DefaultConfidence for a zero value.
func NewRecord(intent string, confidence float64) Record {
	return Record{Intent: intent, Confidence: confidence, confidenceSet: true}
}

// UnmarshalJSON records whether the confidence key was present, so an
// ingested `"confidence": 0` survives normalization instead of being
// coerced to the default.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		Confidence *float64 `json:"confidence"`
		*plain
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Confidence != nil {
		r.Confidence = *aux.Confidence
		r.confidenceSet = true
	}
	return nil
}

// Normalized returns a copy with every optional field resolved to its
// documented default. Feature extraction operates only on normalized
// records.
func (r Record) Normalized() Record {
	out := r
	if out.Intent == "" {
		out.Intent = DefaultIntent
	}
	if out.Confidence == 0 && !out.confidenceSet {
		out.Confidence = DefaultConfidence
	}
	if out.Channel == "" {
		out.Channel = DefaultChannel
	}
	if out.EngagementLevel == "" {
		out.EngagementLevel = EngagementMedium
	}
	if out.UrgencyLevel == "" {
		out.UrgencyLevel = UrgencyMedium
	}
	if out.ExpertiseLevel == "" {
		out.ExpertiseLevel = ExpertiseIntermediate
	}
	return out
}

// History is one user's chronological sequence of records. The engine does
// not re-sort it; ordering is the caller's responsibility. May be empty.
type History []Record

// Normalized returns a copy of the history with defaults resolved on every
// record.
func (h History) Normalized() History {
	if len(h) == 0 {
		return nil
	}
	out := make(History, len(h))
	for i, r := range h {
		out[i] = r.Normalized()
	}
	return out
}

// Intents returns the ordered intent labels of the history.
func (h History) Intents() []string {
	out := make([]string, len(h))
	for i, r := range h {
		out[i] = r.Intent
	}
	return out
}

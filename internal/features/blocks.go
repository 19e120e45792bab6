package features

import (
	"strings"
	"time"

	"github.com/fyrsmithlabs/archetype/internal/session"
)

// Stage vocabularies for intent classification. Matching is case-insensitive
// substring matching against the intent label; an intent whose name happens
// to contain a term counts for that stage (a known approximation).
var (
	researchTerms   = []string{"research", "browsing"}
	comparisonTerms = []string{"compare", "evaluate"}
	decisionTerms   = []string{"ready", "purchase"}
	dealTerms       = []string{"deal", "price"}
	giftTerms       = []string{"gift"}
)

func matchesAny(intent string, terms []string) bool {
	lowered := strings.ToLower(intent)
	for _, t := range terms {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}

// behavioralBlock extracts the 15 statistical session features.
// Records must already be normalized.
func behavioralBlock(h session.History) []float64 {
	count := float64(len(h))

	var confidenceSum float64
	uniqueIntents := make(map[string]struct{})
	uniqueChannels := make(map[string]struct{})
	var research, comparison, decision, highEngagement, dealSeeking, gift float64
	for _, r := range h {
		confidenceSum += r.Confidence
		uniqueIntents[r.Intent] = struct{}{}
		uniqueChannels[r.Channel] = struct{}{}
		if matchesAny(r.Intent, researchTerms) {
			research++
		}
		if matchesAny(r.Intent, comparisonTerms) {
			comparison++
		}
		if matchesAny(r.Intent, decisionTerms) {
			decision++
		}
		if r.EngagementLevel.IsHigh() {
			highEngagement++
		}
		if matchesAny(r.Intent, dealTerms) {
			dealSeeking++
		}
		if matchesAny(r.Intent, giftTerms) {
			gift++
		}
	}

	unique := float64(len(uniqueIntents))
	reachedDecision := 0.0
	if decision > 0 {
		reachedDecision = 1.0
	}

	return []float64{
		count,
		confidenceSum / count,
		unique / count,
		research / count,
		comparison / count,
		decision / count,
		highEngagement / count,
		float64(len(uniqueChannels)) / count,
		dealSeeking / count,
		gift / count,
		reachedDecision,
		(count - unique) / count,
		unique,
		research,
		comparison,
	}
}

// timestampLayouts accepted for session timestamps, tried in order. Covers
// zoned and naive ISO-8601 forms; naive values are taken in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, true
	}
	for _, layout := range timestampLayouts[1:] {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// temporalBlock extracts the 5 time-pattern features. Malformed timestamps
// are skipped; if none parse the block is all zeros.
func temporalBlock(h session.History, now time.Time) []float64 {
	var stamps []time.Time
	for _, r := range h {
		if ts, ok := parseTimestamp(r.Timestamp); ok {
			stamps = append(stamps, ts)
		}
	}
	if len(stamps) == 0 {
		return make([]float64, TemporalDim)
	}

	earliest, latest := stamps[0], stamps[0]
	var weekend float64
	for _, ts := range stamps {
		if ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
	}

	spanDays := latest.Sub(earliest).Hours() / 24
	// Recency measures from the last record's timestamp, not the maximum;
	// histories are chronological by caller contract.
	last := stamps[len(stamps)-1]
	recencyDays := now.Sub(last).Hours() / 24

	floor := spanDays
	if floor < 1 {
		floor = 1
	}

	return []float64{
		spanDays,
		recencyDays,
		weekend / float64(len(stamps)),
		float64(len(stamps)) / floor,
		float64(len(stamps)),
	}
}

// constraintBlock extracts the 5 constraint-profile features.
// Records must already be normalized.
func constraintBlock(h session.History) []float64 {
	count := float64(len(h))

	var budget, timeConstraint, knowledgeGap, urgency, expertise float64
	for _, r := range h {
		if r.HasBudgetConstraint {
			budget++
		}
		if r.HasTimeConstraint {
			timeConstraint++
		}
		if r.HasKnowledgeGap {
			knowledgeGap++
		}
		urgency += r.UrgencyLevel.Score()
		expertise += r.ExpertiseLevel.Score()
	}

	return []float64{
		budget / count,
		timeConstraint / count,
		knowledgeGap / count,
		urgency / count,
		expertise / count,
	}
}

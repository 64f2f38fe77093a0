package review

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
)

// Analysis is the parsed reply of the fairness model
type Analysis struct {
	Summary              string             `json:"summary"`
	Fairness             bool               `json:"fairness"`
	FairnessIssues       []any              `json:"fairness_issues"`
	SuggestedAdjustments map[string]any     `json:"suggested_adjustments"`
	AverageScores        map[string]float64 `json:"average_scores,omitempty"`
}

// ContributionAnalysis is a stored analysis run
type ContributionAnalysis struct {
	ID                   int64
	GroupID              int64
	AssignmentID         int64
	Summary              string
	Fairness             bool
	FairnessIssues       []any
	SuggestedAdjustments map[string]any
	AverageScores        map[string]float64
	HasOutliers          bool
	OutlierZids          []string
	RawResponse          string
	CreatedAt            time.Time
}

// ExtractJSON returns the text from the first '{' to the last '}'
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseAnalysis decodes the model reply. Prose around the object is tolerated.
// A reply with no object or invalid JSON fails with ANALYSIS_FAILED.
// Missing fields default to fairness=true, no issues and no adjustments.
func ParseAnalysis(reply string) (*Analysis, error) {
	block, ok := ExtractJSON(reply)
	if !ok {
		return nil, shared.ErrAnalysisFailed.WithMessage("Analysis reply did not contain a JSON object")
	}

	var raw struct {
		Summary              string             `json:"summary"`
		Fairness             *bool              `json:"fairness"`
		FairnessIssues       []any              `json:"fairness_issues"`
		SuggestedAdjustments map[string]any     `json:"suggested_adjustments"`
		AverageScores        map[string]float64 `json:"average_scores"`
	}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return nil, shared.ErrAnalysisFailed.WithMessage("Analysis reply was not valid JSON")
	}

	a := &Analysis{
		Summary:              raw.Summary,
		Fairness:             true,
		FairnessIssues:       raw.FairnessIssues,
		SuggestedAdjustments: raw.SuggestedAdjustments,
		AverageScores:        raw.AverageScores,
	}
	if raw.Fairness != nil {
		a.Fairness = *raw.Fairness
	}
	if a.FairnessIssues == nil {
		a.FairnessIssues = []any{}
	}
	if a.SuggestedAdjustments == nil {
		a.SuggestedAdjustments = map[string]any{}
	}
	return a, nil
}

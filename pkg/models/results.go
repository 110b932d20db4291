package models

import (
	"time"
)

// ScoreComponents holds the four sub-scores that make up a probability.
// Every field is clamped to [0.0, 1.0].
type ScoreComponents struct {
	Noise       float64 `json:"noise"`
	Edge        float64 `json:"edge"`
	Compression float64 `json:"compression"`
	Metadata    float64 `json:"metadata"`
}

// AnalysisResult contains the results of an authenticity analysis
type AnalysisResult struct {
	FileType         string                 `json:"fileType"`
	Filename         string                 `json:"filename"`
	Width            int                    `json:"width"`
	Height           int                    `json:"height"`
	Probability      float64                `json:"probability"` // 0.00-100.00, two decimals
	Risk             RiskLevel              `json:"risk"`
	Components       ScoreComponents        `json:"components"`
	Metadata         MetadataStatus         `json:"metadata"`
	Analyzer         string                 `json:"analyzer"`
	Details          map[string]interface{} `json:"details,omitempty"`
	Findings         []Finding              `json:"findings"`
	Recommendations  []string               `json:"recommendations"`
	AnalysisTime     time.Time              `json:"analysisTime"`
	AnalysisDuration time.Duration          `json:"analysisDuration"`
}

// Finding represents a specific signal that contributed to the probability
type Finding struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"` // 0.0-1.0
	Details     string  `json:"details"`
}

// AddFinding adds a finding to the analysis result
func (r *AnalysisResult) AddFinding(description string, confidence float64, details string) {
	r.Findings = append(r.Findings, Finding{
		Description: description,
		Confidence:  confidence,
		Details:     details,
	})
}

// AddRecommendation appends a recommendation unless it is already listed
func (r *AnalysisResult) AddRecommendation(rec string) {
	for _, existing := range r.Recommendations {
		if existing == rec {
			return
		}
	}
	r.Recommendations = append(r.Recommendations, rec)
}

// StrongestFinding returns the finding with the highest confidence
func (r *AnalysisResult) StrongestFinding() (Finding, bool) {
	if len(r.Findings) == 0 {
		return Finding{}, false
	}

	best := r.Findings[0]
	for _, f := range r.Findings {
		if f.Confidence > best.Confidence {
			best = f
		}
	}

	return best, true
}

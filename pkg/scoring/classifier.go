package scoring

import "AuthentiGo/pkg/models"

// Risk thresholds, exclusive
const (
	HighRiskAbove   = 70.0
	MediumRiskAbove = 40.0
)

// Classify maps a probability to a risk level, checking the highest band first
func Classify(probability float64) models.RiskLevel {
	switch {
	case probability > HighRiskAbove:
		return models.RiskHigh
	case probability > MediumRiskAbove:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

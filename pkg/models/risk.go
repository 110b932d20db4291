package models

import (
	"fmt"
	"strings"
)

// RiskLevel is the coarse ordinal classification of a probability.
// The zero value is RiskLow and the order is RiskLow < RiskMedium < RiskHigh.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// RiskLevels lists every level in ascending order
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(l))
	}
}

// MarshalText encodes the level as its label
func (l RiskLevel) MarshalText() ([]byte, error) {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return []byte(l.String()), nil
	default:
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
}

// UnmarshalText parses a label, case-insensitively
func (l *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// ParseRiskLevel converts a label such as "high" to a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return RiskLow, nil
	case "MEDIUM":
		return RiskMedium, nil
	case "HIGH":
		return RiskHigh, nil
	default:
		return RiskLow, fmt.Errorf("unknown risk level %q", s)
	}
}

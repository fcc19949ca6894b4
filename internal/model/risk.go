package model

// RiskFlag is one detected anomaly: a short label plus the explanation
// an investigator reads in the report. Flags keep detection order.
type RiskFlag struct {
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
}

// RiskFactor is one scored component of the weighted risk assessment.
type RiskFactor struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
	Max    int    `json:"max"`
}

// WeightedScore is the deeper-reporting risk score: four independently
// capped factors summed to a 0-100 scale. It is intentionally separate
// from the simple flag-count score and must not be reconciled with it.
type WeightedScore struct {
	Score   float64      `json:"score"`
	Factors []RiskFactor `json:"factors,omitempty"`
}

// Level bands the weighted score for display.
func (w WeightedScore) Level() string {
	switch {
	case w.Score < 20:
		return "LOW"
	case w.Score < 50:
		return "MODERATE"
	case w.Score < 75:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// Assessment is the full output of the risk scorer.
type Assessment struct {
	Flags       []RiskFlag    `json:"flags"`
	SimpleScore int           `json:"risk_score"`
	Weighted    WeightedScore `json:"weighted_score"`
}

// SimpleLevel bands the flag-count score for reports.
func (a Assessment) SimpleLevel() string {
	switch {
	case a.SimpleScore < 30:
		return "LOW"
	case a.SimpleScore < 70:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}

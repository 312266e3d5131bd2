package security

// SeverityRank returns a numeric rank for ordering severities.
// Critical=5, High=4, Medium=3, Low=2, Info=1. Unknown severities return 0,
// ranking below Info.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// SeverityWeight returns the numeric weight used for risk aggregation and
// impact scoring. All scoring in this package goes through this one table.
func SeverityWeight(s Severity) float64 {
	switch s {
	case SeverityCritical:
		return 10.0
	case SeverityHigh:
		return 7.0
	case SeverityMedium:
		return 5.0
	case SeverityLow:
		return 3.0
	case SeverityInfo:
		return 1.0
	default:
		return 0.0
	}
}

// SeverityAtLeast reports whether s ranks at or above min on the severity
// scale Info < Low < Medium < High < Critical.
func SeverityAtLeast(s, min Severity) bool {
	return SeverityRank(s) >= SeverityRank(min)
}

// MaxSeverity returns the higher-ranked of two severities.
func MaxSeverity(a, b Severity) Severity {
	if SeverityRank(a) >= SeverityRank(b) {
		return a
	}
	return b
}

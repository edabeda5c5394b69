package envelope

// ScoreToTier converts a completeness score (0.0-1.0) to a confidence tier.
//
// Tier mapping:
//   - 0.95+ -> high (snapshot or processed schema, no structural findings)
//   - 0.70-0.94 -> medium (auto-transformed expanded schema, or warnings)
//   - <0.70 -> low (structural errors: cycles, missing parents)
func ScoreToTier(score float64) ConfidenceTier {
	switch {
	case score >= 0.95:
		return TierHigh
	case score >= 0.70:
		return TierMedium
	default:
		return TierLow
	}
}

// TierFromContext determines the appropriate tier based on how the model
// was obtained and whether its report is clean.
func TierFromContext(fromSnapshot, reportClean bool) ConfidenceTier {
	if fromSnapshot && reportClean {
		return TierHigh
	}
	if reportClean {
		return TierMedium
	}
	return TierLow
}

package satisfaction

// statusThresholds are scanned descending; the first threshold the score
// meets wins. Lower bounds are inclusive.
var statusThresholds = []struct {
	status Status
	floor  float64
}{
	{StatusExceptional, 90},
	{StatusExcellent, 85},
	{StatusVeryGood, 80},
	{StatusGood, 75},
	{StatusSatisfactory, 70},
	{StatusNeedsAttention, 65},
	{StatusAtRisk, 60},
}

// Confidence level labels.
const (
	ConfidenceHigh     = "High Confidence"
	ConfidenceModerate = "Moderate Confidence"
	ConfidenceLow      = "Low Confidence"
)

// Classify maps a satisfaction score and a confidence score to a status tier
// and a confidence level. Pure and total: every input pair maps to exactly
// one status and one level.
func Classify(satisfactionScore, confidenceScore float64) (Status, string) {
	status := StatusCritical
	for _, t := range statusThresholds {
		if satisfactionScore >= t.floor {
			status = t.status
			break
		}
	}

	level := ConfidenceLow
	switch {
	case confidenceScore >= 90:
		level = ConfidenceHigh
	case confidenceScore >= 70:
		level = ConfidenceModerate
	}

	return status, level
}

package satisfaction

// Fare-per-km pricing band. Outside it the pricing insights fire.
const (
	farePerKMUpper = 20.0
	farePerKMLower = 8.0
)

// GenerateInsights applies the fixed rule set over the raw input and the
// satisfaction score. Rules are evaluated independently in a fixed order and
// appended when triggered; an empty result is valid. The fare-ratio rules are
// skipped entirely for zero distance rather than dividing by it.
func GenerateInsights(distanceKM, fareAmount, passengerRating, driverRating, satisfactionScore float64) []Insight {
	insights := []Insight{}

	if distanceKM > 0 {
		farePerKM := fareAmount / distanceKM
		if farePerKM > farePerKMUpper {
			insights = append(insights, newInsight("Fare pricing is above optimal range for the distance", PriorityHigh))
		} else if farePerKM < farePerKMLower {
			insights = append(insights, newInsight("Fare pricing is below optimal range for the distance", PriorityMedium))
		}
	}

	if driverRating < 4.5 {
		insights = append(insights, newInsight("Driver performance requires improvement", PriorityHigh))
	}
	if passengerRating < 4.5 {
		insights = append(insights, newInsight("Consider customer experience enhancement measures", PriorityMedium))
	}
	if distanceKM > 30 {
		insights = append(insights, newInsight("Long-distance trip: Consider comfort optimization", PriorityLow))
	}
	if satisfactionScore < 75 {
		insights = append(insights, newInsight("Implement immediate customer satisfaction improvement measures", PriorityCritical))
	}

	return insights
}

func newInsight(text string, priority Priority) Insight {
	impact := ImpactMedium
	if priority == PriorityCritical || priority == PriorityHigh {
		impact = ImpactHigh
	}
	return Insight{Text: text, Priority: priority, Impact: impact}
}

// PartitionInsights splits insights into immediate actions (Critical/High)
// and long-term improvements (Medium/Low), preserving order.
func PartitionInsights(insights []Insight) Recommendations {
	rec := Recommendations{
		ImmediateActions:     []Insight{},
		LongTermImprovements: []Insight{},
	}
	for _, in := range insights {
		if in.Priority == PriorityCritical || in.Priority == PriorityHigh {
			rec.ImmediateActions = append(rec.ImmediateActions, in)
		} else {
			rec.LongTermImprovements = append(rec.LongTermImprovements, in)
		}
	}
	return rec
}

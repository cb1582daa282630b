package satisfaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insightTexts(insights []Insight) []string {
	texts := make([]string, len(insights))
	for i, in := range insights {
		texts[i] = in.Text
	}
	return texts
}

func TestGenerateInsightsOverpricedTrip(t *testing.T) {
	// 10km at 250: 25 per km, above the band
	insights := GenerateInsights(10, 250, 4.8, 4.8, 85)

	texts := insightTexts(insights)
	assert.Contains(t, texts, "Fare pricing is above optimal range for the distance")
	assert.NotContains(t, texts, "Fare pricing is below optimal range for the distance")
}

func TestGenerateInsightsUnderpricedTrip(t *testing.T) {
	// 10km at 50: 5 per km, below the band
	insights := GenerateInsights(10, 50, 4.8, 4.8, 85)

	texts := insightTexts(insights)
	assert.Contains(t, texts, "Fare pricing is below optimal range for the distance")
	assert.NotContains(t, texts, "Fare pricing is above optimal range for the distance")
}

func TestGenerateInsightsZeroDistanceSkipsPricingRules(t *testing.T) {
	insights := GenerateInsights(0, 100, 4.8, 4.8, 85)

	texts := insightTexts(insights)
	assert.NotContains(t, texts, "Fare pricing is above optimal range for the distance")
	assert.NotContains(t, texts, "Fare pricing is below optimal range for the distance")
}

func TestGenerateInsightsRatingRules(t *testing.T) {
	insights := GenerateInsights(10, 150, 4.0, 4.2, 85)

	texts := insightTexts(insights)
	assert.Contains(t, texts, "Driver performance requires improvement")
	assert.Contains(t, texts, "Consider customer experience enhancement measures")
}

func TestGenerateInsightsLongTripAndLowScore(t *testing.T) {
	insights := GenerateInsights(35, 500, 3.5, 3.5, 60)

	texts := insightTexts(insights)
	assert.Contains(t, texts, "Long-distance trip: Consider comfort optimization")
	assert.Contains(t, texts, "Implement immediate customer satisfaction improvement measures")
}

func TestGenerateInsightsCleanTrip(t *testing.T) {
	// In-band pricing, strong ratings, short trip, high score: no insights
	insights := GenerateInsights(10, 150, 4.8, 4.9, 92)

	assert.Empty(t, insights)
}

func TestInsightImpactFollowsPriority(t *testing.T) {
	assert.Equal(t, ImpactHigh, newInsight("x", PriorityCritical).Impact)
	assert.Equal(t, ImpactHigh, newInsight("x", PriorityHigh).Impact)
	assert.Equal(t, ImpactMedium, newInsight("x", PriorityMedium).Impact)
	assert.Equal(t, ImpactMedium, newInsight("x", PriorityLow).Impact)
}

func TestPartitionInsights(t *testing.T) {
	insights := []Insight{
		newInsight("a", PriorityCritical),
		newInsight("b", PriorityMedium),
		newInsight("c", PriorityHigh),
		newInsight("d", PriorityLow),
	}

	rec := PartitionInsights(insights)

	require.Len(t, rec.ImmediateActions, 2)
	require.Len(t, rec.LongTermImprovements, 2)
	assert.Equal(t, "a", rec.ImmediateActions[0].Text)
	assert.Equal(t, "c", rec.ImmediateActions[1].Text)
	assert.Equal(t, "b", rec.LongTermImprovements[0].Text)
	assert.Equal(t, "d", rec.LongTermImprovements[1].Text)
}

func TestPartitionInsightsEmpty(t *testing.T) {
	rec := PartitionInsights(nil)

	assert.NotNil(t, rec.ImmediateActions)
	assert.NotNil(t, rec.LongTermImprovements)
	assert.Empty(t, rec.ImmediateActions)
	assert.Empty(t, rec.LongTermImprovements)
}

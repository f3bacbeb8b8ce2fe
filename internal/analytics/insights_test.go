package analytics

import (
	"testing"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categories(insights []Insight) []string {
	out := make([]string, len(insights))
	for i, insight := range insights {
		out[i] = insight.Category
	}
	return out
}

func TestGenerateInsightsDefaultWhenNothingTriggers(t *testing.T) {
	stats := statsWith(map[string]int{events.TypeTabSwitch: 3}, map[string]int{"example.com": 3})

	insights := GenerateInsights(stats)

	require.Len(t, insights, 1)
	assert.Equal(t, "getting_started", insights[0].Category)
	assert.Contains(t, insights[0].Message, "building your profile")
}

func TestGenerateInsightsThresholdsAreExclusive(t *testing.T) {
	// Exactly at threshold does not trigger; one past it does.
	atThreshold := statsWith(map[string]int{events.TypeTabSwitch: 100}, nil)
	assert.Equal(t, []string{"getting_started"}, categories(GenerateInsights(atThreshold)))

	pastThreshold := statsWith(map[string]int{events.TypeTabSwitch: 101}, nil)
	assert.Equal(t, []string{"multitasking"}, categories(GenerateInsights(pastThreshold)))
}

func TestGenerateInsightsFocusSessionsInclusiveThreshold(t *testing.T) {
	stats := statsWith(map[string]int{events.TypeFocusSession: 3}, nil)
	assert.Equal(t, []string{"focus"}, categories(GenerateInsights(stats)))
}

func TestGenerateInsightsFixedOrder(t *testing.T) {
	stats := statsWith(
		map[string]int{
			events.TypeTabSwitch:    150,
			events.TypeFocusSession: 4,
		},
		map[string]int{
			"na1.salesforce.com": 25,
			"www.linkedin.com":   15,
			"claude.ai":          10,
			"chatgpt.com":        8,
		},
	)

	insights := GenerateInsights(stats)

	assert.Equal(t, []string{"multitasking", "crm", "networking", "ai_tools", "focus"}, categories(insights))
}

func TestGenerateInsightsAIToolsSummedAcrossDomains(t *testing.T) {
	stats := statsWith(nil, map[string]int{
		"chat.openai.com": 6,
		"claude.ai":       5,
		"perplexity.ai":   5,
	})

	insights := GenerateInsights(stats)

	require.Len(t, insights, 1)
	assert.Equal(t, "ai_tools", insights[0].Category)
}

func TestGenerateInsightsIsDeterministic(t *testing.T) {
	stats := statsWith(
		map[string]int{events.TypeTabSwitch: 150},
		map[string]int{"www.linkedin.com": 20},
	)

	first := GenerateInsights(stats)
	second := GenerateInsights(stats)

	assert.Equal(t, first, second)
}

package analytics

import (
	"fmt"
	"strings"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
)

// Insight is one qualitative observation rendered on the dashboard.
type Insight struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Domains treated as AI tooling for the combined AI-usage rule.
var aiToolDomains = []string{
	"chat.openai.com",
	"chatgpt.com",
	"claude.ai",
	"gemini.google.com",
	"perplexity.ai",
}

// Rule thresholds. The rule list is fixed and ordered; insights are
// emitted in this order so the dashboard stays stable between refreshes.
const (
	heavySwitchingThreshold = 100
	crmActivityThreshold    = 20
	networkingThreshold     = 10
	aiUsageThreshold        = 15
	focusSessionThreshold   = 3
)

// GenerateInsights evaluates the fixed rule list against the canonical
// statistics. It is pure: same statistics in, same insights out. When no
// rule triggers it returns the single default entry.
func GenerateInsights(stats *CanonicalStatistics) []Insight {
	var insights []Insight

	tabSwitches := stats.EventTypes[events.TypeTabSwitch]
	if tabSwitches > heavySwitchingThreshold {
		insights = append(insights, Insight{
			Category: "multitasking",
			Message:  fmt.Sprintf("You switched tabs %d times — consider grouping related work to reduce context switching.", tabSwitches),
		})
	}

	crmEvents := crmDomainCount(stats)
	if crmEvents > crmActivityThreshold {
		insights = append(insights, Insight{
			Category: "crm",
			Message:  fmt.Sprintf("Heavy Salesforce usage today (%d interactions) — a large share of your day went to CRM work.", crmEvents),
		})
	}

	linkedIn := stats.Domains[linkedInDomain]
	if linkedIn > networkingThreshold {
		insights = append(insights, Insight{
			Category: "networking",
			Message:  fmt.Sprintf("Active on LinkedIn (%d visits) — strong professional networking activity.", linkedIn),
		})
	}

	aiEvents := aiToolCount(stats)
	if aiEvents > aiUsageThreshold {
		insights = append(insights, Insight{
			Category: "ai_tools",
			Message:  fmt.Sprintf("You leaned on AI tools %d times — they are becoming part of your core workflow.", aiEvents),
		})
	}

	focusSessions := stats.EventTypes[events.TypeFocusSession]
	if focusSessions >= focusSessionThreshold {
		insights = append(insights, Insight{
			Category: "focus",
			Message:  fmt.Sprintf("%d deep focus sessions today — great sustained concentration.", focusSessions),
		})
	}

	if len(insights) == 0 {
		insights = append(insights, Insight{
			Category: "getting_started",
			Message:  "Keep browsing — your digital twin is still building your profile.",
		})
	}

	return insights
}

func crmDomainCount(stats *CanonicalStatistics) int {
	count := 0
	for domain, n := range stats.Domains {
		if strings.Contains(domain, "salesforce") || strings.Contains(domain, "force.com") {
			count += n
		}
	}
	return count
}

func aiToolCount(stats *CanonicalStatistics) int {
	count := 0
	for _, domain := range aiToolDomains {
		count += stats.Domains[domain]
	}
	return count
}

package analytics

import (
	"math"
	"strings"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
)

// Domains that never count toward the unique-domain tally.
var uniqueDomainExclusions = map[string]struct{}{
	"":           {},
	"unknown":    {},
	"extensions": {},
	"newtab":     {},
}

// Fixed category keyword sets. These mirror what the dashboard surfaces;
// changing them changes historical scores, so treat additions as additive.
var emailDomains = []string{
	"mail.google.com",
	"outlook.live.com",
	"outlook.office.com",
	"outlook.office365.com",
	"mail.yahoo.com",
}

var workDomainKeywords = []string{
	"salesforce",
	"force.com",
	"outlook",
	"office",
	"docs.google",
	"github",
	"atlassian",
	"jira",
	"confluence",
	"slack",
	"notion",
	"zoom",
}

const (
	linkedInDomain      = "www.linkedin.com"
	linkedInWeightCap   = 50
	tabSwitchPenaltyCap = 20.0
)

// DerivedMetrics holds every score computed from one canonical
// statistics object. All of it is pure arithmetic over counts.
type DerivedMetrics struct {
	UniqueDomains        int    `json:"unique_domains"`
	ResearchEvents       int    `json:"research_events"`
	EmailEvents          int    `json:"email_events"`
	WorkEvents           int    `json:"work_events"`
	FocusScore           int    `json:"focus_score"`
	MultitaskScore       int    `json:"multitask_score"`
	MultitaskLevel       string `json:"multitask_level"`
	WorkFocusPercent     int    `json:"work_focus_percent"`
	WorkFocusLevel       string `json:"work_focus_level"`
	ResearchDepthPercent int    `json:"research_depth_percent"`
	ResearchDepthLevel   string `json:"research_depth_level"`
}

// ComputeDerived evaluates every derived metric for the given statistics.
func ComputeDerived(stats *CanonicalStatistics) DerivedMetrics {
	m := DerivedMetrics{
		UniqueDomains:  UniqueDomainCount(stats.Domains),
		ResearchEvents: ResearchEventCount(stats),
		EmailEvents:    EmailEventCount(stats),
		WorkEvents:     WorkEventCount(stats),
		FocusScore:     FocusScore(stats),
	}
	m.MultitaskScore, m.MultitaskLevel = MultitaskScore(stats)
	m.WorkFocusPercent, m.WorkFocusLevel = WorkFocusPercent(stats, m.WorkEvents)
	m.ResearchDepthPercent, m.ResearchDepthLevel = ResearchDepthPercent(m.ResearchEvents)
	return m
}

// UniqueDomainCount counts distinct domains, excluding the sentinels.
func UniqueDomainCount(domains map[string]int) int {
	count := 0
	for domain := range domains {
		if _, excluded := uniqueDomainExclusions[domain]; !excluded {
			count++
		}
	}
	return count
}

// ResearchEventCount sums research-flavored activity: the two research
// event types plus LinkedIn browsing, the latter capped so that a long
// LinkedIn session cannot dominate the category alone.
func ResearchEventCount(stats *CanonicalStatistics) int {
	count := stats.EventTypes[events.TypeLinkedInAction] + stats.EventTypes[events.TypeResearchActivity]
	count += min(stats.Domains[linkedInDomain], linkedInWeightCap)
	return count
}

// EmailEventCount sums activity on the fixed email domain list.
func EmailEventCount(stats *CanonicalStatistics) int {
	count := 0
	for _, domain := range emailDomains {
		count += stats.Domains[domain]
	}
	return count
}

// WorkEventCount sums activity on domains matching any work keyword.
func WorkEventCount(stats *CanonicalStatistics) int {
	count := 0
	for domain, n := range stats.Domains {
		for _, keyword := range workDomainKeywords {
			if strings.Contains(domain, keyword) {
				count += n
				break
			}
		}
	}
	return count
}

// FocusScore starts at 50, rewards focus sessions, penalizes rapid
// switching and tab churn, and clamps to [0, 100].
func FocusScore(stats *CanonicalStatistics) int {
	score := 50.0
	score += 10.0 * float64(stats.EventTypes[events.TypeFocusSession])
	score -= 2.0 * float64(stats.EventTypes[events.TypeRapidSwitching])
	score -= math.Min(0.1*float64(stats.EventTypes[events.TypeTabSwitch]), tabSwitchPenaltyCap)

	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// MultitaskScore rates context switching on a 0-100 scale.
func MultitaskScore(stats *CanonicalStatistics) (int, string) {
	tabSwitches := stats.EventTypes[events.TypeTabSwitch]
	rapid := stats.EventTypes[events.TypeRapidSwitching]

	raw := math.Min(float64(tabSwitches+2*rapid)/50.0, 1.0) * 100.0
	score := int(math.Round(raw))

	switch {
	case score >= 70:
		return score, "High"
	case score >= 40:
		return score, "Moderate"
	default:
		return score, "Low"
	}
}

// WorkFocusPercent is the share of all events on work-related domains.
func WorkFocusPercent(stats *CanonicalStatistics, workEvents int) (int, string) {
	percent := 0
	if stats.TotalEvents > 0 {
		percent = int(math.Round(math.Min(float64(workEvents)/float64(stats.TotalEvents)*100.0, 100.0)))
	}

	switch {
	case percent >= 60:
		return percent, "High"
	case percent >= 30:
		return percent, "Moderate"
	default:
		return percent, "Low"
	}
}

// ResearchDepthPercent maps the research event count onto a 0-100 scale.
func ResearchDepthPercent(researchEvents int) (int, string) {
	percent := min(researchEvents, 100)

	switch {
	case percent >= 50:
		return percent, "Deep"
	case percent >= 20:
		return percent, "Moderate"
	default:
		return percent, "Light"
	}
}

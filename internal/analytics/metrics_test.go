package analytics

import (
	"testing"

	"github.com/crow2678/Digital-Twin-sub001/internal/domain/events"
	"github.com/stretchr/testify/assert"
)

func statsWith(types map[string]int, domains map[string]int) *CanonicalStatistics {
	total := 0
	for _, n := range types {
		total += n
	}
	return &CanonicalStatistics{
		UserID:      "user-1",
		TotalEvents: total,
		EventTypes:  types,
		Domains:     domains,
	}
}

func TestUniqueDomainCountExcludesSentinels(t *testing.T) {
	domains := map[string]int{
		"unknown":     5,
		"example.com": 3,
		"newtab":      1,
		"extensions":  2,
		"":            4,
	}

	assert.Equal(t, 1, UniqueDomainCount(domains))
}

func TestFocusScore(t *testing.T) {
	tests := []struct {
		name  string
		types map[string]int
		want  int
	}{
		{"baseline with no signals", map[string]int{}, 50},
		{"focus sessions raise, tab churn drags", map[string]int{
			events.TypeTabSwitch:    150,
			events.TypeFocusSession: 2,
		}, 55},
		{"rapid switching penalized", map[string]int{
			events.TypeRapidSwitching: 10,
		}, 30},
		{"clamped at 100", map[string]int{
			events.TypeFocusSession: 20,
		}, 100},
		{"clamped at 0", map[string]int{
			events.TypeRapidSwitching: 100,
		}, 0},
		{"tab penalty capped at 20", map[string]int{
			events.TypeTabSwitch: 10000,
		}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := statsWith(tt.types, nil)
			assert.Equal(t, tt.want, FocusScore(stats))
		})
	}
}

func TestMultitaskScore(t *testing.T) {
	tests := []struct {
		name      string
		types     map[string]int
		wantScore int
		wantLevel string
	}{
		{"no activity", map[string]int{}, 0, "Low"},
		{"moderate switching", map[string]int{events.TypeTabSwitch: 25}, 50, "Moderate"},
		{"rapid switching weighted double", map[string]int{events.TypeRapidSwitching: 20}, 80, "High"},
		{"capped at 100", map[string]int{events.TypeTabSwitch: 500}, 100, "High"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := MultitaskScore(statsWith(tt.types, nil))
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestResearchEventCountCapsLinkedInWeight(t *testing.T) {
	stats := statsWith(
		map[string]int{events.TypeResearchActivity: 5, events.TypeLinkedInAction: 3},
		map[string]int{"www.linkedin.com": 200},
	)

	// 5 + 3 + min(200, 50)
	assert.Equal(t, 58, ResearchEventCount(stats))
}

func TestWorkFocusPercent(t *testing.T) {
	stats := statsWith(
		map[string]int{events.TypeTabSwitch: 10},
		map[string]int{"mycompany.lightning.force.com": 7, "example.com": 3},
	)

	work := WorkEventCount(stats)
	assert.Equal(t, 7, work)

	percent, level := WorkFocusPercent(stats, work)
	assert.Equal(t, 70, percent)
	assert.Equal(t, "High", level)
}

func TestWorkFocusPercentEmptyStats(t *testing.T) {
	percent, level := WorkFocusPercent(statsWith(map[string]int{}, nil), 0)
	assert.Equal(t, 0, percent)
	assert.Equal(t, "Low", level)
}

func TestResearchDepthLevels(t *testing.T) {
	tests := []struct {
		events    int
		wantLevel string
	}{
		{0, "Light"},
		{19, "Light"},
		{20, "Moderate"},
		{50, "Deep"},
		{300, "Deep"},
	}

	for _, tt := range tests {
		percent, level := ResearchDepthPercent(tt.events)
		assert.Equal(t, tt.wantLevel, level)
		assert.LessOrEqual(t, percent, 100)
	}
}

func TestEmailEventCount(t *testing.T) {
	stats := statsWith(nil, map[string]int{
		"mail.google.com":    4,
		"outlook.office.com": 2,
		"example.com":        9,
	})

	assert.Equal(t, 6, EmailEventCount(stats))
}

func TestComputeDerivedIsPure(t *testing.T) {
	stats := statsWith(
		map[string]int{events.TypeTabSwitch: 30, events.TypeFocusSession: 1},
		map[string]int{"example.com": 10, "github.com": 20},
	)

	first := ComputeDerived(stats)
	second := ComputeDerived(stats)

	assert.Equal(t, first, second)
}

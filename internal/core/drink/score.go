package drink

import (
	"math"
	"strings"
)

const (
	baseScore         = 100.0
	kcalBaseline      = 60.0
	kcalPenaltyRate   = 0.1
	carbPenaltyRate   = 1.0
	hardLimitPenalty  = 200.0
	sugarPenalty      = 50.0
	sugarFreeCarbsCap = 3.0
	attributePenalty  = 40.0
	dietPenalty       = 200.0
	venueBonus        = 5.0
)

// Score 分數越高越適合；超出限制只扣分，不在此淘汰
func Score(p Profile, prefs Preferences) float64 {
	kcal := float64(p.Kcal)
	score := baseScore

	score -= kcalPenaltyRate * math.Max(0, kcal-kcalBaseline)
	score -= carbPenaltyRate * p.CarbsG

	if kcal > prefs.MaxKcal {
		score -= hardLimitPenalty
	}
	if p.CarbsG > prefs.MaxCarbs {
		score -= hardLimitPenalty
	}
	if prefs.SugarFreeMixers && p.CarbsG > sugarFreeCarbsCap {
		score -= sugarPenalty
	}
	if !prefs.AllowCaffeine && p.Caffeine {
		score -= attributePenalty
	}
	if !prefs.AllowCarbonation && p.Carbonation {
		score -= attributePenalty
	}
	if prefs.GlutenFreeOnly && !p.GlutenFree {
		score -= dietPenalty
	}
	if prefs.KetoOnly && !p.Keto {
		score -= dietPenalty
	}
	if matchesVenue(p, prefs.PrefCategory) {
		score += venueBonus
	}
	return score
}

func matchesVenue(p Profile, venue string) bool {
	venue = strings.ToLower(strings.TrimSpace(venue))
	if venue == "" {
		return false
	}
	for _, t := range p.Tags {
		if strings.ToLower(t) == venue {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Name), venue)
}

// Package xp holds the experience-point arithmetic for projects and
// focus sessions. The two formulas are intentionally separate: project
// XP rewards matrix position, session XP rewards chosen difficulty.
package xp

import (
	"eugenestrat/internal/models"
)

const (
	// ProjectBaseMultiplier scales cost*benefit into project XP.
	ProjectBaseMultiplier = 10
	// BossBattleMultiplier doubles the completion reward.
	BossBattleMultiplier = 2

	// SessionBase is the flat part of a completed session's XP.
	SessionBase = 10
	// InterruptedSessionXP is the flat award for an interrupted session,
	// independent of duration and willpower.
	InterruptedSessionXP = 10
)

// willpowerMultipliers reward harder chosen willpower with more XP.
// A difficulty bonus, not a penalty: low willpower pays double.
var willpowerMultipliers = map[string]float64{
	models.WillpowerHigh:   1.0,
	models.WillpowerMedium: 1.5,
	models.WillpowerLow:    2.0,
}

// difficultyQuotes is keyed by willpower, then duration in minutes.
var difficultyQuotes = map[string]map[int]string{
	models.WillpowerHigh: {
		60:  "I'm Too Young to Die",
		90:  "Bring It On",
		120: "Crunch Time",
	},
	models.WillpowerMedium: {
		60:  "Hey, Not Too Rough",
		90:  "Come Get Some",
		120: "Balls of Steel ⚪⚪",
	},
	models.WillpowerLow: {
		60:  "Damn I'm Good",
		90:  "Nightmare Deadline",
		120: "Hail to the King 👑",
	},
}

// ProjectXP computes the completion reward for a project.
func ProjectXP(cost, benefit int, isBossBattle bool) int {
	base := cost * benefit * ProjectBaseMultiplier
	if isBossBattle {
		return base * BossBattleMultiplier
	}
	return base
}

// TotalXP sums ProjectXP over the given projects using each project's
// own boss-battle flag.
func TotalXP(projects []models.Project) int {
	total := 0
	for _, p := range projects {
		total += ProjectXP(p.Cost, p.Benefit, p.IsBossBattle)
	}
	return total
}

// SessionXP computes the reward for a completed focus session:
// floor((10 + duration*0.5) * willpower multiplier).
func SessionXP(durationMinutes int, willpower string) int {
	mult, ok := willpowerMultipliers[willpower]
	if !ok {
		mult = 1.0
	}
	return int((float64(SessionBase) + float64(durationMinutes)*0.5) * mult)
}

// DifficultyQuote returns the flavor text for a willpower/duration pair,
// or an empty string for unknown combinations.
func DifficultyQuote(willpower string, durationMinutes int) string {
	return difficultyQuotes[willpower][durationMinutes]
}

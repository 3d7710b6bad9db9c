package grading

import "fmt"

type tierStyle struct {
	Label string
	Color string
	Bar   string
}

// tierStyles are consumed verbatim by the web client.
var tierStyles = map[Tier]tierStyle{
	TierBricked:      {Label: "🧱 已變磚", Color: "text-red-500", Bar: "bg-red-600"},
	TierPerfect:      {Label: "👑 完美畢業", Color: "text-orange-500", Bar: "bg-orange-600 shadow-[0_0_20px_orange]"},
	TierGraduate:     {Label: "🔥 畢業等級", Color: "text-yellow-400", Bar: "bg-yellow-500"},
	TierNearGraduate: {Label: "✨ 準畢業", Color: "text-blue-400", Bar: "bg-blue-600"},
	TierTrash:        {Label: "🗑️ 垃圾", Color: "text-gray-400", Bar: "bg-gray-600"},
}

// Percent converts a tally into a 0..100 score, rounding half up.
func Percent(t Tally) int {
	if t.TotalWeight <= 0 {
		return 0
	}
	return (t.EarnedScore*200 + t.TotalWeight) / (2 * t.TotalWeight)
}

// Classify picks the tier for a final score. Bricked wins over every other tier.
func Classify(score, brickCount int) Tier {
	switch {
	case brickCount > 0 && score < 60:
		return TierBricked
	case score == 100:
		return TierPerfect
	case score >= 80:
		return TierGraduate
	case score >= 60:
		return TierNearGraduate
	default:
		return TierTrash
	}
}

func (s *defaultScorer) settle(t Tally, itemPower int, log []MatchLogEntry) GearEvaluationResult {
	score := Percent(t)
	if itemPower < s.cfg.PowerCapMin && score > s.cfg.PowerCapCeiling {
		score = s.cfg.PowerCapCeiling
		log = append(log, MatchLogEntry{
			Severity: SeverityInfo,
			Category: CategoryPower,
			Text:     fmt.Sprintf("非%d，上限%d%%", s.cfg.PowerCapMin, s.cfg.PowerCapCeiling),
		})
	}
	tier := Classify(score, t.BrickCount)
	st := tierStyles[tier]
	if log == nil {
		log = []MatchLogEntry{}
	}
	return GearEvaluationResult{
		Score:     score,
		Tier:      tier,
		TierLabel: st.Label,
		TierColor: st.Color,
		BarColor:  st.Bar,
		Log:       log,
		IsBrick:   tier == TierBricked,
		Tally:     t,
	}
}

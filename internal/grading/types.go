package grading

import (
	"strconv"
	"strings"
)

// AffixRequirement is one desired affix on the target build.
// An empty Name marks an unused slot.
type AffixRequirement struct {
	Name           string   `json:"name" yaml:"name"`
	IsGreaterAffix bool     `json:"isGA" yaml:"isGA"`
	Min            *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max            *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// AffixObservation is what was actually read off the dropped item.
// A nil Value means the affix has not been entered or rolled.
type AffixObservation struct {
	Name           string   `json:"name" yaml:"name"`
	IsGreaterAffix bool     `json:"isGA" yaml:"isGA"`
	Value          *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

type (
	AspectRequirement = AffixRequirement
	AspectObservation = AffixObservation
)

// Target is the desired half of a request.
type Target struct {
	Base   []AffixRequirement `json:"target_base" yaml:"target_base"`
	Temper []AffixRequirement `json:"target_temper" yaml:"target_temper"`
	Aspect AspectRequirement  `json:"target_aspect" yaml:"target_aspect"`
}

// Drop is the observed half of a request.
type Drop struct {
	Base      []AffixObservation `json:"drop_base" yaml:"drop_base"`
	Temper    []AffixObservation `json:"drop_temper" yaml:"drop_temper"`
	Aspect    AspectObservation  `json:"drop_aspect" yaml:"drop_aspect"`
	ItemPower int                `json:"drop_item_power" yaml:"drop_item_power"`
}

// GearEvaluationRequest pairs a target with a drop. The JSON layout is flat so
// the wire format matches what clients already send to /calculate.
type GearEvaluationRequest struct {
	Target `yaml:",inline"`
	Drop   `yaml:",inline"`
}

type Severity string

const (
	SeverityPass Severity = "pass"
	SeverityFail Severity = "fail"
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
)

func (s Severity) icon() string {
	switch s {
	case SeverityPass:
		return "✅"
	case SeverityFail:
		return "❌"
	case SeverityWarn:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

type Category string

const (
	CategoryBase   Category = "base"
	CategoryTemper Category = "temper"
	CategoryAspect Category = "aspect"
	CategoryPower  Category = "power"
)

// Label is the display name shown to players.
func (c Category) Label() string {
	switch c {
	case CategoryBase:
		return "基底"
	case CategoryTemper:
		return "回火"
	case CategoryAspect:
		return "特效"
	case CategoryPower:
		return "強度"
	default:
		return string(c)
	}
}

// Issue is a reason a matched affix fell outside the target tolerance.
type Issue string

const (
	IssueMissingGreaterAffix Issue = "missing_ga"
	IssueValueTooLow         Issue = "value_too_low"
	IssueValueTooHigh        Issue = "value_too_high"
)

func (i Issue) Label() string {
	switch i {
	case IssueMissingGreaterAffix:
		return "缺GA"
	case IssueValueTooLow:
		return "數值低"
	case IssueValueTooHigh:
		return "數值超標"
	default:
		return string(i)
	}
}

// MatchLogEntry is one verdict in the evaluation log.
type MatchLogEntry struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Affix    string   `json:"affix,omitempty"`
	Text     string   `json:"text"`
	Issues   []Issue  `json:"issues,omitempty"`
}

// String renders the entry as a single display line, e.g. "✅ [基底] 智力 +150: 達標".
func (e MatchLogEntry) String() string {
	var b strings.Builder
	b.WriteString(e.Severity.icon())
	b.WriteString(" [")
	b.WriteString(e.Category.Label())
	b.WriteString("] ")
	b.WriteString(e.Text)
	return b.String()
}

// Tier is the qualitative grade bucket.
type Tier string

const (
	TierBricked      Tier = "bricked"
	TierPerfect      Tier = "perfect"
	TierGraduate     Tier = "graduate-level"
	TierNearGraduate Tier = "near-graduate"
	TierTrash        Tier = "trash"
)

// Tally is the running accumulator of a matching pass.
type Tally struct {
	TotalWeight int `json:"totalWeight"`
	EarnedScore int `json:"earnedScore"`
	BrickCount  int `json:"brickCount"`
}

func (t Tally) add(o Tally) Tally {
	return Tally{
		TotalWeight: t.TotalWeight + o.TotalWeight,
		EarnedScore: t.EarnedScore + o.EarnedScore,
		BrickCount:  t.BrickCount + o.BrickCount,
	}
}

// GearEvaluationResult is the outcome of one evaluation.
type GearEvaluationResult struct {
	Score     int             `json:"score"`
	Tier      Tier            `json:"tier"`
	TierLabel string          `json:"tierLabel"`
	TierColor string          `json:"tierColor"`
	BarColor  string          `json:"barColor"`
	Log       []MatchLogEntry `json:"log"`
	IsBrick   bool            `json:"isBrick"`
	Tally     Tally           `json:"tally"`
}

// Lines renders the log one entry per line, in emission order.
func (r GearEvaluationResult) Lines() []string {
	out := make([]string, 0, len(r.Log))
	for _, e := range r.Log {
		out = append(out, e.String())
	}
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

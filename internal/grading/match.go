package grading

import "strings"

// matchBase pairs every named base requirement with the first unconsumed
// drop affix of the same name. A miss is charged but earns nothing.
func matchBase(targets []AffixRequirement, drops []AffixObservation) (Tally, []MatchLogEntry) {
	var (
		t   Tally
		log []MatchLogEntry
	)
	used := make([]bool, len(drops))
	for _, want := range targets {
		if want.Name == "" {
			continue
		}
		idx := findUnused(drops, used, want.Name)
		if idx < 0 {
			t.TotalWeight += Weight
			log = append(log, MatchLogEntry{
				Severity: SeverityFail,
				Category: CategoryBase,
				Affix:    want.Name,
				Text:     want.Name + ": 詞綴不符",
			})
			continue
		}
		used[idx] = true
		pt, entry := evaluatePair(want, drops[idx], CategoryBase, false)
		t = t.add(pt)
		log = append(log, entry)
	}
	return t, log
}

// matchTemper is like matchBase, but an unmatched requirement first tries
// to claim an empty temper slot and is bricked only when none is left.
// Neither of those two outcomes is charged.
func matchTemper(targets []AffixRequirement, drops []AffixObservation) (Tally, []MatchLogEntry) {
	var (
		t   Tally
		log []MatchLogEntry
	)
	used := make([]bool, len(drops))
	for _, want := range targets {
		if want.Name == "" {
			continue
		}
		if idx := findUnused(drops, used, want.Name); idx >= 0 {
			used[idx] = true
			pt, entry := evaluatePair(want, drops[idx], CategoryTemper, true)
			t = t.add(pt)
			log = append(log, entry)
			continue
		}
		if idx := findUnused(drops, used, ""); idx >= 0 {
			used[idx] = true
			log = append(log, MatchLogEntry{
				Severity: SeverityInfo,
				Category: CategoryTemper,
				Affix:    want.Name,
				Text:     want.Name + ": 尚未回火",
			})
			continue
		}
		t.BrickCount++
		log = append(log, MatchLogEntry{
			Severity: SeverityFail,
			Category: CategoryTemper,
			Affix:    want.Name,
			Text:     want.Name + ": 變磚",
		})
	}
	return t, log
}

// matchAspect evaluates the single aspect slot. The drop aspect is taken as
// is; only the target name decides whether the slot counts.
func matchAspect(want AspectRequirement, got AspectObservation) (Tally, []MatchLogEntry) {
	if want.Name == "" {
		return Tally{}, nil
	}
	t, entry := evaluatePair(want, got, CategoryAspect, true)
	return t, []MatchLogEntry{entry}
}

func findUnused(drops []AffixObservation, used []bool, name string) int {
	for i, d := range drops {
		if !used[i] && d.Name == name {
			return i
		}
	}
	return -1
}

// evaluatePair checks one matched observation against its requirement.
// Optional slots without a value are reported but not charged.
func evaluatePair(want AffixRequirement, got AffixObservation, cat Category, optional bool) (Tally, MatchLogEntry) {
	entry := MatchLogEntry{Category: cat, Affix: want.Name}
	if got.Value == nil {
		if optional {
			entry.Severity = SeverityInfo
			entry.Text = want.Name + ": 尚未輸入/未回火 (不計分)"
			return Tally{}, entry
		}
		entry.Severity = SeverityFail
		entry.Text = want.Name + ": 未輸入數值"
		return Tally{TotalWeight: Weight}, entry
	}

	t := Tally{TotalWeight: Weight}
	v := *got.Value
	var issues []Issue
	if cat == CategoryBase && want.IsGreaterAffix && !got.IsGreaterAffix {
		issues = append(issues, IssueMissingGreaterAffix)
	}
	if want.Min != nil && v < *want.Min {
		issues = append(issues, IssueValueTooLow)
	}
	if want.Max != nil && v > *want.Max {
		issues = append(issues, IssueValueTooHigh)
	}

	if len(issues) == 0 {
		t.EarnedScore += Weight
		entry.Severity = SeverityPass
		entry.Text = want.Name + " +" + formatValue(v) + ": 達標"
		if got.IsGreaterAffix {
			entry.Text += " (GA)"
		}
		return t, entry
	}

	labels := make([]string, 0, len(issues))
	for _, is := range issues {
		labels = append(labels, is.Label())
	}
	entry.Severity = SeverityWarn
	entry.Issues = issues
	entry.Text = want.Name + ": " + strings.Join(labels, ", ")
	return t, entry
}

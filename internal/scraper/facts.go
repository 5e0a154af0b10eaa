package scraper

import "strings"

// SplitFacts breaks a block of free text into facts on the literal ". "
// separator. Empty fragments are dropped and every fact ends in exactly one
// period, including fragments that ended in an abbreviation.
func SplitFacts(text string) []string {
	facts := []string{}
	for _, fragment := range strings.Split(text, ". ") {
		fragment = strings.TrimRight(strings.TrimSpace(fragment), ".")
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		facts = append(facts, fragment+".")
	}
	return facts
}

// factAccumulator keeps the first limit facts in encounter order.
type factAccumulator struct {
	limit int
	facts []string
}

func newFactAccumulator(limit int) *factAccumulator {
	return &factAccumulator{limit: limit}
}

func (a *factAccumulator) add(text string) {
	for _, fact := range SplitFacts(text) {
		if a.full() {
			return
		}
		a.facts = append(a.facts, fact)
	}
}

func (a *factAccumulator) full() bool {
	return len(a.facts) >= a.limit
}

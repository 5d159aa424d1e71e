package pricing

import (
	"fmt"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

// SelectionRule checks how many options were chosen from one modifier.
// It returns an empty string when the count is acceptable.
type SelectionRule interface {
	Check(m *models.Modifier, selected int) string
}

type requiredRule struct{}

func (requiredRule) Check(m *models.Modifier, selected int) string {
	if selected < 1 {
		return fmt.Sprintf("modifier %q requires at least one option", m.Name)
	}
	return ""
}

type maxSelectRule struct {
	max int
}

func (r maxSelectRule) Check(m *models.Modifier, selected int) string {
	if selected > r.max {
		return fmt.Sprintf("modifier %q allows at most %d option(s), got %d", m.Name, r.max, selected)
	}
	return ""
}

type noRepeatRule struct {
	counts map[string]int
}

func (r noRepeatRule) Check(m *models.Modifier, _ int) string {
	for _, o := range m.Options {
		if r.counts[o.ID] > 1 {
			return fmt.Sprintf("option %q of modifier %q selected more than once", o.Name, m.Name)
		}
	}
	return ""
}

// RulesFor returns the rules that apply to modifier m
func RulesFor(m *models.Modifier) []SelectionRule {
	var rules []SelectionRule
	if m.IsRequired {
		rules = append(rules, requiredRule{})
	}
	if m.MaxSelect != nil {
		rules = append(rules, maxSelectRule{max: *m.MaxSelect})
	}
	return rules
}

// ValidateSelections enforces required and max-select constraints of every
// live modifier of the resolved line. field prefixes reported field names.
func ValidateSelections(line *ResolvedLine, field string) error {
	perModifier := make(map[string]int)
	perOption := make(map[string]int)
	for _, sel := range line.Options {
		perModifier[sel.Modifier.ID]++
		perOption[sel.Option.ID]++
	}

	verr := &apperr.ValidationError{}
	for i := range line.Item.Modifiers {
		m := &line.Item.Modifiers[i]
		if m.Lifecycle.IsDeleted() {
			continue
		}
		rules := append(RulesFor(m), noRepeatRule{counts: perOption})
		for _, rule := range rules {
			if msg := rule.Check(m, perModifier[m.ID]); msg != "" {
				verr.Add(field+".modifierIds", msg)
			}
		}
	}
	return verr.OrNil()
}

package importer

import (
	"strings"

	"github.com/alexanderramin/parada/internal/domain"
)

// Classification is the phase assigned to a record and how it was reached.
type Classification struct {
	Phase domain.PhaseID
	// Matched is false when no rule fired and the fallback phase was used.
	Matched bool
	Rule    string
}

// Classifier assigns every record to exactly one phase.
type Classifier interface {
	Classify(rec domain.ScheduleRecord) Classification
}

type foldedRule struct {
	pattern string
	phase   domain.PhaseID
}

// RuleClassifier matches structural code prefixes first and then folded name
// keywords, in rule order.
type RuleClassifier struct {
	codes    []Rule
	keywords []foldedRule
	fallback domain.PhaseID
}

// NewRuleClassifier compiles rs into a classifier.
func NewRuleClassifier(rs RuleSet) *RuleClassifier {
	c := &RuleClassifier{codes: rs.CodeRules, fallback: rs.Fallback}
	for _, r := range rs.KeywordRules {
		c.keywords = append(c.keywords, foldedRule{pattern: Fold(r.Pattern), phase: r.Phase})
	}
	if c.fallback == "" {
		c.fallback = domain.PhaseShutdown
	}
	return c
}

func (c *RuleClassifier) Classify(rec domain.ScheduleRecord) Classification {
	code := strings.TrimSpace(rec.Code)
	if code != "" {
		for _, r := range c.codes {
			if hasCodePrefix(code, r.Pattern) {
				return Classification{Phase: r.Phase, Matched: true, Rule: "code " + r.Pattern}
			}
		}
	}
	name := Fold(rec.DisplayName())
	for _, r := range c.keywords {
		if strings.Contains(name, r.pattern) {
			return Classification{Phase: r.phase, Matched: true, Rule: "keyword " + r.pattern}
		}
	}
	return Classification{Phase: c.fallback}
}

// FixedClassifier places every record in one phase. Exports that describe a
// single phase, like the preparation schedule, use it.
type FixedClassifier struct {
	Phase domain.PhaseID
}

func (c FixedClassifier) Classify(domain.ScheduleRecord) Classification {
	return Classification{Phase: c.Phase, Matched: true, Rule: "source"}
}

// hasCodePrefix matches whole dot segments, so "1.10.2" does not start with "1.1".
func hasCodePrefix(code, prefix string) bool {
	return code == prefix || strings.HasPrefix(code, prefix+".")
}

package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules_OverridesOnlyGivenTables(t *testing.T) {
	doc := `
keyword_rules:
  - pattern: limpeza
    phase: maintenance
fallback: startup
`
	rs, err := LoadRules(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []Rule{{Pattern: "limpeza", Phase: domain.PhaseMaintenance}}, rs.KeywordRules)
	assert.Equal(t, domain.PhaseStartup, rs.Fallback)
	assert.Equal(t, DefaultRules().CodeRules, rs.CodeRules)

	got := NewRuleClassifier(rs).Classify(domain.ScheduleRecord{Name: "Limpeza do silo"})
	assert.Equal(t, domain.PhaseMaintenance, got.Phase)
	assert.True(t, got.Matched)
}

func TestLoadRules_EmptyDocumentKeepsDefaults(t *testing.T) {
	rs, err := LoadRules(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rs)
}

func TestLoadRules_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		errMsg string
	}{
		{"unknown phase", "code_rules:\n  - pattern: \"2.1\"\n    phase: commissioning\n", `code_rules[0].phase: invalid value "commissioning"`},
		{"bad code", "code_rules:\n  - pattern: abc\n    phase: startup\n", "is not a structural code"},
		{"unknown field", "keywords: []\n", "decoding rules"},
		{"empty keyword", "keyword_rules:\n  - phase: startup\n", "keyword_rules[0].pattern is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRules(strings.NewReader(tt.doc))
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestRuleSet_YAMLIsLoadable(t *testing.T) {
	data, err := DefaultRules().YAML()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rs, err := LoadRulesFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rs)
}

func TestLoadRulesFile_Missing(t *testing.T) {
	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading rules file")
}

package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/alexanderramin/parada/internal/domain"
	"gopkg.in/yaml.v3"
)

// Rule maps a pattern to a phase. For code rules the pattern is a structural
// code prefix; for keyword rules it is a word matched against the folded name.
type Rule struct {
	Pattern string         `yaml:"pattern"`
	Phase   domain.PhaseID `yaml:"phase"`
}

// TypeRule maps a name keyword to an equipment type.
type TypeRule struct {
	Pattern string           `yaml:"pattern"`
	Type    domain.AssetType `yaml:"type"`
}

// CategoryRule maps a name keyword to an activity category label.
type CategoryRule struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
}

// RuleSet holds every keyword table the pipeline consults. Order matters:
// the first matching code or keyword rule wins.
type RuleSet struct {
	CodeRules    []Rule         `yaml:"code_rules"`
	KeywordRules []Rule         `yaml:"keyword_rules"`
	Fallback     domain.PhaseID `yaml:"fallback"`

	AssetTypes      []TypeRule     `yaml:"asset_types"`
	Categories      []CategoryRule `yaml:"categories"`
	DefaultCategory string         `yaml:"default_category"`

	CompletedKeywords []string `yaml:"completed_keywords"`
	CriticalKeywords  []string `yaml:"critical_keywords"`
	MilestoneKeywords []string `yaml:"milestone_keywords"`
	MetadataKeywords  []string `yaml:"metadata_keywords"`
}

// DefaultRules returns the rule tables used when no rules file is configured.
func DefaultRules() RuleSet {
	return RuleSet{
		CodeRules: []Rule{
			{"1.1", domain.PhasePreparation},
			{"1.2", domain.PhasePreparation},
			{"1.3", domain.PhasePreparation},
			{"1.4", domain.PhasePreparation},
			{"1.5", domain.PhasePreparation},
			{"1.6", domain.PhasePreparation},
			{"1.7", domain.PhaseShutdown},
			{"1.8", domain.PhaseMaintenance},
			{"1.9", domain.PhaseStartup},
		},
		KeywordRules: []Rule{
			{"preparação", domain.PhasePreparation},
			{"mobilização", domain.PhasePreparation},
			{"planejamento", domain.PhasePreparation},
			{"parada", domain.PhaseShutdown},
			{"procedimento", domain.PhaseShutdown},
			{"manutenção", domain.PhaseMaintenance},
			{"partida", domain.PhaseStartup},
			{"teste", domain.PhaseStartup},
		},
		Fallback: domain.PhaseShutdown,
		AssetTypes: []TypeRule{
			{"caldeira", domain.AssetBoiler},
			{"boiler", domain.AssetBoiler},
			{"turbina", domain.AssetTurbine},
			{"turbine", domain.AssetTurbine},
			{"gerador", domain.AssetGenerator},
			{"generator", domain.AssetGenerator},
			{"bomba", domain.AssetPump},
			{"pump", domain.AssetPump},
			{"ventilador", domain.AssetFan},
			{"exaustor", domain.AssetFan},
			{"fan", domain.AssetFan},
			{"chaminé", domain.AssetChimney},
			{"chimney", domain.AssetChimney},
			{"transformador", domain.AssetTransformer},
			{"transformer", domain.AssetTransformer},
			{"forno", domain.AssetKiln},
			{"grelha", domain.AssetKiln},
			{"moinho", domain.AssetMill},
			{"transportador", domain.AssetConveyor},
			{"correia", domain.AssetConveyor},
			{"precipitador", domain.AssetPrecipitator},
			{"eletrofiltro", domain.AssetPrecipitator},
			{"secador", domain.AssetDryer},
			{"peneira", domain.AssetScreen},
			{"silo", domain.AssetSilo},
			{"torre de resfriamento", domain.AssetCoolingTower},
			{"espessador", domain.AssetThickener},
			{"compressor", domain.AssetCompressor},
			{"válvula", domain.AssetValve},
		},
		Categories: []CategoryRule{
			{"mobilização", "Mobilização"},
			{"canteiro", "Canteiros"},
			{"logística", "Logística"},
			{"refratário", "Refratário"},
			{"elétrica", "Elétrica"},
			{"mecânica", "Mecânica"},
			{"preparação", "Preparação"},
			{"ventilador", "Ventiladores"},
			{"bogiflex", "Bogiflex"},
		},
		DefaultCategory:   "Outros",
		CompletedKeywords: []string{"concluída", "finalizada"},
		CriticalKeywords:  []string{"crítica", "bloqueio", "blackout", "início", "conclusão", "mobilização"},
		MilestoneKeywords: []string{"marco", "milestone", "blackout"},
		MetadataKeywords:  []string{"cronograma", "pfus3", "parada"},
	}
}

var codePattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Validate checks that every rule names a known phase and a usable pattern.
func (rs RuleSet) Validate() []error {
	var errs []error
	for i, r := range rs.CodeRules {
		if !codePattern.MatchString(r.Pattern) {
			errs = append(errs, fmt.Errorf("code_rules[%d].pattern: %q is not a structural code", i, r.Pattern))
		}
		if !domain.ValidPhaseIDs[string(r.Phase)] {
			errs = append(errs, fmt.Errorf("code_rules[%d].phase: invalid value %q", i, r.Phase))
		}
	}
	for i, r := range rs.KeywordRules {
		if r.Pattern == "" {
			errs = append(errs, fmt.Errorf("keyword_rules[%d].pattern is required", i))
		}
		if !domain.ValidPhaseIDs[string(r.Phase)] {
			errs = append(errs, fmt.Errorf("keyword_rules[%d].phase: invalid value %q", i, r.Phase))
		}
	}
	if !domain.ValidPhaseIDs[string(rs.Fallback)] {
		errs = append(errs, fmt.Errorf("fallback: invalid value %q", rs.Fallback))
	}
	for i, r := range rs.AssetTypes {
		if r.Pattern == "" || r.Type == "" {
			errs = append(errs, fmt.Errorf("asset_types[%d]: pattern and type are required", i))
		}
	}
	for i, r := range rs.Categories {
		if r.Pattern == "" || r.Category == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: pattern and category are required", i))
		}
	}
	return errs
}

// LoadRules decodes a YAML rule set. Tables omitted from the document keep
// their default values.
func LoadRules(r io.Reader) (RuleSet, error) {
	rs := DefaultRules()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil && !errors.Is(err, io.EOF) {
		return RuleSet{}, fmt.Errorf("decoding rules: %w", err)
	}
	if errs := rs.Validate(); len(errs) > 0 {
		msg := fmt.Sprintf("invalid rules (%d errors):", len(errs))
		for _, e := range errs {
			msg += "\n  - " + e.Error()
		}
		return RuleSet{}, fmt.Errorf("%s", msg)
	}
	return rs, nil
}

// LoadRulesFile reads a YAML rule set from path.
func LoadRulesFile(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules file: %w", err)
	}
	return LoadRules(bytes.NewReader(data))
}

// YAML encodes the rule set in the format LoadRules reads.
func (rs RuleSet) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rs); err != nil {
		return nil, fmt.Errorf("encoding rules: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding rules: %w", err)
	}
	return buf.Bytes(), nil
}

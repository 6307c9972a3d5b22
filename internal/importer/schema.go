package importer

import (
	"fmt"

	"github.com/alexanderramin/parada/internal/domain"
)

// HierarchyMode selects how parent/child relations are inferred.
type HierarchyMode string

const (
	HierarchyByCode   HierarchyMode = "code"
	HierarchyByIndent HierarchyMode = "indent"
)

// Columns names the header cells that feed each record field. An empty name
// means the export does not carry that field.
type Columns struct {
	ID              string
	UniqueID        string
	Level           string
	Code            string
	Name            string
	Percent         string
	PhysicalPercent string
	BaselinePercent string
	Duration        string
	Start           string
	Finish          string
	BaselineStart   string
	BaselineFinish  string
	ActualStart     string
	ActualFinish    string
	Predecessors    string
	Responsible     string
	Area            string
}

// Schema describes one export format.
type Schema struct {
	Format    domain.SourceFormat
	Delimiter rune
	Columns   Columns
	// Required lists the logical fields that must be non-empty on every row.
	Required  []string
	Hierarchy HierarchyMode
	// DayFirst selects dd/mm/yy dates instead of mm/dd/yy.
	DayFirst bool
	// RequirePhaseRows makes an export without any level-2 row invalid.
	RequirePhaseRows bool
	DefaultTitle     string
}

// PFUS3Schema is the semicolon-separated operational schedule export.
var PFUS3Schema = Schema{
	Format:    domain.FormatPFUS3,
	Delimiter: ';',
	Columns: Columns{
		ID:              "Id",
		UniqueID:        "Id_exclusiva",
		Level:           "Nível_da_estrutura_de_tópicos",
		Code:            "EDT",
		Name:            "Nome",
		Percent:         "Porcentagem_Prev_Real",
		BaselinePercent: "Porcentagem_Prev_LB",
		Duration:        "Duração",
		Start:           "Início",
		Finish:          "Término",
		BaselineStart:   "Início_da_Linha_de_Base",
		BaselineFinish:  "Término_da_linha_de_base",
		Predecessors:    "Predecessoras",
		Responsible:     "Responsável_da_Tarefa",
		Area:            "Área",
	},
	Required:         []string{"id", "name", "code", "level"},
	Hierarchy:        HierarchyByCode,
	DayFirst:         true,
	RequirePhaseRows: true,
	DefaultTitle:     "Cronograma Operacional PFUS3",
}

// PreparationSchema is the comma-separated preparation schedule export.
var PreparationSchema = Schema{
	Format:    domain.FormatPreparation,
	Delimiter: ',',
	Columns: Columns{
		ID:              "ID",
		Name:            "Nome da tarefa",
		Percent:         "% Complete",
		PhysicalPercent: "Physical % Complete",
		BaselinePercent: "% Previsto Replanejamento",
		Duration:        "Duration",
		Start:           "Start",
		Finish:          "Finish",
		ActualStart:     "Actual Start",
		ActualFinish:    "Actual Finish",
		Predecessors:    "Predecessors",
		BaselineStart:   "Baseline Start",
		BaselineFinish:  "Baseline Finish",
		Responsible:     "Resource Names",
	},
	Required:     []string{"id", "name"},
	Hierarchy:    HierarchyByIndent,
	DefaultTitle: "Cronograma de Preparação PFUS3",
}

// SchemaFor returns the schema registered for format.
func SchemaFor(format domain.SourceFormat) (Schema, error) {
	switch format {
	case domain.FormatPFUS3:
		return PFUS3Schema, nil
	case domain.FormatPreparation:
		return PreparationSchema, nil
	default:
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// column returns the header name for a logical field.
func (s Schema) column(field string) string {
	c := s.Columns
	switch field {
	case "id":
		return c.ID
	case "unique_id":
		return c.UniqueID
	case "level":
		return c.Level
	case "code":
		return c.Code
	case "name":
		return c.Name
	case "percent":
		return c.Percent
	case "physical_percent":
		return c.PhysicalPercent
	case "baseline_percent":
		return c.BaselinePercent
	case "duration":
		return c.Duration
	case "start":
		return c.Start
	case "finish":
		return c.Finish
	case "baseline_start":
		return c.BaselineStart
	case "baseline_finish":
		return c.BaselineFinish
	case "actual_start":
		return c.ActualStart
	case "actual_finish":
		return c.ActualFinish
	case "predecessors":
		return c.Predecessors
	case "responsible":
		return c.Responsible
	case "area":
		return c.Area
	default:
		return ""
	}
}

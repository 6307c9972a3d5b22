package testutil

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/google/uuid"
)

// ScheduleRow is one line of a test export. Fields left empty are written as
// empty cells.
type ScheduleRow struct {
	ID             string
	Level          string
	Code           string
	Name           string
	Percent        string
	Physical       string
	Duration       string
	Start          string
	Finish         string
	BaselineFinish string
	Predecessors   string
	Area           string
	Responsible    string
}

// Row options
type RowOption func(*ScheduleRow)

func WithPercent(p string) RowOption {
	return func(r *ScheduleRow) {
		r.Percent = p
	}
}

func WithPhysical(p string) RowOption {
	return func(r *ScheduleRow) {
		r.Physical = p
	}
}

func WithDuration(d string) RowOption {
	return func(r *ScheduleRow) {
		r.Duration = d
	}
}

func WithDates(start, finish string) RowOption {
	return func(r *ScheduleRow) {
		r.Start = start
		r.Finish = finish
	}
}

func WithBaselineFinish(d string) RowOption {
	return func(r *ScheduleRow) {
		r.BaselineFinish = d
	}
}

func WithPredecessors(p string) RowOption {
	return func(r *ScheduleRow) {
		r.Predecessors = p
	}
}

func WithArea(a string) RowOption {
	return func(r *ScheduleRow) {
		r.Area = a
	}
}

func WithResponsible(name string) RowOption {
	return func(r *ScheduleRow) {
		r.Responsible = name
	}
}

// PFUS3Row builds a row of the operational export.
func PFUS3Row(id, level, code, name string, opts ...RowOption) ScheduleRow {
	r := ScheduleRow{ID: id, Level: level, Code: code, Name: name}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// PrepRow builds a row of the preparation export. Indentation goes in name.
func PrepRow(id, name string, opts ...RowOption) ScheduleRow {
	r := ScheduleRow{ID: id, Name: name}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// PFUS3Header is the header line of the operational export.
var PFUS3Header = []string{
	"Id", "Nível_da_estrutura_de_tópicos", "EDT", "Nome", "Porcentagem_Prev_Real",
	"Duração", "Início", "Término", "Término_da_linha_de_base", "Predecessoras",
	"Área", "Responsável_da_Tarefa",
}

// PreparationHeader is the header line of the preparation export.
var PreparationHeader = []string{
	"ID", "Nome da tarefa", "% Complete", "Physical % Complete", "Duration",
	"Start", "Finish", "Predecessors", "Baseline Finish", "Resource Names",
}

// PFUS3CSV renders rows as a semicolon-separated operational export.
func PFUS3CSV(rows ...ScheduleRow) string {
	records := [][]string{PFUS3Header}
	for _, r := range rows {
		records = append(records, []string{
			r.ID, r.Level, r.Code, r.Name, r.Percent,
			r.Duration, r.Start, r.Finish, r.BaselineFinish, r.Predecessors,
			r.Area, r.Responsible,
		})
	}
	return writeCSV(';', records)
}

// PreparationCSV renders rows as a comma-separated preparation export.
func PreparationCSV(rows ...ScheduleRow) string {
	records := [][]string{PreparationHeader}
	for _, r := range rows {
		records = append(records, []string{
			r.ID, r.Name, r.Percent, r.Physical, r.Duration,
			r.Start, r.Finish, r.Predecessors, r.BaselineFinish, r.Responsible,
		})
	}
	return writeCSV(',', records)
}

func writeCSV(delim rune, records [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delim
	if err := w.WriteAll(records); err != nil {
		panic(err)
	}
	return buf.String()
}

// Schedule options
type ScheduleOption func(*domain.Schedule)

func WithTitle(title string) ScheduleOption {
	return func(s *domain.Schedule) {
		s.Metadata.Title = title
	}
}

func WithGeneratedAt(t time.Time) ScheduleOption {
	return func(s *domain.Schedule) {
		s.GeneratedAt = t
	}
}

// WithPhaseCounts sets the counts of one phase and derives its status.
func WithPhaseCounts(id domain.PhaseID, total, completed int) ScheduleOption {
	return func(s *domain.Schedule) {
		p := s.Phase(id)
		p.Total = total
		p.Completed = completed
		if total > 0 {
			p.Progress = completed * 100 / total
		}
		p.Status = domain.PhaseStatusFor(completed, total)
	}
}

func WithAsset(id domain.PhaseID, a domain.Asset) ScheduleOption {
	return func(s *domain.Schedule) {
		p := s.Phase(id)
		p.Assets = append(p.Assets, a)
	}
}

// NewTestSchedule returns a schedule with the four empty phases.
func NewTestSchedule(format domain.SourceFormat, opts ...ScheduleOption) *domain.Schedule {
	s := &domain.Schedule{
		Format:      format,
		ContentHash: uuid.New().String(),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Metadata:    domain.Metadata{Title: "Test schedule"},
	}
	for _, id := range domain.PhaseOrder {
		s.Phases = append(s.Phases, domain.NewPhase(id))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SamplePFUS3 is a small operational export touching every phase, with one
// unmatched row and one milestone.
func SamplePFUS3() string {
	return PFUS3CSV(
		PFUS3Row("1", "1", "1", "Cronograma Operacional PFUS3", WithPercent("42"), WithDates("15/08/25", "30/08/25")),
		PFUS3Row("2", "2", "1.4", "Preparação"),
		PFUS3Row("3", "3", "1.4.1", "Mobilização de equipes", WithPercent("100")),
		PFUS3Row("4", "2", "1.7", "Parada", WithPercent("100")),
		PFUS3Row("5", "3", "1.7.1", "Forno rotativo", WithPercent("50")),
		PFUS3Row("6", "4", "1.7.1.1", "Resfriar forno", WithPercent("100"), WithDates("15/08/25", "16/08/25")),
		PFUS3Row("7", "4", "1.7.1.2", "Blackout da subestação", WithDuration("0 hrs"),
			WithPredecessors("3;5"), WithDates("16/08/25", "16/08/25")),
		PFUS3Row("8", "2", "1.8", "Manutenção"),
		PFUS3Row("9", "3", "1.8.1", "Caldeira Principal", WithPercent("50"), WithArea("Utilidades")),
		PFUS3Row("10", "4", "1.8.1.1", "Inspeção visual", WithPercent("100"), WithArea("Utilidades")),
		PFUS3Row("11", "2", "1.9", "Partida"),
		PFUS3Row("12", "3", "1.9.1", "Aquecimento do forno", WithDates("28/08/25", "30/08/25")),
		PFUS3Row("13", "4", "2.3", "Almoxarifado"),
	)
}

// SamplePreparation is a preparation export with two work fronts and a
// predecessor network whose critical path is 2 -> 3 -> 6.
func SamplePreparation() string {
	return PreparationCSV(
		PrepRow("0", "Cronograma Preparação PFUS3", WithPercent("35%"), WithDates("6/2/2025", "8/14/2025")),
		PrepRow("1", "    Mobilização", WithPercent("50%")),
		PrepRow("2", "        Montar canteiro", WithPercent("100%"), WithDuration("3 days"),
			WithDates("6/2/2025", "6/5/2025")),
		PrepRow("3", "        Contratar guindaste", WithPercent("0%"), WithDuration("10 days"),
			WithPredecessors("2"), WithDates("6/5/2025", "6/19/2025")),
		PrepRow("4", "    Refratário", WithPercent("0%")),
		PrepRow("5", "        Demolir revestimento", WithDuration("5 days"), WithPredecessors("2"),
			WithDates("6/5/2025", "6/12/2025")),
		PrepRow("6", "        Teste de partida", WithDuration("0 days"), WithPredecessors("3;5"),
			WithDates("6/19/2025", "6/19/2025")),
	)
}

package importer

import (
	"strings"
	"testing"

	"github.com/alexanderramin/parada/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePFUS3(t *testing.T, rows ...testutil.ScheduleRow) *Table {
	t.Helper()
	tbl, err := Parse(testutil.PFUS3CSV(rows...), ';', DefaultColumnTolerance)
	require.NoError(t, err)
	return tbl
}

func validPFUS3Rows() []testutil.ScheduleRow {
	return []testutil.ScheduleRow{
		testutil.PFUS3Row("1", "1", "1", "Cronograma PFUS3"),
		testutil.PFUS3Row("2", "2", "1.7", "Parada"),
		testutil.PFUS3Row("3", "3", "1.7.1", "Forno", testutil.WithPercent("50")),
		testutil.PFUS3Row("4", "2", "1.8", "Manutenção"),
		testutil.PFUS3Row("5", "2", "1.9", "Partida"),
		testutil.PFUS3Row("6", "4", "1.7.1.1", "Resfriar forno", testutil.WithPercent("100")),
	}
}

func TestValidate_ValidExport(t *testing.T) {
	records, rep := Validate(parsePFUS3(t, validPFUS3Rows()...), PFUS3Schema)
	require.True(t, rep.Valid, rep.Render())
	assert.Empty(t, rep.Errors)
	assert.Len(t, records, 6)
	assert.Equal(t, Stats{TotalRows: 6, ValidRows: 6, Phases: 3, Assets: 1, SubActivities: 1}, rep.Stats)
	assert.Equal(t, 2, records[1].Level)
	assert.InDelta(t, 50, records[2].Percent, 1e-9)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rows []testutil.ScheduleRow)
		errMsg string
	}{
		{"missing name", func(rows []testutil.ScheduleRow) { rows[2].Name = "" }, `missing required field "Nome"`},
		{"missing code", func(rows []testutil.ScheduleRow) { rows[2].Code = "" }, `missing required field "EDT"`},
		{"missing id", func(rows []testutil.ScheduleRow) { rows[1].ID = "" }, `missing required field "Id"`},
		{"missing level", func(rows []testutil.ScheduleRow) { rows[3].Level = "" }, `missing required field "Nível_da_estrutura_de_tópicos"`},
		{"level not a number", func(rows []testutil.ScheduleRow) { rows[3].Level = "dois" }, "expected an integer"},
		{"level out of range", func(rows []testutil.ScheduleRow) { rows[3].Level = "12" }, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := validPFUS3Rows()
			tt.mutate(rows)
			_, rep := Validate(parsePFUS3(t, rows...), PFUS3Schema)
			assert.False(t, rep.Valid)
			assert.Equal(t, 1, rep.Stats.InvalidRows)
			require.NotEmpty(t, rep.Errors)
			assert.True(t, contains(rep.Errors, tt.errMsg), "errors %v should mention %q", rep.Errors, tt.errMsg)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(rows []testutil.ScheduleRow)
		warnMsg string
	}{
		{"bad percent", func(rows []testutil.ScheduleRow) { rows[2].Percent = "metade" }, "invalid percentage"},
		{"percent above range", func(rows []testutil.ScheduleRow) { rows[2].Percent = "120" }, "outside 0-100"},
		{"bad date", func(rows []testutil.ScheduleRow) { rows[2].Start = "ontem" }, "invalid date"},
		{"non-standard code", func(rows []testutil.ScheduleRow) { rows[5].Code = "1.7.1-A" }, "non-standard structural code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := validPFUS3Rows()
			tt.mutate(rows)
			_, rep := Validate(parsePFUS3(t, rows...), PFUS3Schema)
			assert.True(t, rep.Valid, rep.Render())
			assert.True(t, contains(rep.Warnings, tt.warnMsg), "warnings %v should mention %q", rep.Warnings, tt.warnMsg)
		})
	}
}

func TestValidate_ClampsPercentages(t *testing.T) {
	rows := validPFUS3Rows()
	rows[2].Percent = "120"
	records, _ := Validate(parsePFUS3(t, rows...), PFUS3Schema)
	assert.InDelta(t, 100, records[2].Percent, 1e-9)
}

func TestValidate_CommaDecimalHasNoWarning(t *testing.T) {
	rows := validPFUS3Rows()
	rows[2].Percent = "100,0"
	records, rep := Validate(parsePFUS3(t, rows...), PFUS3Schema)
	assert.InDelta(t, 100, records[2].Percent, 1e-9)
	assert.False(t, contains(rep.Warnings, "row 4"), "unexpected warnings %v", rep.Warnings)
}

func TestValidate_NoPhaseRowsIsError(t *testing.T) {
	_, rep := Validate(parsePFUS3(t,
		testutil.PFUS3Row("1", "3", "1.7.1", "Forno"),
		testutil.PFUS3Row("2", "4", "1.7.1.1", "Resfriar"),
	), PFUS3Schema)
	assert.False(t, rep.Valid)
	assert.Contains(t, rep.Errors, "no level-2 phase rows found")
	assert.Contains(t, rep.Warnings, "no maintenance rows (code 1.8) found")
	assert.Contains(t, rep.Warnings, "no startup rows (code 1.9) found")
}

func TestValidate_MissingRequiredColumn(t *testing.T) {
	text := "Id;Nível_da_estrutura_de_tópicos;Nome\n1;2;Parada\n"
	tbl, err := Parse(text, ';', DefaultColumnTolerance)
	require.NoError(t, err)

	records, rep := Validate(tbl, PFUS3Schema)
	assert.False(t, rep.Valid)
	assert.Empty(t, records)
	assert.Contains(t, rep.Errors, `missing required column "EDT"`)
	assert.Equal(t, 1, rep.Stats.InvalidRows)
}

func TestValidate_PreparationLevelsFromIndentation(t *testing.T) {
	tbl, err := Parse(testutil.PreparationCSV(
		testutil.PrepRow("0", "Cronograma Preparação PFUS3"),
		testutil.PrepRow("1", "    Mobilização"),
		testutil.PrepRow("2", "        Montar canteiro", testutil.WithPercent("100%")),
	), ',', DefaultColumnTolerance)
	require.NoError(t, err)

	records, rep := Validate(tbl, PreparationSchema)
	require.True(t, rep.Valid, rep.Render())
	require.Len(t, records, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{records[0].Level, records[1].Level, records[2].Level})
	assert.Equal(t, "Montar canteiro", records[2].DisplayName())
}

func TestReport_Render(t *testing.T) {
	rows := validPFUS3Rows()
	rows[2].Percent = "metade"
	_, rep := Validate(parsePFUS3(t, rows...), PFUS3Schema)
	out := rep.Render()
	assert.Contains(t, out, "Validation: VALID")
	assert.Contains(t, out, "Rows: 6 total, 6 valid, 0 invalid")
	assert.Contains(t, out, "Warnings (1):")
}

func contains(items []string, substr string) bool {
	for _, it := range items {
		if strings.Contains(it, substr) {
			return true
		}
	}
	return false
}

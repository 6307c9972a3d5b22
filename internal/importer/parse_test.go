package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SkipsBlankLines(t *testing.T) {
	text := "Id;Nome\n\n1;Parada\n   \n;;\n2;Partida\n"
	tbl, err := Parse(text, ';', DefaultColumnTolerance)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Parada", tbl.Rows[0].Get("Nome"))
	assert.Equal(t, "Partida", tbl.Rows[1].Get("Nome"))
	assert.Equal(t, 3, tbl.Rows[0].Line)
	assert.Equal(t, 6, tbl.Rows[1].Line)
}

func TestParse_TooFewLines(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"header only": "Id;Nome\n",
		"whitespace":  "  \n\n \n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text, ';', DefaultColumnTolerance)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
		})
	}
}

func TestParse_RepairsMisencodedHeaders(t *testing.T) {
	text := "\ufeffId;N\u00c3\u00advel_da_estrutura_de_t\u00c3\u00b3picos;Dura\u00c3\u00a7\u00c3\u00a3o \n1;2;5 dias\n"
	tbl, err := Parse(text, ';', DefaultColumnTolerance)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Nível_da_estrutura_de_tópicos", "Duração"}, tbl.Header)
	assert.Equal(t, "2", tbl.Rows[0].Get("Nível_da_estrutura_de_tópicos"))
	assert.Equal(t, "5 dias", tbl.Rows[0].Get("Duração"))
}

func TestParse_MatchesHeadersWithLostAccents(t *testing.T) {
	text := "Id;N\ufffdvel_da_estrutura_de_t\ufffdpicos\n1;3\n"
	tbl, err := Parse(text, ';', DefaultColumnTolerance)
	require.NoError(t, err)
	assert.True(t, tbl.HasColumn("Nível_da_estrutura_de_tópicos"))
	assert.Equal(t, "3", tbl.Rows[0].Get("Nível_da_estrutura_de_tópicos"))
}

func TestParse_ColumnCountTolerance(t *testing.T) {
	text := "Id;Nome;EDT\n1;a;1.7\n2;b\n3;c;1.8\n4;d;1.9\n"

	tbl, err := Parse(text, ';', 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Ragged)
	assert.Equal(t, "", tbl.Rows[1].Get("EDT"))

	_, err = Parse(text, ';', 0.1)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Error(), "column count")
}

func TestParse_TrailingDelimiterIsNotRagged(t *testing.T) {
	text := "Id;Nome;\n1;a;\n2;b;\n"
	tbl, err := Parse(text, ';', 0)
	require.NoError(t, err)
	assert.Zero(t, tbl.Ragged)
}

func TestParse_WrongDelimiterRejected(t *testing.T) {
	_, err := Parse("Id;Nome;EDT\n1;a;1.7\n", ',', DefaultColumnTolerance)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Error(), "delimiter")
}

func TestParse_QuotedFieldsKeepIndentation(t *testing.T) {
	text := "ID,Nome da tarefa\n1,\"    Montar andaime, lado norte\"\n"
	tbl, err := Parse(text, ',', DefaultColumnTolerance)
	require.NoError(t, err)
	assert.Equal(t, "    Montar andaime, lado norte", tbl.Rows[0].Raw("Nome da tarefa"))
	assert.Equal(t, "Montar andaime, lado norte", tbl.Rows[0].Get("Nome da tarefa"))
}

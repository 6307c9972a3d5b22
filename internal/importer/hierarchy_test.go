package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC)

func testEvaluator() *Evaluator {
	return NewEvaluator(DefaultRules(), testNow, DefaultCriticalDuration)
}

func rec(id string, level int, code, name string, pct float64) domain.ScheduleRecord {
	return domain.ScheduleRecord{ID: id, Level: level, Code: code, Name: name, Percent: pct}
}

func TestCodeHierarchy_AttachesByCodePrefix(t *testing.T) {
	records := []domain.ScheduleRecord{
		rec("1", 2, "1.8", "Manutenção", 0),
		rec("2", 3, "1.8.1", "Caldeira Principal", 50),
		rec("3", 4, "1.8.1.1", "Inspeção visual", 100),
		rec("4", 3, "1.8.2", "Turbina", 0),
		rec("5", 5, "1.8.2.1.1", "Trocar palhetas", 20),
		rec("6", 4, "1.8.2.2", "Alinhar eixo", 40),
	}
	assets, unattached := CodeHierarchy{}.Build(records, testEvaluator())
	require.Len(t, assets, 2)
	assert.Zero(t, unattached)

	boiler := assets[0]
	assert.Equal(t, "Caldeira Principal", boiler.Name)
	assert.Equal(t, domain.AssetBoiler, boiler.Type)
	require.Len(t, boiler.SubActivities, 1)
	assert.Equal(t, 100, boiler.Progress)
	assert.Equal(t, domain.AssetCompleted, boiler.Status)

	turbine := assets[1]
	assert.Equal(t, domain.AssetTurbine, turbine.Type)
	require.Len(t, turbine.SubActivities, 2)
	assert.Equal(t, 30, turbine.Progress)
	assert.Equal(t, domain.AssetInProgress, turbine.Status)

	for _, a := range assets {
		for _, s := range a.SubActivities {
			assert.True(t, strings.HasPrefix(s.Code, a.Code+"."), "%s under %s", s.Code, a.Code)
		}
	}
}

func TestCodeHierarchy_ChildBeforeParentInFile(t *testing.T) {
	records := []domain.ScheduleRecord{
		rec("3", 4, "1.7.1.1", "Drenar linha", 0),
		rec("2", 3, "1.7.1", "Bomba de água", 0),
	}
	assets, unattached := CodeHierarchy{}.Build(records, testEvaluator())
	require.Len(t, assets, 1)
	assert.Len(t, assets[0].SubActivities, 1)
	assert.Zero(t, unattached)
}

func TestCodeHierarchy_FallsBackToPrecedingAssetForMalformedCodes(t *testing.T) {
	records := []domain.ScheduleRecord{
		rec("2", 3, "1.7.1", "Forno", 0),
		rec("3", 4, "", "Isolar queimadores", 0),
		rec("4", 3, "1.7.2", "Moinho de bolas", 0),
		rec("5", 4, "1.7.2-a", "Travar moinho", 100),
	}
	assets, unattached := CodeHierarchy{}.Build(records, testEvaluator())
	require.Len(t, assets, 2)
	assert.Zero(t, unattached)
	require.Len(t, assets[0].SubActivities, 1)
	assert.Equal(t, "Isolar queimadores", assets[0].SubActivities[0].Name)
	require.Len(t, assets[1].SubActivities, 1)
	assert.Equal(t, "Travar moinho", assets[1].SubActivities[0].Name)
	assert.Equal(t, domain.AssetMill, assets[1].Type)
}

func TestCodeHierarchy_CountsUnattached(t *testing.T) {
	records := []domain.ScheduleRecord{
		rec("1", 4, "", "Sem ativo", 0),
		rec("2", 3, "1.7.1", "Forno", 0),
		rec("3", 4, "1.7.9.1", "Outro ramo", 0),
	}
	assets, unattached := CodeHierarchy{}.Build(records, testEvaluator())
	require.Len(t, assets, 1)
	assert.Empty(t, assets[0].SubActivities)
	assert.Equal(t, 2, unattached)
}

func TestIndentHierarchy_StackAssignment(t *testing.T) {
	records := []domain.ScheduleRecord{
		rec("1", 1, "", "Mobilização", 0),
		rec("2", 2, "", "Montar canteiro", 100),
		rec("3", 3, "", "Instalar contêineres", 100),
		rec("4", 2, "", "Contratar guindaste", 0),
		rec("5", 1, "", "Refratário", 0),
		rec("6", 3, "", "Demolir revestimento", 50),
	}
	assets, unattached := IndentHierarchy{}.Build(records, testEvaluator())
	assert.Zero(t, unattached)
	require.Len(t, assets, 2)

	mob := assets[0]
	assert.Equal(t, "Mobilização", mob.Name)
	assert.Equal(t, "Mobilização", mob.Category)
	require.Len(t, mob.SubActivities, 2)
	assert.Equal(t, 50, mob.Progress)
	require.Len(t, mob.SubActivities[0].Children, 1)
	assert.Equal(t, "Instalar contêineres", mob.SubActivities[0].Children[0].Name)

	refr := assets[1]
	assert.Equal(t, "Refratário", refr.Category)
	require.Len(t, refr.SubActivities, 1)
	assert.Equal(t, 50, refr.Progress)

	var walk func(parentLevel int, subs []domain.SubActivity)
	walk = func(parentLevel int, subs []domain.SubActivity) {
		for _, s := range subs {
			assert.Greater(t, s.Level, parentLevel)
			walk(s.Level, s.Children)
		}
	}
	for _, a := range assets {
		walk(1, a.SubActivities)
	}
}

func TestIndentHierarchy_SiblingsAtSameLevelPopStack(t *testing.T) {
	records := []domain.ScheduleRecord{
		rec("1", 0, "", "A", 0),
		rec("2", 0, "", "B", 0),
		rec("3", 1, "", "B.1", 0),
	}
	assets, _ := IndentHierarchy{}.Build(records, testEvaluator())
	require.Len(t, assets, 2)
	assert.Empty(t, assets[0].SubActivities)
	assert.Len(t, assets[1].SubActivities, 1)
}

func TestBuilderFor(t *testing.T) {
	assert.IsType(t, CodeHierarchy{}, BuilderFor(HierarchyByCode))
	assert.IsType(t, IndentHierarchy{}, BuilderFor(HierarchyByIndent))
}

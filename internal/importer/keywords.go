package importer

import (
	"strings"

	"github.com/alexanderramin/parada/internal/domain"
)

// keywordTables is a RuleSet with every pattern folded once up front.
type keywordTables struct {
	assetTypes      []TypeRule
	categories      []CategoryRule
	defaultCategory string
	completed       []string
	critical        []string
	milestone       []string
	metadata        []string
}

func newKeywordTables(rs RuleSet) *keywordTables {
	k := &keywordTables{
		defaultCategory: rs.DefaultCategory,
		completed:       foldAll(rs.CompletedKeywords),
		critical:        foldAll(rs.CriticalKeywords),
		milestone:       foldAll(rs.MilestoneKeywords),
		metadata:        foldAll(rs.MetadataKeywords),
	}
	for _, r := range rs.AssetTypes {
		k.assetTypes = append(k.assetTypes, TypeRule{Pattern: Fold(r.Pattern), Type: r.Type})
	}
	for _, r := range rs.Categories {
		k.categories = append(k.categories, CategoryRule{Pattern: Fold(r.Pattern), Category: r.Category})
	}
	return k
}

// assetType picks the type whose keyword is the longest match in name.
func (k *keywordTables) assetType(name string) domain.AssetType {
	folded := Fold(name)
	best, bestLen := domain.AssetOther, 0
	for _, r := range k.assetTypes {
		if len(r.Pattern) > bestLen && strings.Contains(folded, r.Pattern) {
			best, bestLen = r.Type, len(r.Pattern)
		}
	}
	return best
}

func (k *keywordTables) category(name string) string {
	folded := Fold(name)
	for _, r := range k.categories {
		if strings.Contains(folded, r.Pattern) {
			return r.Category
		}
	}
	return k.defaultCategory
}

func foldAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = Fold(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func containsAny(folded string, words []string) bool {
	for _, w := range words {
		if strings.Contains(folded, w) {
			return true
		}
	}
	return false
}

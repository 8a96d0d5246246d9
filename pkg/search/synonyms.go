package search

import "strings"

type synonymGroup struct {
	base     string
	synonyms []string
}

// The grant-domain synonym table. Expansion is bidirectional: a query using
// any member of a group also matches the base term and its siblings.
var synonymGroups = []synonymGroup{
	{"助成金", []string{"補助金", "支援金", "給付金", "支援制度"}},
	{"中小企業", []string{"小規模事業者", "SME", "零細企業"}},
	{"創業", []string{"起業", "開業", "スタートアップ", "新規事業"}},
	{"設備投資", []string{"機械導入", "設備購入", "機器更新", "DX投資"}},
	{"人材育成", []string{"教育訓練", "研修", "スキルアップ", "人材開発"}},
	{"海外展開", []string{"輸出", "国際展開", "グローバル展開"}},
	{"研究開発", []string{"R&D", "イノベーション", "技術開発"}},
	{"IT化", []string{"デジタル化", "DX", "システム導入", "デジタルトランスフォーメーション"}},
	{"省エネ", []string{"環境対策", "グリーン化", "脱炭素", "再生可能エネルギー"}},
}

// ExpandSynonyms returns the query plus every variant produced by swapping
// synonym-group members, deduplicated in first-seen order.
func ExpandSynonyms(query string) []string {
	expanded := []string{query}

	for _, group := range synonymGroups {
		if strings.Contains(query, group.base) {
			for _, synonym := range group.synonyms {
				expanded = append(expanded, strings.ReplaceAll(query, group.base, synonym))
			}
		}

		for _, synonym := range group.synonyms {
			if !strings.Contains(query, synonym) {
				continue
			}
			expanded = append(expanded, strings.ReplaceAll(query, synonym, group.base))
			for _, other := range group.synonyms {
				if other != synonym {
					expanded = append(expanded, strings.ReplaceAll(query, synonym, other))
				}
			}
		}
	}

	return dedupe(expanded)
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	unique := terms[:0]
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		unique = append(unique, term)
	}
	return unique
}

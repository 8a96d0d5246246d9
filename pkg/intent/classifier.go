package intent

import (
	"regexp"
	"sort"
	"strings"
)

const (
	SearchGrants     = "search_grants"
	ApplicationHelp  = "application_help"
	EligibilityCheck = "eligibility_check"
	DeadlineInquiry  = "deadline_inquiry"
	AmountInquiry    = "amount_inquiry"
	GeneralQuestion  = "general_question"
)

const (
	keywordWeight = 0.3
	patternWeight = 0.5
)

type Candidate struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type Result struct {
	Intent       string      `json:"intent"`
	Confidence   float64     `json:"confidence"`
	Alternatives []Candidate `json:"alternatives"`
}

type rule struct {
	name     string
	keywords []string
	patterns []*regexp.Regexp
}

// Rule order matters: ties resolve to the earlier entry.
var rules = []rule{
	{
		name:     SearchGrants,
		keywords: []string{"助成金", "補助金", "支援金", "探す", "検索", "見つける"},
		patterns: compile("助成金.*探し", "補助金.*ある", "支援.*制度"),
	},
	{
		name:     ApplicationHelp,
		keywords: []string{"申請", "応募", "手続き", "書類", "方法", "やり方"},
		patterns: compile("申請.*方法", "書類.*作成", "手続き.*流れ"),
	},
	{
		name:     EligibilityCheck,
		keywords: []string{"対象", "条件", "資格", "要件", "該当"},
		patterns: compile("対象.*確認", "条件.*満たす", "資格.*ある"),
	},
	{
		name:     DeadlineInquiry,
		keywords: []string{"締切", "期限", "いつまで", "期間"},
		patterns: compile("締切.*いつ", "期限.*確認", "いつまで.*申請"),
	},
	{
		name:     AmountInquiry,
		keywords: []string{"金額", "額", "いくら", "最大", "上限"},
		patterns: compile("いくら.*もらえる", "金額.*教え", "最大.*額"),
	},
	{
		name:     GeneralQuestion,
		keywords: []string{"教え", "わから", "質問", "どう", "なに"},
		patterns: compile("教えて", "わからない", "どうすれば"),
	},
}

func compile(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		patterns[i] = regexp.MustCompile(expr)
	}
	return patterns
}

// Classify scores the message against every intent rule and returns the
// winner with up to three runner-ups. It always produces a result; with no
// matches at all it falls back to general_question at confidence zero.
func Classify(message string) Result {
	lower := strings.ToLower(message)

	best := GeneralQuestion
	bestScore := 0.0

	for _, r := range rules {
		score := r.score(lower)
		if score > bestScore {
			bestScore = score
			best = r.name
		}
	}

	return Result{
		Intent:       best,
		Confidence:   clamp01(bestScore),
		Alternatives: alternatives(lower, best),
	}
}

func (r rule) score(lower string) float64 {
	score := 0.0
	for _, keyword := range r.keywords {
		if strings.Contains(lower, keyword) {
			score += keywordWeight
		}
	}
	for _, pattern := range r.patterns {
		if pattern.MatchString(lower) {
			score += patternWeight
		}
	}
	return score
}

// alternatives ranks the non-winning intents by keyword evidence alone.
func alternatives(lower, best string) []Candidate {
	candidates := make([]Candidate, 0, len(rules)-1)
	for _, r := range rules {
		if r.name == best {
			continue
		}
		score := 0.0
		for _, keyword := range r.keywords {
			if strings.Contains(lower, keyword) {
				score += keywordWeight
			}
		}
		if score > 0 {
			candidates = append(candidates, Candidate{Intent: r.name, Confidence: clamp01(score)})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	return candidates
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}

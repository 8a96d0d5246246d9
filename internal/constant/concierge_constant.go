package constant

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"

	SessionPrefix = "gi_session_"

	// Cache key prefixes
	RateLimitKeyPrefix  = "concierge:rate:"
	GrantTitlesCacheKey = "concierge:grant_titles"

	// System prompt base, always present.
	SystemPromptBase = "あなたは助成金・補助金の専門コンサルタントです。" +
		"日本の中小企業や個人事業主に対して、最適な助成金情報を提供し、申請をサポートします。" +
		"常に正確で実用的なアドバイスを心がけ、ユーザーの状況に応じた個別対応を行います。"

	// Appended when the user seems anxious or upbeat.
	SystemPromptAnxiousUser = "\nユーザーは困惑や不安を感じているようです。丁寧で親しみやすい対応を心がけてください。"
	SystemPromptUpbeatUser  = "\nユーザーは積極的で前向きです。効率的で具体的な情報提供を行ってください。"

	// Closing answer rules, always appended last.
	SystemPromptAnswerRules = "\n\n回答の際は以下を必ず守ってください：" +
		"\n- 簡潔で分かりやすい日本語を使用" +
		"\n- 具体的で実行可能なアドバイスを提供" +
		"\n- 必要に応じて追加質問を促す" +
		"\n- 専門用語は分かりやすく説明" +
		"\n- 回答の根拠や参考情報を明示"
)

// SystemPromptByIntent adjusts the consultation focus per detected intent.
var SystemPromptByIntent = map[string]string{
	"search_grants":     "\n現在は助成金検索に関する質問を受けています。具体的な条件に基づいて最適な助成金を提案してください。",
	"application_help":  "\n申請手続きに関する質問を受けています。段階的で分かりやすい説明を心がけてください。",
	"eligibility_check": "\n対象資格の確認に関する質問です。明確な判定基準と根拠を示してください。",
	"deadline_inquiry":  "\n締切に関する緊急性の高い質問です。正確な日程と注意点を明示してください。",
	"amount_inquiry":    "\n金額に関する質問です。具体的な数字と計算方法を示してください。",
}

// SuggestionsByIntent are the canned follow-up actions offered after an
// answer, keyed by the detected intent.
var SuggestionsByIntent = map[string][]string{
	"search_grants": {
		"業種別に助成金を探す",
		"申請難易度で絞り込む",
		"申請期限が近いものを確認",
		"最大支援額で並び替え",
	},
	"application_help": {
		"必要書類の一覧を確認",
		"申請スケジュールを立てる",
		"記入例やサンプルを見る",
		"専門家への相談を検討",
	},
	"eligibility_check": {
		"詳細な要件を確認",
		"類似の助成金を探す",
		"要件を満たすための準備",
		"事前相談の申し込み",
	},
}

// SuggestionPatterns complete a partial search query with the questions
// users most often append.
var SuggestionPatterns = []string{
	"申請方法",
	"対象条件",
	"締切日",
	"金額",
	"必要書類",
}

// Contextual notes appended to answers for time-sensitive intents.
const (
	DeadlineNotice        = "\n\n重要：締切日は変更される場合があります。申請前に必ず公式サイトで最新情報をご確認ください。"
	ApplicationTipsNotice = "\n\nヒント：申請書類の準備には時間がかかります。早めの準備をお勧めします。"
)

package chatcontext

import (
	"strings"

	"grant-insight-be/pkg/intent"
)

type keywordGroup struct {
	label    string
	keywords []string
}

// Ordered tables: the first matching group wins, so broader categories are
// listed after the more specific ones they overlap with.
var businessTypes = []keywordGroup{
	{"製造業", []string{"製造", "メーカー", "工場", "生産", "製品"}},
	{"IT業", []string{"IT", "システム", "ソフトウェア", "アプリ", "Web", "デジタル"}},
	{"小売業", []string{"小売", "販売", "店舗", "ショップ", "商店"}},
	{"建設業", []string{"建設", "工事", "建築", "リフォーム", "施工"}},
	{"サービス業", []string{"サービス", "コンサル", "相談", "支援"}},
	{"飲食業", []string{"飲食", "レストラン", "カフェ", "居酒屋", "料理"}},
	{"農業", []string{"農業", "農家", "農産", "野菜", "果物", "畜産"}},
	{"運輸業", []string{"運送", "物流", "配送", "トラック", "輸送"}},
	{"医療・介護", []string{"医療", "介護", "病院", "クリニック", "福祉", "看護"}},
}

var prefectures = []string{
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県",
	"岐阜県", "静岡県", "愛知県", "三重県",
	"滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県",
	"鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県",
	"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

var businessSizes = []keywordGroup{
	{"個人事業主", []string{"個人事業主", "個人事業", "フリーランス", "自営業"}},
	{"小規模事業者", []string{"小規模", "従業員5名", "従業員10名"}},
	{"中小企業", []string{"中小企業", "従業員20名", "従業員50名", "従業員100名"}},
	{"中堅企業", []string{"中堅", "従業員200名", "従業員300名"}},
}

var focusTopics = []keywordGroup{
	{"設備投資", []string{"設備", "機械", "導入", "購入", "システム", "IT"}},
	{"人材育成", []string{"研修", "教育", "人材", "スキルアップ", "訓練"}},
	{"新規事業", []string{"新規", "新事業", "新サービス", "開発", "創業"}},
	{"海外展開", []string{"海外", "輸出", "国際", "グローバル", "展開"}},
	{"研究開発", []string{"研究", "開発", "R&D", "イノベーション", "技術"}},
	{"環境対策", []string{"環境", "省エネ", "エコ", "脱炭素", "グリーン"}},
	{"働き方改革", []string{"働き方", "テレワーク", "在宅", "リモート", "時短"}},
	{"事業承継", []string{"承継", "後継者", "引き継ぎ", "M&A", "事業継承"}},
}

var intentFocus = map[string]string{
	intent.SearchGrants:     "助成金検索",
	intent.ApplicationHelp:  "申請支援",
	intent.EligibilityCheck: "対象確認",
	intent.DeadlineInquiry:  "締切確認",
	intent.AmountInquiry:    "金額確認",
}

const defaultFocus = "一般相談"

// BusinessInfo is what a single message reveals about the user's situation.
// Empty fields mean the message said nothing about them.
type BusinessInfo struct {
	BusinessType string
	BusinessSize string
	Location     string
}

// ExtractBusinessInfo mines a free-form message for business type, size and
// prefecture mentions.
func ExtractBusinessInfo(message string) BusinessInfo {
	info := BusinessInfo{}

	info.BusinessType = matchGroup(message, businessTypes)
	info.BusinessSize = matchGroup(message, businessSizes)

	for _, prefecture := range prefectures {
		if strings.Contains(message, prefecture) {
			info.Location = prefecture
			break
		}
	}

	return info
}

func matchGroup(message string, groups []keywordGroup) string {
	for _, group := range groups {
		for _, keyword := range group.keywords {
			if strings.Contains(message, keyword) {
				return group.label
			}
		}
	}
	return ""
}

// DetermineFocus picks the user's current topic of interest: explicit topic
// keywords beat the intent-derived default.
func DetermineFocus(intentName, message string) string {
	if focus := matchGroup(message, focusTopics); focus != "" {
		return focus
	}
	if focus, ok := intentFocus[intentName]; ok {
		return focus
	}
	return defaultFocus
}

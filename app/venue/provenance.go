package venue

import (
	"slices"
	"strings"
)

type DataSource struct {
	Venue       string `json:"venue"`
	Area        Area   `json:"area"`
	Source      string `json:"data_source"`
	Method      string `json:"method"`
	Frequency   string `json:"frequency"`
	Conditions  string `json:"conditions"`
	Reliability string `json:"reliability"`
	LastUpdated string `json:"last_updated"`
}

type MethodKind string

const (
	MethodFeed     MethodKind = "feed"
	MethodScraping MethodKind = "scraping"
	MethodSocial   MethodKind = "social"
	MethodNone     MethodKind = "none"
)

// Kind classifies the collection method for display.
func (d DataSource) Kind() MethodKind {
	switch {
	case strings.Contains(d.Method, "API") || strings.Contains(d.Method, "RSS"):
		return MethodFeed
	case strings.Contains(d.Method, "Website") || strings.Contains(d.Method, "Scraping"):
		return MethodScraping
	case strings.Contains(d.Method, "Social Media"):
		return MethodSocial
	default:
		return MethodNone
	}
}

// ReliabilityLevel maps the free-form reliability note onto a coarse level.
func (d DataSource) ReliabilityLevel() string {
	switch {
	case strings.Contains(d.Reliability, "Very High"):
		return "very-high"
	case strings.Contains(d.Reliability, "High"):
		return "high"
	case strings.Contains(d.Reliability, "Medium"):
		return "medium"
	default:
		return "unknown"
	}
}

var dataSources = []DataSource{
	{
		Venue:  "Double-u Studio",
		Area:   AreaChuyo,
		Source: "未対応",
	},
	{
		Venue:       "JEANDORE",
		Area:        AreaToyo,
		Source:      "Official WebSite",
		Method:      "Website Scraping https://www.jeandore.com/live/live.html にアクセスし更新情報を取得",
		Frequency:   "毎日12:00実行",
		Conditions:  "イベント識別方法：イベントタイトル名",
		LastUpdated: "2024-08-24",
	},
	{
		Venue:  "JamSounds",
		Area:   AreaToyo,
		Source: "未対応",
	},
	{
		Venue:       "MusicBoxHACO",
		Area:        AreaToyo,
		Source:      "Official WebSite",
		Method:      "Website Scraping https://www.musicboxhaco.com/schedule にアクセスし更新情報を取得",
		Frequency:   "毎日12:00実行",
		Conditions:  "イベント識別方法：イベントタイトル名",
		LastUpdated: "2024-08-24",
	},
	{
		Venue:       "necco",
		Area:        AreaChuyo,
		Source:      "Official instagram",
		Method:      "instagram API 経由で情報を取得※実装予定",
		Frequency:   "毎時30分に更新情報確認※未実装",
		Conditions:  "・除外設定：タグが＃event以外は対象外とする・イベント識別方法：id",
		LastUpdated: "2024-07-25",
	},
	{
		Venue:       "oto-doke",
		Area:        AreaChuyo,
		Source:      "Official WebSite",
		Method:      "未対応 ※一部手動で情報取得し追加",
		LastUpdated: "2024-07-22",
	},
	{
		Venue:       "SALONKITTY & KITTYHALL",
		Area:        AreaChuyo,
		Source:      "Official WebSite",
		Method:      "RSS Feed Integration http://red.double-ustudio.com/feed にアクセスし更新情報を取得",
		Frequency:   "毎時30分に更新情報確認",
		Conditions:  "開催日はtitleとcontentから抽出し設定 理由：Rssの項目に開催日が無いため。除外設定：Rss categories が「お知らせ」のみの場合 イベント識別方法：guid",
		LastUpdated: "2025-08-24",
	},
	{
		Venue:       "WStudioRED",
		Area:        AreaChuyo,
		Source:      "Official WebSite",
		Method:      "RSS Feed Integration http://red.double-ustudio.com/feed にアクセスし更新情報を取得",
		Frequency:   "毎時30分に更新情報確認",
		Conditions:  "イベント識別方法：guid",
		LastUpdated: "2025-08-24",
	},
}

const CommonProcessing = "取得したデータを解析し、開催日(Date)、時間(time)、タイトル(title)、コンテンツ(Content)、料金(fee)、チケット(Ticket)、リンク(Link)、会場(Venue)の情報に設定"

var extractionRules = []string{
	"入力データのみを解析対象とし、外部情報や推測による補完は行わない",
	"抽出項目はタイトル、日付、内容、時間、料金、チケットURL、画像URL、会場名",
	"入力に存在しない項目は必ず null(空文字) とする",
	"HTML特殊文字や不要な空白は除去し、改行は \\n で処理",
	"画像は、同一画像が複数ある場合は最初のURLのみ保持し、srcset がある場合は src を省く",
}

// DataSources returns the provenance table sorted A to Z by venue.
func DataSources() []DataSource {
	sources := slices.Clone(dataSources)
	slices.SortFunc(sources, func(a, b DataSource) int {
		return strings.Compare(strings.ToLower(a.Venue), strings.ToLower(b.Venue))
	})
	return sources
}

func ExtractionRules() []string {
	return slices.Clone(extractionRules)
}

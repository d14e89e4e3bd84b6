// Package datefmt owns the boundary between the provider's 8-digit YYYYMMDD dates
// and the YYYY-MM-DD dates exposed to API consumers.
package datefmt

import (
	"strings"
	"time"
)

// Layout はストレージとプロバイダーで使う日付形式です。
const Layout = "20060102"

// ToDisplay は "20241120" を "2024-11-20" に変換します。
// 8文字でない値はそのまま返します。
func ToDisplay(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	return raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8]
}

// FromDisplay は "2024-11-20" を "20241120" に変換します。
func FromDisplay(display string) string {
	return strings.TrimSpace(strings.ReplaceAll(display, "-", ""))
}

// Format は time.Time を YYYYMMDD 文字列にします。
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse は YYYYMMDD 文字列を time.Time にします。
func Parse(raw string) (time.Time, error) {
	return time.Parse(Layout, raw)
}

// Seoul は取引所のタイムゾーンです。tzdata がない環境では固定オフセットになります。
var Seoul = loadSeoul()

func loadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// Today は now の取引所ローカル日付を UTC 0時の time.Time で返します。
func Today(now time.Time) time.Time {
	y, m, d := now.In(Seoul).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

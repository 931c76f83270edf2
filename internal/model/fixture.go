package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Fixture 一场比赛，观测到后不再变化
type Fixture struct {
	League    string
	Home      string
	Away      string
	StartTime time.Time // UTC
	Key       string    // 文件名安全的稳定键
}

// ScorePair 比分
type ScorePair struct {
	Home int
	Away int
}

// String 形如 "1 - 0"
func (s ScorePair) String() string {
	return fmt.Sprintf("%d - %d", s.Home, s.Away)
}

// LiveState 每次轮询的即时状态，不直接持久化
type LiveState struct {
	ElapsedMs     int64
	HalfIndicator int
	HalfEnded     bool
	SecondHalf    bool
	HalfTimeScore *ScorePair // nil 表示尚未记录半场比分
	Score         ScorePair
}

// HalfTimeRecorded 半场比分已出现或已进入下半场
func (l LiveState) HalfTimeRecorded() bool {
	return l.HalfTimeScore != nil || l.SecondHalf
}

// RawMarkets 三个市场的盘口原文
type RawMarkets struct {
	Handicap  []string `json:"handicap"`
	OverUnder []string `json:"over_under"`
	Moneyline []string `json:"moneyline"`
}

// FeedFixture 适配器输出：一场比赛 + 即时状态 + 盘口原文
type FeedFixture struct {
	Fixture Fixture
	Live    LiveState
	Markets RawMarkets
}

var unsafeFileChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFilename 替换文件名非法字符，空格换成下划线
func SanitizeFilename(s string) string {
	return strings.ReplaceAll(unsafeFileChars.ReplaceAllString(s, "_"), " ", "_")
}

// FixtureKey "{league} - {home} vs {away}"，prefix 非空时加 "YYYYMMDD_HHMM_" 前缀（loc 时区）
func FixtureKey(league, home, away string, start time.Time, loc *time.Location, prefix bool) string {
	name := fmt.Sprintf("%s - %s vs %s", league, home, away)
	if prefix {
		if loc == nil {
			loc = time.Local
		}
		name = start.In(loc).Format("20060102_1504") + "_" + name
	}
	return SanitizeFilename(name)
}

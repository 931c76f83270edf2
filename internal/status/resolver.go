package status

import (
	"fmt"
	"time"

	"OddsRecorder/internal/model"
)

const (
	// DefaultImminentWindow 开赛前该时长内显示 "Before match"
	DefaultImminentWindow = 15 * time.Minute

	firstHalfMinutes  = 45
	secondHalfMinutes = 50
	clockLayout       = "15:04"
)

// Result 状态标签与比分
type Result struct {
	Label string
	Score string
}

// Resolver 由开赛时间、当前时间与即时状态推导显示标签
type Resolver struct {
	imminent time.Duration
	loc      *time.Location
}

// NewResolver imminent <= 0 时用默认 15 分钟；loc 为空用本地时区
func NewResolver(imminent time.Duration, loc *time.Location) *Resolver {
	if imminent <= 0 {
		imminent = DefaultImminentWindow
	}
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{imminent: imminent, loc: loc}
}

// Resolve 状态机：
//
//	未开赛，距开赛 > imminent      → 当前时钟 "HH:MM"，比分 "-"
//	未开赛，距开赛 0 ~ imminent    → "Before match"，比分 "-"
//	无半场比分，分钟 <= 45         → "1H m'"
//	无半场比分，分钟 > 45 或半场结束 → "HT"
//	有半场比分，分钟 <= 50         → "2H m'"
//	有半场比分，分钟 > 50          → "FT"
//
// 分钟为数据源给出的本半场分钟数，下半场不从零重算。
// 已过开赛时间但已进行时间为 0 时仍为 "1H 0'"
func (r *Resolver) Resolve(start, now time.Time, live model.LiveState) Result {
	if !r.started(start, now, live) {
		if start.Sub(now) > r.imminent {
			return Result{Label: now.In(r.loc).Format(clockLayout), Score: model.NoScore}
		}
		return Result{Label: model.StatusBeforeMatch, Score: model.NoScore}
	}

	minute := live.ElapsedMs / int64(time.Minute/time.Millisecond)
	if minute < 0 {
		minute = 0
	}
	score := live.Score.String()

	if !live.HalfTimeRecorded() {
		if live.HalfEnded || minute > firstHalfMinutes {
			return Result{Label: model.StatusHalfTime, Score: score}
		}
		return Result{Label: fmt.Sprintf("1H %d'", minute), Score: score}
	}
	if minute <= secondHalfMinutes {
		return Result{Label: fmt.Sprintf("2H %d'", minute), Score: score}
	}
	return Result{Label: model.StatusFinal, Score: score}
}

// started 数据源已给出进行中信号时以数据源为准，不受本地时钟偏差影响
func (r *Resolver) started(start, now time.Time, live model.LiveState) bool {
	return !now.Before(start) || live.ElapsedMs > 0 || live.HalfTimeRecorded()
}

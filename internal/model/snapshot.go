package model

import "time"

// 状态标签
const (
	StatusBeforeMatch = "Before match"
	StatusHalfTime    = "HT"
	StatusFinal       = "FT" // 终局标签，写入后该表封存
	NoScore           = "-"
)

// SnapshotHeader CSV 表头，仅首次写入
var SnapshotHeader = []string{
	"Time", "Handicap top", "Odds top",
	"Handicap bottom", "Odds bottom", "O/U", "Odds over",
	"Odds under", "1X2 - 1", "1X2 - X", "1X2 - 2",
}

// Snapshot 一行快照。Score 与 RecordedAt 不写入 CSV 列
type Snapshot struct {
	Status         string
	HandicapTop    string
	OddsTop        string
	HandicapBottom string
	OddsBottom     string
	OverUnder      string
	OddsOver       string
	OddsUnder      string
	MoneylineHome  string
	MoneylineDraw  string
	MoneylineAway  string

	Score      string
	RecordedAt time.Time
}

// IsFinal 是否终局行
func (s *Snapshot) IsFinal() bool {
	return s != nil && s.Status == StatusFinal
}

// Columns 按表头顺序输出
func (s *Snapshot) Columns() []string {
	return []string{
		s.Status,
		s.HandicapTop, s.OddsTop,
		s.HandicapBottom, s.OddsBottom,
		s.OverUnder, s.OddsOver, s.OddsUnder,
		s.MoneylineHome, s.MoneylineDraw, s.MoneylineAway,
	}
}

// SnapshotFromColumns 从 CSV 行还原；列数不足时缺失列为空
func SnapshotFromColumns(cols []string) *Snapshot {
	get := func(i int) string {
		if i < len(cols) {
			return cols[i]
		}
		return ""
	}
	return &Snapshot{
		Status:         get(0),
		HandicapTop:    get(1),
		OddsTop:        get(2),
		HandicapBottom: get(3),
		OddsBottom:     get(4),
		OverUnder:      get(5),
		OddsOver:       get(6),
		OddsUnder:      get(7),
		MoneylineHome:  get(8),
		MoneylineDraw:  get(9),
		MoneylineAway:  get(10),
	}
}

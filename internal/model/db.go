package model

import (
	"time"

	"gorm.io/datatypes"
)

type FixtureRecord struct {
	ID         uint64    `json:"id" gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	FixtureKey string    `json:"fixture_key" gorm:"column:fixture_key;type:varchar(512);uniqueIndex;not null;comment:比赛键（同CSV文件名）"`
	League     string    `json:"league" gorm:"column:league;type:varchar(256);not null;comment:联赛"`
	Home       string    `json:"home" gorm:"column:home;type:varchar(128);not null;comment:主队"`
	Away       string    `json:"away" gorm:"column:away;type:varchar(128);not null;comment:客队"`
	StartTime  time.Time `json:"start_time" gorm:"column:start_time;type:timestamp;not null;comment:开赛时间(UTC)"`
	LastStatus string    `json:"last_status" gorm:"column:last_status;type:varchar(32);comment:最近一行状态"`
	Sealed     bool      `json:"sealed" gorm:"column:sealed;type:boolean;default:false;comment:是否已写入终局行"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

type SnapshotRecord struct {
	ID             uint64         `json:"id" gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	SnapshotUUID   string         `json:"snapshot_uuid" gorm:"column:snapshot_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID"`
	FixtureKey     string         `json:"fixture_key" gorm:"column:fixture_key;type:varchar(512);index;not null;comment:关联比赛键"`
	Status         string         `json:"status" gorm:"column:status;type:varchar(32);not null;comment:时间/状态标签"`
	Score          string         `json:"score" gorm:"column:score;type:varchar(16);comment:比分"`
	HandicapTop    string         `json:"handicap_top" gorm:"column:handicap_top;type:varchar(32);comment:上盘让球"`
	OddsTop        string         `json:"odds_top" gorm:"column:odds_top;type:varchar(16);comment:上盘赔率"`
	HandicapBottom string         `json:"handicap_bottom" gorm:"column:handicap_bottom;type:varchar(32);comment:下盘让球"`
	OddsBottom     string         `json:"odds_bottom" gorm:"column:odds_bottom;type:varchar(16);comment:下盘赔率"`
	OverUnder      string         `json:"over_under" gorm:"column:over_under;type:varchar(32);comment:大小球盘口"`
	OddsOver       string         `json:"odds_over" gorm:"column:odds_over;type:varchar(16);comment:大球赔率"`
	OddsUnder      string         `json:"odds_under" gorm:"column:odds_under;type:varchar(16);comment:小球赔率"`
	MoneylineHome  string         `json:"moneyline_home" gorm:"column:moneyline_home;type:varchar(16);comment:1X2主胜"`
	MoneylineDraw  string         `json:"moneyline_draw" gorm:"column:moneyline_draw;type:varchar(16);comment:1X2平局"`
	MoneylineAway  string         `json:"moneyline_away" gorm:"column:moneyline_away;type:varchar(16);comment:1X2客胜"`
	RawOdds        datatypes.JSON `json:"raw_odds" gorm:"column:raw_odds;type:jsonb;comment:盘口原文"`
	RecordedAt     time.Time      `json:"recorded_at" gorm:"column:recorded_at;type:timestamp;not null;comment:记录时间"`
}

func (FixtureRecord) TableName() string  { return "fixtures" }
func (SnapshotRecord) TableName() string { return "snapshots" }

// ToSnapshot 转回快照行
func (r *SnapshotRecord) ToSnapshot() *Snapshot {
	return &Snapshot{
		Status:         r.Status,
		HandicapTop:    r.HandicapTop,
		OddsTop:        r.OddsTop,
		HandicapBottom: r.HandicapBottom,
		OddsBottom:     r.OddsBottom,
		OverUnder:      r.OverUnder,
		OddsOver:       r.OddsOver,
		OddsUnder:      r.OddsUnder,
		MoneylineHome:  r.MoneylineHome,
		MoneylineDraw:  r.MoneylineDraw,
		MoneylineAway:  r.MoneylineAway,
		Score:          r.Score,
		RecordedAt:     r.RecordedAt,
	}
}

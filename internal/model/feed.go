package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// 数据源原始结构：字段名为数字字符串，仅在适配器边界使用，内部逻辑只接触 Fixture/LiveState

// RawCompetition 联赛
type RawCompetition struct {
	Name    string     `json:"1"` // 联赛名称
	Matches []RawMatch `json:"2"` // 比赛列表
}

// RawMatch 单场比赛
type RawMatch struct {
	StartTime  string          `json:"0"`  // 开赛时间（ISO-8601 UTC）
	Home       string          `json:"2"`  // 主队
	Away       string          `json:"3"`  // 客队
	Score      RawScore        `json:"4"`  // 比分
	ElapsedMs  FlexInt         `json:"6"`  // 本半场已进行毫秒数
	Odds       RawOdds         `json:"7"`  // 盘口
	Half       FlexInt         `json:"10"` // 半场标识，4 = 上半场结束
	SecondHalf FlexBool        `json:"11"` // 下半场进行中
	Secondary  json.RawMessage `json:"16"` // 衍生盘口标记（存在即跳过）
	Derivative FlexBool        `json:"17"` // 衍生盘口标记
}

// RawScore 比分："0"/"1" 当前比分，"2"/"3" 半场比分
type RawScore struct {
	Home     *FlexInt `json:"0"`
	Away     *FlexInt `json:"1"`
	HalfHome *FlexInt `json:"2"`
	HalfAway *FlexInt `json:"3"`
}

// RawOdds 盘口原文，每个市场只有第一条有效
type RawOdds struct {
	Moneyline []string `json:"1"` // 1X2
	OverUnder []string `json:"3"` // 大小球
	Handicap  []string `json:"5"` // 让球
}

// IsSecondary 衍生盘口比赛不处理
func (m RawMatch) IsSecondary() bool {
	return len(m.Secondary) > 0 || bool(m.Derivative)
}

// FlexInt 兼容数字、数字字符串与 null
type FlexInt int64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexInt(v)
	return nil
}

// FlexBool 兼容 true/false、0/1 与 null
type FlexBool bool

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexBool) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(bytes.TrimSpace(b)), `"`) {
	case "true", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

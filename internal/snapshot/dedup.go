package snapshot

import (
	"strings"

	"OddsRecorder/internal/model"

	"github.com/shopspring/decimal"
)

// ShouldLog 是否追加新行：没有上一行时总是追加；否则只比较让球盘上下盘赔率，
// 任一变化即追加。时间标签每次都变，不参与比较。任一值无法解析为数字时追加
func ShouldLog(next, last *model.Snapshot) bool {
	if last == nil {
		return true
	}
	if next == nil {
		return false
	}
	return priceChanged(last.OddsTop, next.OddsTop) || priceChanged(last.OddsBottom, next.OddsBottom)
}

func priceChanged(prev, cur string) bool {
	p, err := decimal.NewFromString(strings.TrimSpace(prev))
	if err != nil {
		return true
	}
	c, err := decimal.NewFromString(strings.TrimSpace(cur))
	if err != nil {
		return true
	}
	return !p.Equal(c)
}

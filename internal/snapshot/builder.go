package snapshot

import (
	"errors"
	"fmt"
	"time"

	"OddsRecorder/internal/model"
	"OddsRecorder/internal/odds"
	"OddsRecorder/internal/status"
)

// ErrIncompleteMarket 盘口字段不全，本次轮询不记录该比赛
var ErrIncompleteMarket = errors.New("盘口不完整")

// Build 由状态与三个市场原文组装一行快照。
// 1X2 列顺序为 主胜(h) / 平局(d) / 客胜(a)
func Build(res status.Result, markets model.RawMarkets, now time.Time) (*model.Snapshot, error) {
	hc := odds.DecodeSided(markets.Handicap)
	if !hc.Complete() {
		return nil, fmt.Errorf("%w: handicap", ErrIncompleteMarket)
	}
	ou := odds.DecodeSided(markets.OverUnder)
	if !ou.Complete() {
		return nil, fmt.Errorf("%w: over/under", ErrIncompleteMarket)
	}
	ml := odds.DecodeMoneyline(markets.Moneyline)
	if ml.Home == nil || ml.Draw == nil || ml.Away == nil {
		return nil, fmt.Errorf("%w: 1x2", ErrIncompleteMarket)
	}

	return &model.Snapshot{
		Status:         res.Label,
		HandicapTop:    hc.TopLine,
		OddsTop:        odds.FormatPrice(hc.Home),
		HandicapBottom: hc.BottomLine,
		OddsBottom:     odds.FormatPrice(hc.Away),
		OverUnder:      ou.Line,
		OddsOver:       odds.FormatPrice(ou.Home),
		OddsUnder:      odds.FormatPrice(ou.Away),
		MoneylineHome:  odds.FormatPrice(ml.Home),
		MoneylineDraw:  odds.FormatPrice(ml.Draw),
		MoneylineAway:  odds.FormatPrice(ml.Away),
		Score:          res.Score,
		RecordedAt:     now.UTC(),
	}, nil
}

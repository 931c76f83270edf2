package interfaces

import (
	"context"

	"OddsRecorder/internal/config"
	"OddsRecorder/internal/model"

	"github.com/sirupsen/logrus"
)

// ConvertResult 适配器转换结果
type ConvertResult struct {
	Fixtures  []*model.FeedFixture
	Secondary int // 衍生盘口，已跳过
	Invalid   int // 开赛时间等字段无法解析，已跳过
}

// FeedAdapter 数据源必须实现的核心接口
type FeedAdapter interface {
	// GetName 数据源名称
	GetName() string
	// FetchCompetitions 拉取原始数据
	FetchCompetitions(ctx context.Context) ([]model.RawCompetition, error)
	// ConvertToFixtures 数字键 → 具名字段，跳过衍生盘口
	ConvertToFixtures(comps []model.RawCompetition) ConvertResult
}

// Factory 数据源适配器工厂函数签名
type Factory func(cfg *config.FeedConfig, logger *logrus.Logger) FeedAdapter

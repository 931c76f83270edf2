package adapter

import (
	"fmt"

	"OddsRecorder/internal/config"
	"OddsRecorder/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// NewFeedAdapter 按配置中的数据源名称创建适配器实例
func NewFeedAdapter(cfg *config.FeedConfig, logger *logrus.Logger) (interfaces.FeedAdapter, error) {
	factory, ok := GetFactory(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("数据源%s未注册适配器（已注册：%v）", cfg.Name, ListFactories())
	}
	feed := factory(cfg, logger)
	if feed == nil {
		return nil, fmt.Errorf("数据源%s的工厂函数返回nil", cfg.Name)
	}
	logger.WithFields(logrus.Fields{
		"feed":     cfg.Name,
		"base_url": cfg.BaseURL,
	}).Info("数据源适配器初始化成功")
	return feed, nil
}

package api

import (
	"context"
	"net/http"

	"OddsRecorder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recorder 一次完整轮询
type Recorder interface {
	Run(ctx context.Context) (*service.PassSummary, error)
}

type SyncHandler struct {
	recorder Recorder
	feedName string
	logger   *logrus.Logger
}

func NewSyncHandler(recorder Recorder, feedName string, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		recorder: recorder,
		feedName: feedName,
		logger:   logger,
	}
}

// SyncFeedHandler 手动触发一次轮询
// @Summary 拉取数据源并追加快照
// @Success 200 {object} service.PassSummary
// @Failure 502 {object} map[string]string
// @Router /sync/feed [post]
func (h *SyncHandler) SyncFeedHandler(c *gin.Context) {
	summary, err := h.recorder.Run(c.Request.Context())
	if err != nil {
		h.logger.Errorf("同步%s失败: %v", h.feedName, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":    h.feedName,
		"summary": summary,
	})
}

package api

import (
	"net/http"
	"strconv"

	"OddsRecorder/internal/interfaces"
	"OddsRecorder/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FixtureHandler 已记录比赛的查询接口（数据来自 PostgreSQL 镜像）
type FixtureHandler struct {
	reader interfaces.FixtureReader
	logger *logrus.Logger
}

func NewFixtureHandler(reader interfaces.FixtureReader, logger *logrus.Logger) *FixtureHandler {
	return &FixtureHandler{reader: reader, logger: logger}
}

type fixtureListResponse struct {
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	Items    []*model.FixtureRecord `json:"items"`
}

// ListFixtures 比赛列表
// GET /api/fixtures?page=1&page_size=20
func (h *FixtureHandler) ListFixtures(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.reader.ListFixtures(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListFixtures failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []*model.FixtureRecord{}
	}

	c.JSON(http.StatusOK, fixtureListResponse{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	})
}

// ListSnapshots 一场比赛的快照历史
// GET /api/fixtures/:key/snapshots
func (h *FixtureHandler) ListSnapshots(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fixture key is required"})
		return
	}

	snaps, err := h.reader.ListSnapshots(c.Request.Context(), key)
	if err != nil {
		h.logger.WithError(err).Error("ListSnapshots failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(snaps) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "fixture not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fixture_key": key,
		"header":      model.SnapshotHeader,
		"items":       snaps,
	})
}

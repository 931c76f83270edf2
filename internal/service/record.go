package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"OddsRecorder/internal/config"
	"OddsRecorder/internal/interfaces"
	"OddsRecorder/internal/model"
	"OddsRecorder/internal/snapshot"
	"OddsRecorder/internal/status"

	"github.com/sirupsen/logrus"
)

// DefaultLookahead 只记录该时长内开赛的比赛
const DefaultLookahead = 6 * time.Hour

// PassSummary 一次轮询的统计
type PassSummary struct {
	Fixtures    int `json:"fixtures"`
	Secondary   int `json:"secondary"`
	Invalid     int `json:"invalid"`
	OutOfWindow int `json:"out_of_window"`
	Sealed      int `json:"sealed"`
	Incomplete  int `json:"incomplete"`
	Unchanged   int `json:"unchanged"`
	Written     int `json:"written"`
	Failed      int `json:"failed"`
}

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeOutOfWindow
	outcomeSealed
	outcomeIncomplete
	outcomeUnchanged
)

// RecordService 一次轮询：拉取 → 过滤 → 状态 → 组装 → 去重 → 追加
type RecordService struct {
	feed     interfaces.FeedAdapter
	store    interfaces.SnapshotStore
	mirrors  []interfaces.SnapshotStore
	resolver *status.Resolver
	cfg      config.SyncConfig
	loc      *time.Location
	logger   *logrus.Logger
	now      func() time.Time

	// 同一时刻只允许一次轮询，避免同一表并发追加
	mu sync.Mutex
}

// NewRecordService store 为主存储（CSV 表），mirrors 写失败只记日志；
// 主表无法读取时 mirrors 作为封存状态与最近快照的后备来源
func NewRecordService(feed interfaces.FeedAdapter, store interfaces.SnapshotStore, cfg config.SyncConfig, logger *logrus.Logger, mirrors ...interfaces.SnapshotStore) *RecordService {
	loc := cfg.Location()
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = DefaultLookahead
	}
	return &RecordService{
		feed:     feed,
		store:    store,
		mirrors:  mirrors,
		resolver: status.NewResolver(cfg.ImminentWindow, loc),
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock 测试用
func (s *RecordService) SetClock(now func() time.Time) {
	s.now = now
}

// Run 执行一次完整轮询。拉取失败时不写任何表并返回错误；单场比赛的错误不影响其他比赛
func (s *RecordService) Run(ctx context.Context) (*PassSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &PassSummary{}
	comps, err := s.feed.FetchCompetitions(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("feed", s.feed.GetName()).Error("拉取数据源失败，本轮跳过")
		return summary, err
	}

	res := s.feed.ConvertToFixtures(comps)
	summary.Secondary = res.Secondary
	summary.Invalid = res.Invalid

	now := s.now()
	for _, ff := range res.Fixtures {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.Fixtures++

		out, err := s.recordFixture(ctx, ff, now)
		if err != nil {
			summary.Failed++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"league": ff.Fixture.League,
				"home":   ff.Fixture.Home,
				"away":   ff.Fixture.Away,
			}).Error("记录比赛失败")
			continue
		}
		switch out {
		case outcomeWritten:
			summary.Written++
		case outcomeOutOfWindow:
			summary.OutOfWindow++
		case outcomeSealed:
			summary.Sealed++
		case outcomeIncomplete:
			summary.Incomplete++
		case outcomeUnchanged:
			summary.Unchanged++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"feed":          s.feed.GetName(),
		"fixtures":      summary.Fixtures,
		"secondary":     summary.Secondary,
		"invalid":       summary.Invalid,
		"out_of_window": summary.OutOfWindow,
		"sealed":        summary.Sealed,
		"incomplete":    summary.Incomplete,
		"unchanged":     summary.Unchanged,
		"written":       summary.Written,
		"failed":        summary.Failed,
	}).Info("本轮记录完成")
	return summary, nil
}

func (s *RecordService) recordFixture(ctx context.Context, ff *model.FeedFixture, now time.Time) (out outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	fx := ff.Fixture
	if fx.StartTime.Sub(now) > s.cfg.Lookahead {
		return outcomeOutOfWindow, nil
	}
	fx.Key = model.FixtureKey(fx.League, fx.Home, fx.Away, fx.StartTime, s.loc, s.cfg.TimePrefix)
	log := s.logger.WithField("fixture", fx.Key)

	if s.isSealed(ctx, &fx, log) {
		return outcomeSealed, nil
	}

	res := s.resolver.Resolve(fx.StartTime, now, ff.Live)
	snap, err := snapshot.Build(res, ff.Markets, now)
	if errors.Is(err, snapshot.ErrIncompleteMarket) {
		log.WithError(err).Debug("盘口不完整，跳过")
		return outcomeIncomplete, nil
	}
	if err != nil {
		return 0, err
	}

	if !snapshot.ShouldLog(snap, s.lastSnapshot(ctx, &fx, log)) {
		return outcomeUnchanged, nil
	}

	if err := s.store.Append(ctx, &fx, snap, ff.Markets); err != nil {
		return 0, err
	}
	for _, m := range s.mirrors {
		if err := m.Append(ctx, &fx, snap, ff.Markets); err != nil {
			log.WithError(err).Warn("镜像写入失败")
		}
	}
	log.WithFields(logrus.Fields{
		"status": snap.Status,
		"score":  snap.Score,
		"top":    snap.OddsTop,
		"bottom": snap.OddsBottom,
	}).Info("记录快照")
	return outcomeWritten, nil
}

// isSealed 主表读取失败时依次查询镜像；都不可用时按未封存处理，宁可多写一行也不漏记
func (s *RecordService) isSealed(ctx context.Context, fx *model.Fixture, log *logrus.Entry) bool {
	sealed, err := s.store.IsSealed(ctx, fx)
	if err == nil {
		return sealed
	}
	log.WithError(err).Warn("读取封存状态失败，尝试镜像")
	for _, m := range s.mirrors {
		sealed, mErr := m.IsSealed(ctx, fx)
		if mErr == nil {
			return sealed
		}
		log.WithError(mErr).Warn("镜像读取封存状态失败")
	}
	return false
}

// lastSnapshot 同 isSealed 的回退顺序；都不可用时按无记录处理
func (s *RecordService) lastSnapshot(ctx context.Context, fx *model.Fixture, log *logrus.Entry) *model.Snapshot {
	last, err := s.store.LastSnapshot(ctx, fx)
	if err == nil {
		return last
	}
	log.WithError(err).Warn("读取最近快照失败，尝试镜像")
	for _, m := range s.mirrors {
		last, mErr := m.LastSnapshot(ctx, fx)
		if mErr == nil {
			return last
		}
		log.WithError(mErr).Warn("镜像读取最近快照失败")
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"OddsRecorder/internal/interfaces"
	"OddsRecorder/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ interfaces.SnapshotStore = (*SnapshotRepository)(nil)
	_ interfaces.FixtureReader = (*SnapshotRepository)(nil)
)

// SnapshotRepository CSV 表的 PostgreSQL 镜像：fixtures 每场一行，snapshots 每次追加一行
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// LastSnapshot 最近一行，没有时返回 nil
func (r *SnapshotRepository) LastSnapshot(ctx context.Context, fixture *model.Fixture) (*model.Snapshot, error) {
	var rec model.SnapshotRecord
	err := r.db.WithContext(ctx).
		Where("fixture_key = ?", fixture.Key).
		Order("id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询最近快照失败: %w", err)
	}
	return rec.ToSnapshot(), nil
}

// IsSealed 比赛是否已写入终局行
func (r *SnapshotRepository) IsSealed(ctx context.Context, fixture *model.Fixture) (bool, error) {
	var rec model.FixtureRecord
	err := r.db.WithContext(ctx).
		Select("sealed").
		Where("fixture_key = ?", fixture.Key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("查询比赛状态失败: %w", err)
	}
	return rec.Sealed, nil
}

// Append 事务内 upsert 比赛行并追加快照行；sealed 一旦为 true 不再回退
func (r *SnapshotRepository) Append(ctx context.Context, fixture *model.Fixture, snap *model.Snapshot, raw model.RawMarkets) error {
	rawOdds, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("序列化盘口原文失败: %w", err)
	}
	recordedAt := snap.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	fx := &model.FixtureRecord{
		FixtureKey: fixture.Key,
		League:     fixture.League,
		Home:       fixture.Home,
		Away:       fixture.Away,
		StartTime:  fixture.StartTime,
		LastStatus: snap.Status,
		Sealed:     snap.IsFinal(),
		CreatedAt:  recordedAt,
		UpdatedAt:  recordedAt,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fixture_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_status": snap.Status,
			"sealed":      gorm.Expr("fixtures.sealed OR ?", snap.IsFinal()),
			"updated_at":  recordedAt,
		}),
	}).Create(fx).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("保存比赛失败: %w, key: %s", err, fixture.Key)
	}

	rec := &model.SnapshotRecord{
		SnapshotUUID:   uuid.NewString(),
		FixtureKey:     fixture.Key,
		Status:         snap.Status,
		Score:          snap.Score,
		HandicapTop:    snap.HandicapTop,
		OddsTop:        snap.OddsTop,
		HandicapBottom: snap.HandicapBottom,
		OddsBottom:     snap.OddsBottom,
		OverUnder:      snap.OverUnder,
		OddsOver:       snap.OddsOver,
		OddsUnder:      snap.OddsUnder,
		MoneylineHome:  snap.MoneylineHome,
		MoneylineDraw:  snap.MoneylineDraw,
		MoneylineAway:  snap.MoneylineAway,
		RawOdds:        datatypes.JSON(rawOdds),
		RecordedAt:     recordedAt,
	}
	if err := tx.Create(rec).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("保存快照失败: %w, key: %s", err, fixture.Key)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// ListFixtures 按开赛时间倒序分页
func (r *SnapshotRepository) ListFixtures(ctx context.Context, page, pageSize int) ([]*model.FixtureRecord, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	db := r.db.WithContext(ctx).Model(&model.FixtureRecord{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var fixtures []*model.FixtureRecord
	if err := db.
		Order("start_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&fixtures).Error; err != nil {
		return nil, 0, err
	}
	return fixtures, total, nil
}

// ListSnapshots 一场比赛的全部快照，按写入顺序
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, fixtureKey string) ([]*model.SnapshotRecord, error) {
	var snaps []*model.SnapshotRecord
	if err := r.db.WithContext(ctx).
		Where("fixture_key = ?", fixtureKey).
		Order("id ASC").
		Find(&snaps).Error; err != nil {
		return nil, err
	}
	return snaps, nil
}

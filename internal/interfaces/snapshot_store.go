package interfaces

import (
	"context"

	"OddsRecorder/internal/model"
)

// SnapshotStore 每场比赛一张只追加的快照表
type SnapshotStore interface {
	// LastSnapshot 最近一行，没有时返回 nil
	LastSnapshot(ctx context.Context, fixture *model.Fixture) (*model.Snapshot, error)
	// IsSealed 是否已写入终局行
	IsSealed(ctx context.Context, fixture *model.Fixture) (bool, error)
	// Append 追加一行；首次写入时带表头
	Append(ctx context.Context, fixture *model.Fixture, snap *model.Snapshot, raw model.RawMarkets) error
}

// FixtureReader 查询已记录的比赛与快照（供 HTTP 接口）
type FixtureReader interface {
	ListFixtures(ctx context.Context, page, pageSize int) ([]*model.FixtureRecord, int64, error)
	ListSnapshots(ctx context.Context, fixtureKey string) ([]*model.SnapshotRecord, error)
}

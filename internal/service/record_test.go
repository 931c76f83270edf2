package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"OddsRecorder/internal/config"
	"OddsRecorder/internal/interfaces"
	"OddsRecorder/internal/model"
	"OddsRecorder/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeFeed struct {
	fixtures  []*model.FeedFixture
	secondary int
	err       error
}

func (f *fakeFeed) GetName() string { return "fake" }

func (f *fakeFeed) FetchCompetitions(context.Context) ([]model.RawCompetition, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []model.RawCompetition{{Name: "stub"}}, nil
}

func (f *fakeFeed) ConvertToFixtures([]model.RawCompetition) interfaces.ConvertResult {
	return interfaces.ConvertResult{Fixtures: f.fixtures, Secondary: f.secondary}
}

type recordingStore struct {
	appended  []*model.Snapshot
	appendErr error
	readErr   error
	sealed    bool
	reads     int
}

func (s *recordingStore) LastSnapshot(context.Context, *model.Fixture) (*model.Snapshot, error) {
	s.reads++
	if s.readErr != nil {
		return nil, s.readErr
	}
	if len(s.appended) == 0 {
		return nil, nil
	}
	return s.appended[len(s.appended)-1], nil
}

func (s *recordingStore) IsSealed(context.Context, *model.Fixture) (bool, error) {
	s.reads++
	if s.readErr != nil {
		return false, s.readErr
	}
	return s.sealed, nil
}

func (s *recordingStore) Append(_ context.Context, _ *model.Fixture, snap *model.Snapshot, _ model.RawMarkets) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, snap)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fullMarkets(top, bottom string) model.RawMarkets {
	return model.RawMarkets{
		Handicap:  []string{"0.25 1 h " + top + "*100h " + bottom + "*100a"},
		OverUnder: []string{"2.5 1 h 0.88*100h 0.98*100a"},
		Moneyline: []string{"2.40*100h 3.10*100d 2.85*100a"},
	}
}

func liveFixture(elapsedMin int64, secondHalf bool, markets model.RawMarkets) *model.FeedFixture {
	return &model.FeedFixture{
		Fixture: model.Fixture{
			League:    "Premier League",
			Home:      "Arsenal",
			Away:      "Chelsea",
			StartTime: testNow.Add(-20 * time.Minute),
		},
		Live: model.LiveState{
			ElapsedMs:  elapsedMin * 60000,
			SecondHalf: secondHalf,
			Score:      model.ScorePair{Home: 1},
		},
		Markets: markets,
	}
}

func newTestService(t *testing.T, feed interfaces.FeedAdapter, mirrors ...interfaces.SnapshotStore) (*RecordService, *repository.CSVTableStore) {
	t.Helper()
	store, err := repository.NewCSVTableStore(t.TempDir(), quietLogger())
	require.NoError(t, err)
	svc := NewRecordService(feed, store, config.SyncConfig{
		Lookahead:      6 * time.Hour,
		ImminentWindow: 15 * time.Minute,
	}, quietLogger(), mirrors...)
	svc.SetClock(func() time.Time { return testNow })
	return svc, store
}

func tableRows(t *testing.T, store *repository.CSVTableStore, f model.Fixture) int {
	t.Helper()
	f.Key = model.FixtureKey(f.League, f.Home, f.Away, f.StartTime, time.Local, false)
	data, err := os.ReadFile(store.Path(&f))
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	require.NoError(t, err)
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n - 1
}

func TestRecordService_IdempotentPass(t *testing.T) {
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(12, false, fullMarkets("0.95", "0.91"))}}
	svc, store := newTestService(t, feed)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Fixtures)
	assert.Equal(t, 1, sum.Written)

	sum, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Written)
	assert.Equal(t, 1, sum.Unchanged)
	assert.Equal(t, 1, tableRows(t, store, feed.fixtures[0].Fixture))

	last, err := store.LastSnapshot(context.Background(), &model.Fixture{Key: "Premier_League_-_Arsenal_vs_Chelsea"})
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "1H 12'", last.Status)
}

func TestRecordService_PriceMoveAppends(t *testing.T) {
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(12, false, fullMarkets("0.95", "0.91"))}}
	svc, store := newTestService(t, feed)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	feed.fixtures = []*model.FeedFixture{liveFixture(14, false, fullMarkets("0.95", "0.93"))}
	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 2, tableRows(t, store, feed.fixtures[0].Fixture))
}

func TestRecordService_SealedAfterFinal(t *testing.T) {
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(51, true, fullMarkets("0.95", "0.91"))}}
	svc, store := newTestService(t, feed)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)

	// 终局后即使赔率变化也不再追加
	feed.fixtures = []*model.FeedFixture{liveFixture(52, true, fullMarkets("1.10", "0.70"))}
	sum, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Written)
	assert.Equal(t, 1, sum.Sealed)
	assert.Equal(t, 1, tableRows(t, store, feed.fixtures[0].Fixture))
}

func TestRecordService_SkipsIncompleteAndOutOfWindow(t *testing.T) {
	partial := fullMarkets("0.95", "0.91")
	partial.Moneyline = nil
	incomplete := liveFixture(12, false, partial)

	later := liveFixture(0, false, fullMarkets("0.95", "0.91"))
	later.Fixture.Home = "Liverpool"
	later.Fixture.StartTime = testNow.Add(7 * time.Hour)

	upcoming := liveFixture(0, false, fullMarkets("0.95", "0.91"))
	upcoming.Fixture.Home = "Everton"
	upcoming.Fixture.StartTime = testNow.Add(time.Hour)

	feed := &fakeFeed{fixtures: []*model.FeedFixture{incomplete, later, upcoming}, secondary: 4}
	svc, store := newTestService(t, feed)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Fixtures)
	assert.Equal(t, 4, sum.Secondary)
	assert.Equal(t, 1, sum.Incomplete)
	assert.Equal(t, 1, sum.OutOfWindow)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 0, tableRows(t, store, incomplete.Fixture))
	assert.Equal(t, 0, tableRows(t, store, later.Fixture))
	assert.Equal(t, 1, tableRows(t, store, upcoming.Fixture))
}

func TestRecordService_FetchErrorWritesNothing(t *testing.T) {
	feed := &fakeFeed{err: errors.New("HTTP 503: maintenance")}
	svc, store := newTestService(t, feed)

	sum, err := svc.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.Written)

	entries, err := os.ReadDir(filepath.Dir(store.Path(&model.Fixture{Key: "x"})))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordService_MirrorFailureDoesNotBlock(t *testing.T) {
	good := &recordingStore{}
	bad := &recordingStore{appendErr: errors.New("db down")}
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(30, false, fullMarkets("0.95", "0.91"))}}
	svc, _ := newTestService(t, feed, bad, good)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 0, sum.Failed)
	require.Len(t, good.appended, 1)
	assert.Equal(t, "1H 30'", good.appended[0].Status)
	assert.Equal(t, "1 - 0", good.appended[0].Score)
}

func TestRecordService_PrimaryFailureIsIsolated(t *testing.T) {
	primary := &recordingStore{appendErr: errors.New("disk full")}
	feed := &fakeFeed{fixtures: []*model.FeedFixture{
		liveFixture(30, false, fullMarkets("0.95", "0.91")),
		liveFixture(31, false, fullMarkets("0.96", "0.90")),
	}}
	svc := NewRecordService(feed, primary, config.SyncConfig{}, quietLogger())
	svc.SetClock(func() time.Time { return testNow })

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Fixtures)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 0, sum.Written)
}

func corruptTable(t *testing.T, store *repository.CSVTableStore, f model.Fixture) string {
	t.Helper()
	f.Key = model.FixtureKey(f.League, f.Home, f.Away, f.StartTime, time.Local, false)
	path := store.Path(&f)
	require.NoError(t, os.WriteFile(path, []byte("Time,\"unterminated\n"), 0o644))
	return path
}

func TestRecordService_UnreadableTableFailsOpen(t *testing.T) {
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(12, false, fullMarkets("0.95", "0.91"))}}
	svc, store := newTestService(t, feed)
	path := corruptTable(t, store, feed.fixtures[0].Fixture)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 0, sum.Failed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1H 12',")
}

func TestRecordService_UnreadableTableUsesMirrorSeal(t *testing.T) {
	mirror := &recordingStore{sealed: true}
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(52, true, fullMarkets("1.10", "0.70"))}}
	svc, store := newTestService(t, feed, mirror)
	corruptTable(t, store, feed.fixtures[0].Fixture)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sealed)
	assert.Equal(t, 0, sum.Written)
	assert.Empty(t, mirror.appended)
}

func TestRecordService_UnreadableTableUsesMirrorLastRow(t *testing.T) {
	mirror := &recordingStore{appended: []*model.Snapshot{{Status: "1H 10'", OddsTop: "0.95", OddsBottom: "0.91"}}}
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(12, false, fullMarkets("0.950", "0.91"))}}
	svc, store := newTestService(t, feed, mirror)
	corruptTable(t, store, feed.fixtures[0].Fixture)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Unchanged)
	assert.Equal(t, 0, sum.Written)
	assert.Len(t, mirror.appended, 1)
}

func TestRecordService_MirrorReadsOnlyOnTableFailure(t *testing.T) {
	mirror := &recordingStore{sealed: true}
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(12, false, fullMarkets("0.95", "0.91"))}}
	svc, _ := newTestService(t, feed, mirror)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 0, mirror.reads)
}

func TestRecordService_AllReadsFailStillWrites(t *testing.T) {
	mirror := &recordingStore{readErr: errors.New("db down")}
	feed := &fakeFeed{fixtures: []*model.FeedFixture{liveFixture(12, false, fullMarkets("0.95", "0.91"))}}
	svc, store := newTestService(t, feed, mirror)
	corruptTable(t, store, feed.fixtures[0].Fixture)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 2, mirror.reads)
	assert.Len(t, mirror.appended, 1)
}

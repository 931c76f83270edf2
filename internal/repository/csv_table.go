package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"OddsRecorder/internal/interfaces"
	"OddsRecorder/internal/model"
	"OddsRecorder/internal/odds"

	"github.com/sirupsen/logrus"
)

const tableExt = ".csv"

// utf8BOM 表格软件按 UTF-8 打开
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var _ interfaces.SnapshotStore = (*CSVTableStore)(nil)

// CSVTableStore 每场比赛一个只追加的 CSV 文件，文件名为 Fixture.Key
type CSVTableStore struct {
	dir    string
	logger *logrus.Logger
}

// NewCSVTableStore 创建输出目录（已存在则复用）
func NewCSVTableStore(dir string, logger *logrus.Logger) (*CSVTableStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	return &CSVTableStore{dir: dir, logger: logger}, nil
}

// Path 比赛对应的表文件路径
func (s *CSVTableStore) Path(fixture *model.Fixture) string {
	return filepath.Join(s.dir, fixture.Key+tableExt)
}

// LastSnapshot 最后一行；文件不存在或只有表头时返回 nil
func (s *CSVTableStore) LastSnapshot(_ context.Context, fixture *model.Fixture) (*model.Snapshot, error) {
	rows, err := s.readRows(s.Path(fixture))
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return model.SnapshotFromColumns(rows[len(rows)-1]), nil
}

// IsSealed 表中是否已有终局行
func (s *CSVTableStore) IsSealed(_ context.Context, fixture *model.Fixture) (bool, error) {
	rows, err := s.readRows(s.Path(fixture))
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if len(r) > 0 && r[0] == model.StatusFinal {
			return true, nil
		}
	}
	return false, nil
}

// Append 追加一行；文件为空时先写 BOM 与表头。盘口标签按表格安全形式写入
func (s *CSVTableStore) Append(_ context.Context, fixture *model.Fixture, snap *model.Snapshot, _ model.RawMarkets) error {
	path := s.Path(fixture)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("打开表文件失败: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("读取表文件信息失败: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		buf.Write(utf8BOM)
		if err := w.Write(model.SnapshotHeader); err != nil {
			return fmt.Errorf("写入表头失败: %w", err)
		}
	}
	if err := w.Write(tableColumns(snap)); err != nil {
		return fmt.Errorf("写入快照失败: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("写入快照失败: %w", err)
	}

	// 表头与数据行一次写入
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("写入表文件失败: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"file":   filepath.Base(path),
		"status": snap.Status,
	}).Debug("快照已追加")
	return nil
}

func tableColumns(snap *model.Snapshot) []string {
	cols := snap.Columns()
	cols[1] = odds.SpreadsheetLiteral(snap.HandicapTop)
	cols[3] = odds.SpreadsheetLiteral(snap.HandicapBottom)
	cols[5] = odds.SpreadsheetLiteral(snap.OverUnder)
	return cols
}

// readRows 文件不存在返回空
func (s *CSVTableStore) readRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取表文件失败: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("解析表文件失败: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

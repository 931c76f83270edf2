package sb21

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"OddsRecorder/internal/adapter"
	"OddsRecorder/internal/config"
	"OddsRecorder/internal/interfaces"
	"OddsRecorder/internal/model"
	"OddsRecorder/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

const (
	Name = "sb21"

	// halfEndedIndicator 字段 "10" 为 4 表示上半场结束
	halfEndedIndicator = 4
	// competitionLists 响应数组前两个元素为联赛列表
	competitionLists = 2
	maxErrorBody     = 512

	defaultRetryDelay = 2 * time.Second
)

var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04Z07:00",
}

func init() {
	adapter.Register(Name, NewAdapter)
}

type Adapter struct {
	cfg        *config.FeedConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewAdapter(cfg *config.FeedConfig, logger *logrus.Logger) interfaces.FeedAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// GetName ========== 实现FeedAdapter接口 ==========
func (a *Adapter) GetName() string {
	return Name
}

// FetchCompetitions 拉取并解码联赛列表；失败按 retry_count 重试
func (a *Adapter) FetchCompetitions(ctx context.Context) ([]model.RawCompetition, error) {
	endpoint := a.cfg.BaseURL
	if a.cfg.Query != "" {
		endpoint += "?" + a.cfg.Query
	}

	attempts := a.cfg.RetryCount + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		comps, err := a.fetchOnce(ctx, endpoint)
		if err == nil {
			return comps, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		a.logger.WithError(err).WithFields(logrus.Fields{
			"attempt": i,
			"of":      attempts,
		}).Warn("拉取数据源失败")
		if i == attempts {
			break
		}
		if err := sleepCtx(ctx, a.retryDelay(i)); err != nil {
			lastErr = err
			break
		}
	}
	return nil, fmt.Errorf("拉取%s失败: %w", Name, lastErr)
}

// retryDelay 线性退避
func (a *Adapter) retryDelay(attempt int) time.Duration {
	d := a.cfg.RetryDelay
	if d <= 0 {
		d = defaultRetryDelay
	}
	return d * time.Duration(attempt)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (a *Adapter) fetchOnce(ctx context.Context, endpoint string) ([]model.RawCompetition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return a.DecodePayload(payload), nil
}

// competitionEnvelope 比赛逐条解码，单场格式错误不影响其他比赛
type competitionEnvelope struct {
	Name    string            `json:"1"`
	Matches []json.RawMessage `json:"2"`
}

// DecodePayload 响应数组前两个元素为联赛列表，任一缺失或格式错误时跳过
func (a *Adapter) DecodePayload(payload []json.RawMessage) []model.RawCompetition {
	var comps []model.RawCompetition
	for i := 0; i < len(payload) && i < competitionLists; i++ {
		var envelopes []competitionEnvelope
		if err := json.Unmarshal(payload[i], &envelopes); err != nil {
			a.logger.WithError(err).WithField("index", i).Warn("联赛列表格式错误，跳过")
			continue
		}
		for _, env := range envelopes {
			comp := model.RawCompetition{Name: env.Name}
			for _, raw := range env.Matches {
				var m model.RawMatch
				if err := json.Unmarshal(raw, &m); err != nil {
					a.logger.WithError(err).WithField("league", env.Name).Warn("比赛格式错误，跳过")
					continue
				}
				comp.Matches = append(comp.Matches, m)
			}
			comps = append(comps, comp)
		}
	}
	return comps
}

// ConvertToFixtures 数字键映射为具名字段；Fixture.Key 由调用方按输出配置生成
func (a *Adapter) ConvertToFixtures(comps []model.RawCompetition) interfaces.ConvertResult {
	var res interfaces.ConvertResult
	for _, comp := range comps {
		league := comp.Name
		if league == "" {
			league = "Unknown"
		}
		for _, m := range comp.Matches {
			if m.IsSecondary() {
				res.Secondary++
				continue
			}
			start, err := parseStartTime(m.StartTime)
			if err != nil {
				res.Invalid++
				a.logger.WithError(err).WithFields(logrus.Fields{
					"league": league,
					"home":   m.Home,
					"away":   m.Away,
				}).Warn("开赛时间无法解析，跳过")
				continue
			}
			res.Fixtures = append(res.Fixtures, &model.FeedFixture{
				Fixture: model.Fixture{
					League:    league,
					Home:      orDefault(m.Home, "home"),
					Away:      orDefault(m.Away, "away"),
					StartTime: start.UTC(),
				},
				Live: liveState(m),
				Markets: model.RawMarkets{
					Handicap:  m.Odds.Handicap,
					OverUnder: m.Odds.OverUnder,
					Moneyline: m.Odds.Moneyline,
				},
			})
		}
	}
	return res
}

func liveState(m model.RawMatch) model.LiveState {
	live := model.LiveState{
		ElapsedMs:     int64(m.ElapsedMs),
		HalfIndicator: int(m.Half),
		HalfEnded:     int(m.Half) == halfEndedIndicator,
		SecondHalf:    bool(m.SecondHalf),
		Score: model.ScorePair{
			Home: intValue(m.Score.Home),
			Away: intValue(m.Score.Away),
		},
	}
	if m.Score.HalfHome != nil && m.Score.HalfAway != nil {
		live.HalfTimeScore = &model.ScorePair{
			Home: intValue(m.Score.HalfHome),
			Away: intValue(m.Score.HalfAway),
		}
	}
	return live
}

func parseStartTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("开赛时间为空")
	}
	var parseErr error
	for _, layout := range startTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, parseErr
}

func intValue(v *model.FlexInt) int {
	if v == nil {
		return 0
	}
	return int(*v)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

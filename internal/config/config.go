package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（与 config/config.yaml 对应）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // HTTP 触发/查询接口
	Log      LogConfig      `mapstructure:"log"`      // 日志
	Postgres PostgresConfig `mapstructure:"postgres"` // 快照镜像库
	Sync     SyncConfig     `mapstructure:"sync"`     // 单次抓取-解析-写入流程
	Feed     FeedConfig     `mapstructure:"feed"`     // 数据源
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"` // false 时跑完一次即退出
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // debug/info/warn/error
}

// PostgresConfig PostgreSQL 镜像配置
type PostgresConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SyncConfig 单次同步配置
type SyncConfig struct {
	OutputDir      string        `mapstructure:"output_dir"`      // 每场比赛一个 CSV 表
	Lookahead      time.Duration `mapstructure:"lookahead"`       // 超过该时长才开赛的比赛跳过
	ImminentWindow time.Duration `mapstructure:"imminent_window"` // 开赛前该时长内显示 "Before match"
	Timezone       string        `mapstructure:"timezone"`        // 显示时区，空为本地时区
	TimePrefix     bool          `mapstructure:"time_prefix"`     // 文件名加 YYYYMMDD_HHMM_ 前缀
}

// FeedConfig 数据源配置
type FeedConfig struct {
	Name       string            `mapstructure:"name"`        // 适配器名称（见 adapter 注册表）
	BaseURL    string            `mapstructure:"base_url"`    // API 地址
	Query      string            `mapstructure:"query"`       // 查询字符串
	Timeout    int               `mapstructure:"timeout"`     // 请求超时（秒）
	RetryCount int               `mapstructure:"retry_count"` // 重试次数
	RetryDelay time.Duration     `mapstructure:"retry_delay"` // 重试间隔，第 n 次重试等待 n 倍
	Proxy      string            `mapstructure:"proxy"`       // 代理地址
	Headers    map[string]string `mapstructure:"headers"`     // 附加请求头
}

// Location 返回显示时区；无法解析时退回本地时区
func (s SyncConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// .env 可不存在
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("sync.output_dir", "sv88")
	v.SetDefault("sync.lookahead", 6*time.Hour)
	v.SetDefault("sync.imminent_window", 15*time.Minute)
	v.SetDefault("sync.time_prefix", true)
	v.SetDefault("feed.name", "sb21")
	v.SetDefault("feed.base_url", "https://be.sb21.net/api/v2/getEvent")
	v.SetDefault("feed.query", "timeRange=today&sportType=1_1&sportId=1&oddsStyle=ma&pinLeague=false")
	v.SetDefault("feed.timeout", 15)
	v.SetDefault("feed.retry_count", 1)
	v.SetDefault("feed.retry_delay", 2*time.Second)
	v.SetDefault("feed.headers", map[string]string{
		"accept":       "application/json",
		"content-type": "application/json",
		"lng":          "vi",
	})
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("FEED_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("FEED_PROXY"); v != "" {
		cfg.Feed.Proxy = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Sync.OutputDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

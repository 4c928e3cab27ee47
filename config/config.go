package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"optimus/backend/internal/engine"
	"optimus/backend/internal/model"
)

// Config 应用全局配置结构体
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Log          LogConfig          `mapstructure:"log"`
	Ingest       IngestConfig       `mapstructure:"ingest"`
	Conflict     ConflictConfig     `mapstructure:"conflict"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（用于接口限流，可不配置）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// IngestConfig 课表文件导入配置
type IngestConfig struct {
	MaxUploadMB int `mapstructure:"max_upload_mb"`
}

// MaxUploadBytes 上传文件大小上限（字节）
func (c *IngestConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// ConflictConfig 冲突检测配置
type ConflictConfig struct {
	// InstructorMatch members（按 , & / 拆分比较）或 verbatim（整串比较）
	InstructorMatch string `mapstructure:"instructor_match"`
}

// Policy 转为检测器策略
func (c *ConflictConfig) Policy() engine.MatchPolicy {
	return engine.ParseMatchPolicy(c.InstructorMatch)
}

// AvailabilityConfig 共同空闲时间窗口
type AvailabilityConfig struct {
	Days      []string `mapstructure:"days"`
	StartHour int      `mapstructure:"start_hour"`
	EndHour   int      `mapstructure:"end_hour"`
}

// Window 转为计算窗口
func (c *AvailabilityConfig) Window() (engine.Window, error) {
	w := engine.Window{StartHour: c.StartHour, EndHour: c.EndHour}
	for _, name := range c.Days {
		d, err := model.ParseWeekday(name)
		if err != nil {
			return engine.Window{}, err
		}
		w.Days = append(w.Days, d)
	}
	if err := w.Validate(); err != nil {
		return engine.Window{}, err
	}
	return w, nil
}

// RateLimitConfig 接口限流配置（依赖 Redis）
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	UploadPerMin  int  `mapstructure:"upload_per_min"`
	ComputePerMin int  `mapstructure:"compute_per_min"`
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "optimus")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("ingest.max_upload_mb", 10)

	v.SetDefault("conflict.instructor_match", "members")

	v.SetDefault("availability.days", []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"})
	v.SetDefault("availability.start_hour", 8)
	v.SetDefault("availability.end_hour", 18)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.upload_per_min", 20)
	v.SetDefault("rate_limit.compute_per_min", 120)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("OPTIMUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Ingest.MaxUploadMB <= 0 {
		return fmt.Errorf("配置校验失败: ingest.max_upload_mb 必须大于 0")
	}
	switch strings.ToLower(strings.TrimSpace(c.Conflict.InstructorMatch)) {
	case "members", "verbatim":
	default:
		return fmt.Errorf("配置校验失败: conflict.instructor_match 只能为 members 或 verbatim")
	}
	if _, err := c.Availability.Window(); err != nil {
		return fmt.Errorf("配置校验失败: availability %w", err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.UploadPerMin <= 0 || c.RateLimit.ComputePerMin <= 0) {
		return fmt.Errorf("配置校验失败: rate_limit 每分钟次数必须大于 0")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("配置校验失败: metrics.path 必须以 / 开头")
	}
	return nil
}

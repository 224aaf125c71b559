package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/gonewx/lanewave/pkg/embedded"
)

// AppConfig 运行时配置（TOML）
type AppConfig struct {
	Simulation SimulationConfig `toml:"simulation"`
	Level      LevelRefConfig   `toml:"level"`
	Script     ScriptConfig     `toml:"script"`
	Logging    LoggingConfig    `toml:"logging"`
	Storage    StorageConfig    `toml:"storage"`
	View       ViewConfig       `toml:"view"`
}

// SimulationConfig 固定步长模拟参数
type SimulationConfig struct {
	TickRate         int     `toml:"tick_rate"`           // 每秒固定步数
	MaxStepsPerFrame int     `toml:"max_steps_per_frame"` // 单帧最多追赶的步数
	MaxFrameDelta    float64 `toml:"max_frame_delta"`     // 单帧时间上限（秒）
	Seed             int64   `toml:"seed"`                // 随机种子，0 表示使用当前时间
	AutoStart        bool    `toml:"auto_start"`          // 启动后立即开始波次
}

// TickDuration 单个固定步长（秒）
func (c SimulationConfig) TickDuration() float64 {
	return 1.0 / float64(c.TickRate)
}

type LevelRefConfig struct {
	Path string `toml:"path"`
}

type ScriptConfig struct {
	Path string `toml:"path"` // 可选的 Lua 波次脚本
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// StorageConfig 进度存储（gdata）
type StorageConfig struct {
	Enabled bool   `toml:"enabled"`
	AppName string `toml:"app_name"`
}

// ViewConfig 俯视视图参数（桌面查看器）
type ViewConfig struct {
	Width   int     `toml:"width"`
	Height  int     `toml:"height"`
	Scale   float64 `toml:"scale"`    // 世界单位 -> 像素
	OriginX float64 `toml:"origin_x"` // 世界原点在屏幕上的位置
	OriginY float64 `toml:"origin_y"`
}

// LoadAppConfig 读取 TOML 配置，缺省字段使用默认值
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultAppConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultAppConfig 默认运行时配置
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Simulation: SimulationConfig{
			TickRate:         50, // 0.02s
			MaxStepsPerFrame: 5,
			MaxFrameDelta:    0.25,
			Seed:             0,
			AutoStart:        false,
		},
		Level: LevelRefConfig{
			Path: "data/levels/garden.yaml",
		},
		Script: ScriptConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Enabled: true,
			AppName: "lanewave",
		},
		View: ViewConfig{
			Width:   960,
			Height:  640,
			Scale:   40,
			OriginX: 480,
			OriginY: 600,
		},
	}
}

func (c *AppConfig) validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %d", c.Simulation.TickRate)
	}
	if c.Simulation.MaxStepsPerFrame <= 0 {
		return fmt.Errorf("simulation.max_steps_per_frame must be positive, got %d", c.Simulation.MaxStepsPerFrame)
	}
	if c.Simulation.MaxFrameDelta <= 0 {
		return fmt.Errorf("simulation.max_frame_delta must be positive, got %v", c.Simulation.MaxFrameDelta)
	}
	if c.Level.Path == "" {
		return fmt.Errorf("level.path is required")
	}
	if c.Storage.Enabled && c.Storage.AppName == "" {
		return fmt.Errorf("storage.app_name is required when storage is enabled")
	}
	return nil
}

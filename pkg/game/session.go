package game

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gonewx/lanewave/pkg/config"
	"github.com/gonewx/lanewave/pkg/embedded"
	"github.com/gonewx/lanewave/pkg/scripting"
	"github.com/gonewx/lanewave/pkg/systems"
	"go.uber.org/zap"
)

// Session 一次关卡运行所需的对象
//
// 桌面查看器和无界面模拟器共用：加载关卡、组装模拟、
// 可选地挂载 Lua 波次脚本，并打开该关卡的进度存储。
type Session struct {
	Level      *config.LevelConfig
	Simulation *systems.Simulation
	Progress   *ProgressStore
	Seed       int64

	script *scripting.Engine
	logger *zap.Logger
}

// OpenSession 按运行时配置打开关卡
//
// 关卡结构错误或脚本加载失败时返回错误；存储不可用时降级为内存进度。
func OpenSession(cfg *config.AppConfig, levelPath string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	level, err := config.LoadLevelConfig(levelPath)
	if err != nil {
		return nil, err
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim := systems.NewSimulation(level, nil, rand.New(rand.NewSource(seed)), logger)
	s := &Session{
		Level:      level,
		Simulation: sim,
		Seed:       seed,
		logger:     logger.Named("Session"),
	}

	if cfg.Script.Path != "" {
		engine, err := openScript(cfg.Script.Path, logger)
		if err != nil {
			sim.Close()
			return nil, fmt.Errorf("wave script: %w", err)
		}
		s.script = engine
		sim.Scheduler.SetWaveSizer(engine)
	}

	if cfg.Storage.Enabled {
		s.Progress = OpenProgressStore(cfg.Storage, level.ID, logger)
	} else {
		s.Progress = NewProgressStore(nil, level.ID, logger)
	}

	s.logger.Info("session opened",
		zap.String("level", level.ID),
		zap.String("path", levelPath),
		zap.Int64("seed", seed),
		zap.Bool("script", s.script != nil),
		zap.Bool("persistent", s.Progress.Persistent()))

	return s, nil
}

// openScript 磁盘脚本优先，不存在时使用嵌入的脚本
func openScript(path string, logger *zap.Logger) (*scripting.Engine, error) {
	if _, err := os.Stat(path); err == nil {
		return scripting.NewEngine(path, logger)
	}
	source, err := embedded.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return scripting.NewEngineFromString(string(source), logger)
}

// Close 停止模拟、保存进度并释放脚本
func (s *Session) Close() error {
	s.Simulation.Close()
	if s.script != nil {
		s.script.Close()
		s.script = nil
	}
	return s.Progress.Close()
}

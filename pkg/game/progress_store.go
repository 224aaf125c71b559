package game

import (
	"fmt"

	"github.com/gonewx/lanewave/pkg/config"
	"github.com/gonewx/lanewave/pkg/event"
	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Progress 每个关卡持久化的进度
type Progress struct {
	Energy       int `yaml:"energy"`
	HighestWave  int `yaml:"highestWave"`
	TotalArrived int `yaml:"totalArrived"`
}

// 存储路径常量
const progressObject = "progress"

// ProgressStore 进度存储
// 负责关卡进度的加载、保存；订阅模拟事件更新内存中的进度
type ProgressStore struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存）
	levelID      string
	progress     Progress
	logger       *zap.Logger
	subs         event.Group
}

// OpenProgressStore 按存储配置打开进度存储
//
// 存储关闭或 gdata 初始化失败时返回降级模式的存储，不返回错误。
func OpenProgressStore(cfg config.StorageConfig, levelID string, logger *zap.Logger) *ProgressStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	var manager *gdata.Manager
	if cfg.Enabled {
		m, err := gdata.Open(gdata.Config{AppName: cfg.AppName})
		if err != nil {
			logger.Warn("progress storage unavailable, keeping progress in memory", zap.Error(err))
		} else {
			manager = m
		}
	}

	store := NewProgressStore(manager, levelID, logger)
	if err := store.Load(); err != nil {
		store.logger.Warn("failed to load progress, starting fresh", zap.Error(err))
	}
	return store
}

// NewProgressStore 创建进度存储（不加载）
func NewProgressStore(gdataManager *gdata.Manager, levelID string, logger *zap.Logger) *ProgressStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressStore{
		gdataManager: gdataManager,
		levelID:      levelID,
		logger:       logger.Named("ProgressStore"),
	}
}

// Persistent 是否能持久化
func (ps *ProgressStore) Persistent() bool {
	return ps.gdataManager != nil
}

// Load 从 gdata 加载进度
//
// gdataManager 为 nil 或数据不存在时使用空进度
func (ps *ProgressStore) Load() error {
	ps.progress = Progress{}

	if ps.gdataManager == nil {
		return nil
	}
	if !ps.gdataManager.ObjectPropExists(progressObject, ps.levelID) {
		return nil
	}

	data, err := ps.gdataManager.LoadObjectProp(progressObject, ps.levelID)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	var loaded Progress
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal progress: %w", err)
	}

	ps.progress = loaded
	ps.logger.Info("progress loaded",
		zap.String("level", ps.levelID),
		zap.Int("energy", loaded.Energy),
		zap.Int("highestWave", loaded.HighestWave))
	return nil
}

// Save 保存进度到 gdata
//
// gdataManager 为 nil 时直接返回（降级模式，不报错）
func (ps *ProgressStore) Save() error {
	if ps.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(&ps.progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := ps.gdataManager.SaveObjectProp(progressObject, ps.levelID, data); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	ps.logger.Debug("progress saved", zap.String("level", ps.levelID))
	return nil
}

// Progress 当前进度
func (ps *ProgressStore) Progress() Progress {
	return ps.progress
}

// Attach 订阅模拟事件；Close 时释放
func (ps *ProgressStore) Attach(bus *event.Bus) {
	ps.subs.Add(bus.Subscribe(event.WaveStarted, func(e event.Event) {
		if data, ok := e.Data.(event.WaveData); ok && data.Wave > ps.progress.HighestWave {
			ps.progress.HighestWave = data.Wave
		}
	}))
	ps.subs.Add(bus.Subscribe(event.AgentArrived, func(event.Event) {
		ps.progress.TotalArrived++
	}))
	ps.subs.Add(bus.Subscribe(event.EnergyChanged, func(e event.Event) {
		if data, ok := e.Data.(event.EnergyData); ok {
			ps.progress.Energy = data.Energy
		}
	}))
}

// Close 释放订阅并保存进度
func (ps *ProgressStore) Close() error {
	ps.subs.Close()
	return ps.Save()
}

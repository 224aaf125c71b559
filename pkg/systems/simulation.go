package systems

import (
	"math/rand"

	"github.com/gonewx/lanewave/pkg/components"
	"github.com/gonewx/lanewave/pkg/config"
	"github.com/gonewx/lanewave/pkg/ecs"
	"github.com/gonewx/lanewave/pkg/entities"
	"github.com/gonewx/lanewave/pkg/event"
	"go.uber.org/zap"
)

// Simulation 组合波次调度与路线移动的固定步长模拟
//
// 每个 Step 的顺序：调度器 -> 移动 -> 清理标记删除的实体。
// 本步长内生成的代理会在同一步长内移动一次。
type Simulation struct {
	EntityManager *ecs.EntityManager
	Bus           *event.Bus
	Factory       *entities.AgentFactory
	Movement      *MovementSystem
	Scheduler     *WaveSchedulerSystem

	level  *config.LevelConfig
	logger *zap.Logger

	ticks   int64
	elapsed float64
	arrived int
	subs    event.Group
}

// Stats 模拟运行统计
type Stats struct {
	Ticks        int64
	Elapsed      float64 // 秒
	Wave         int
	Phase        components.WavePhase
	ActiveAgents int
	TotalSpawned int
	Arrived      int
	Failures     int // 连续中止的刷怪阶段数
}

// NewSimulation 根据关卡配置组装模拟
//
// bus 为 nil 时创建新的事件总线；rng 为 nil 时按当前时间播种。
func NewSimulation(level *config.LevelConfig, bus *event.Bus, rng *rand.Rand, logger *zap.Logger) *Simulation {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bus == nil {
		bus = event.NewBus()
	}

	em := ecs.NewEntityManager()
	factory := entities.NewAgentFactory(em, level.Templates)
	movement := NewMovementSystem(em, bus, logger)
	scheduler := NewWaveSchedulerSystem(em, bus, factory, movement, WaveSchedulerConfigFromLevel(level), rng, logger)

	sim := &Simulation{
		EntityManager: em,
		Bus:           bus,
		Factory:       factory,
		Movement:      movement,
		Scheduler:     scheduler,
		level:         level,
		logger:        logger.Named("Simulation"),
	}
	sim.subs.Add(bus.Subscribe(event.AgentArrived, func(event.Event) { sim.arrived++ }))

	for _, warning := range level.Warnings() {
		sim.logger.Warn("level config", zap.String("level", level.ID), zap.String("warning", warning))
	}

	return sim
}

// Level 关卡配置
func (s *Simulation) Level() *config.LevelConfig {
	return s.level
}

// Step 推进一个固定步长
func (s *Simulation) Step(dt float64) {
	s.Scheduler.Update(dt)
	s.Movement.Update(dt)
	s.EntityManager.RemoveMarkedEntities()

	s.ticks++
	s.elapsed += dt
}

// Agents 当前存活的代理（按实体ID升序）
func (s *Simulation) Agents() []ecs.EntityID {
	return ecs.GetEntitiesWith2[*components.AgentComponent, *components.PositionComponent](s.EntityManager)
}

// Stats 返回当前统计
func (s *Simulation) Stats() Stats {
	state := s.Scheduler.State()
	return Stats{
		Ticks:        s.ticks,
		Elapsed:      s.elapsed,
		Wave:         state.Wave,
		Phase:        state.Phase,
		ActiveAgents: len(s.Agents()),
		TotalSpawned: state.TotalSpawned,
		Arrived:      s.arrived,
		Failures:     state.ConsecutiveFailures,
	}
}

// Close 释放模拟持有的订阅
func (s *Simulation) Close() {
	s.Scheduler.Stop()
	s.subs.Close()
}

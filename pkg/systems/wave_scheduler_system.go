package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gonewx/lanewave/pkg/components"
	"github.com/gonewx/lanewave/pkg/config"
	"github.com/gonewx/lanewave/pkg/ecs"
	"github.com/gonewx/lanewave/pkg/event"
	"github.com/gonewx/lanewave/pkg/utils"
	"go.uber.org/zap"
)

// 配置错误：本次刷怪阶段中止，调度器继续运行并在下一波重试
var (
	ErrNoTemplate   = errors.New("no agent template configured")
	ErrNoLanes      = errors.New("no lanes configured")
	ErrLaneTooShort = errors.New("lane needs at least 2 waypoints (start + next)")
	ErrNoMover      = errors.New("spawned agent has no mover")
)

// AgentFactory 按模板在指定位置生成代理
type AgentFactory interface {
	SpawnAgent(templateID string, pos utils.Vec3, rot utils.Quat) (ecs.EntityID, error)
}

// MoverInitializer 为代理分配路线；返回 false 表示代理没有移动器
type MoverInitializer interface {
	Init(entityID ecs.EntityID, path *components.WaypointPath) bool
}

// WaveSizer 决定每波生成的代理数量，base 为关卡配置值
type WaveSizer interface {
	AgentsForWave(wave, base int) int
}

// WaveSchedulerConfig 波次调度参数
type WaveSchedulerConfig struct {
	AgentTemplate    string
	Lanes            []*components.WaypointPath
	EnemiesPerWave   int
	SpawnInterval    float64 // 秒
	TimeBetweenWaves float64 // 秒
	Spacing          float64
}

// WaveSchedulerConfigFromLevel 从关卡配置构建调度参数
func WaveSchedulerConfigFromLevel(lc *config.LevelConfig) WaveSchedulerConfig {
	return WaveSchedulerConfig{
		AgentTemplate:    lc.AgentTemplate,
		Lanes:            lc.BuildLanes(),
		EnemiesPerWave:   lc.Wave.EnemiesPerWave,
		SpawnInterval:    lc.Wave.SpawnInterval,
		TimeBetweenWaves: lc.Wave.TimeBetweenWaves,
		Spacing:          lc.Wave.Spacing,
	}
}

// WaveSchedulerSystem 波次调度系统
//
// 职责：
//   - 无限循环：波次计数递增 -> 刷怪阶段 -> 波间冷却
//   - 刷怪阶段按 SpawnInterval 逐个生成代理，随机选择路线，沿路线反方向错开生成位置
//   - 配置错误只中止当前刷怪阶段，记录日志并发布 SpawnAborted
//
// 架构说明：
//   - 状态保存在 WaveSchedulerComponent 中（显式状态机 + 截止时刻）
//   - 每个固定步长最多恢复一次，每次恢复都以一次等待结束，
//     因此同一刷怪阶段的两个代理不会在同一步长内生成
type WaveSchedulerSystem struct {
	entityManager *ecs.EntityManager
	bus           *event.Bus
	factory       AgentFactory
	movers        MoverInitializer
	sizer         WaveSizer
	rng           *rand.Rand
	config        WaveSchedulerConfig
	logger        *zap.Logger

	// schedulerEntityID 调度器组件所在的实体ID
	schedulerEntityID ecs.EntityID
}

// NewWaveSchedulerSystem 创建波次调度系统
//
// 参数：
//   - em: 实体管理器
//   - bus: 事件总线（可为 nil）
//   - factory: 代理工厂
//   - movers: 移动器初始化（通常是 MovementSystem）
//   - cfg: 调度参数
//   - rng: 路线选择使用的随机源，nil 时按当前时间播种
//   - logger: 日志（可为 nil）
func NewWaveSchedulerSystem(em *ecs.EntityManager, bus *event.Bus, factory AgentFactory, movers MoverInitializer,
	cfg WaveSchedulerConfig, rng *rand.Rand, logger *zap.Logger) *WaveSchedulerSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	system := &WaveSchedulerSystem{
		entityManager: em,
		bus:           bus,
		factory:       factory,
		movers:        movers,
		rng:           rng,
		config:        cfg,
		logger:        logger.Named("WaveScheduler"),
	}

	system.schedulerEntityID = em.CreateEntity()
	ecs.AddComponent(em, system.schedulerEntityID, &components.WaveSchedulerComponent{
		Phase: components.WavePhaseIdle,
	})

	system.logger.Debug("created scheduler entity",
		zap.Uint64("entity", uint64(system.schedulerEntityID)),
		zap.Int("lanes", len(cfg.Lanes)),
		zap.Int("enemiesPerWave", cfg.EnemiesPerWave))

	return system
}

// SetWaveSizer 设置每波数量钩子（nil 恢复为配置值）
func (s *WaveSchedulerSystem) SetWaveSizer(sizer WaveSizer) {
	s.sizer = sizer
}

// Lanes 调度器使用的路线（只读）
func (s *WaveSchedulerSystem) Lanes() []*components.WaypointPath {
	return s.config.Lanes
}

// State 返回调度器状态（只读使用）
func (s *WaveSchedulerSystem) State() *components.WaveSchedulerComponent {
	state, _ := ecs.GetComponent[*components.WaveSchedulerComponent](s.entityManager, s.schedulerEntityID)
	return state
}

// StartWaves 启动波次循环
//
// 已在运行时直接返回。第一波在下一个 Update 开始；
// 停止前未走完的波间冷却仍然有效，到期后才开始下一波。
func (s *WaveSchedulerSystem) StartWaves() {
	state := s.State()
	if state.Running {
		s.logger.Debug("StartWaves ignored, already running", zap.Int("wave", state.Wave))
		return
	}

	state.Running = true
	state.IsPaused = false
	state.Phase = components.WavePhaseCoolingDown
	state.Deadline = math.Max(state.Deadline, state.Now)

	s.logger.Info("wave cycle started",
		zap.Int("wave", state.Wave),
		zap.Float64("nextWaveIn", state.Deadline-state.Now))
}

// Stop 停止波次循环，保留波次计数；已生成的代理继续移动
//
// 冷却中停止时保留冷却截止时刻；刷怪中停止时本波就此结束，从现在起计算波间冷却。
func (s *WaveSchedulerSystem) Stop() {
	state := s.State()
	if !state.Running {
		return
	}

	if state.Phase == components.WavePhaseWaitingToSpawn {
		state.Deadline = state.Now + s.config.TimeBetweenWaves
	}
	state.Running = false
	state.IsPaused = false
	state.Phase = components.WavePhaseIdle
	state.SpawnIndex = 0
	state.SpawnCount = 0

	s.logger.Info("wave cycle stopped", zap.Int("wave", state.Wave), zap.Int("totalSpawned", state.TotalSpawned))
}

// Pause 暂停调度（模拟时间不推进）
func (s *WaveSchedulerSystem) Pause() {
	state := s.State()
	if !state.Running || state.IsPaused {
		return
	}
	state.IsPaused = true
	s.logger.Info("wave cycle paused", zap.Int("wave", state.Wave), zap.Stringer("phase", state.Phase))
}

// Resume 恢复调度
func (s *WaveSchedulerSystem) Resume() {
	state := s.State()
	if !state.IsPaused {
		return
	}
	state.IsPaused = false
	s.logger.Info("wave cycle resumed", zap.Int("wave", state.Wave), zap.Stringer("phase", state.Phase))
}

// Update 推进调度器一个固定步长
//
// 停止期间时间照常推进（冷却继续计时），暂停期间不推进。
func (s *WaveSchedulerSystem) Update(dt float64) {
	state := s.State()
	if state == nil || state.IsPaused {
		return
	}

	state.Now += dt
	if !state.Running || state.Now < state.Deadline {
		return
	}

	switch state.Phase {
	case components.WavePhaseCoolingDown:
		s.beginWave(state)
	case components.WavePhaseWaitingToSpawn:
		if state.SpawnIndex >= state.SpawnCount {
			s.completeWave(state)
		} else {
			s.spawnNext(state)
		}
	}
}

// beginWave 波次计数递增并进入刷怪阶段，第一个代理在本步长内生成
func (s *WaveSchedulerSystem) beginWave(state *components.WaveSchedulerComponent) {
	state.Wave++
	state.SpawnIndex = 0
	state.SpawnedThisWave = 0
	state.SpawnCount = s.agentsForWave(state.Wave)

	s.logger.Info("wave incoming", zap.Int("wave", state.Wave), zap.Int("agents", state.SpawnCount))
	s.publish(event.WaveStarted, event.WaveData{
		Wave:    state.Wave,
		Planned: state.SpawnCount,
		Time:    state.Now,
	})

	if err := s.checkConfig(); err != nil {
		s.abortPhase(state, err)
		return
	}

	if state.SpawnCount == 0 {
		s.completeWave(state)
		return
	}

	state.Phase = components.WavePhaseWaitingToSpawn
	s.spawnNext(state)
}

func (s *WaveSchedulerSystem) checkConfig() error {
	if s.config.AgentTemplate == "" {
		return ErrNoTemplate
	}
	if len(s.config.Lanes) == 0 {
		return ErrNoLanes
	}
	return nil
}

func (s *WaveSchedulerSystem) agentsForWave(wave int) int {
	count := s.config.EnemiesPerWave
	if s.sizer != nil {
		count = s.sizer.AgentsForWave(wave, count)
	}
	if count < 0 {
		count = 0
	}
	return count
}

// spawnNext 生成 SpawnIndex 号代理，然后等待 SpawnInterval
func (s *WaveSchedulerSystem) spawnNext(state *components.WaveSchedulerComponent) {
	index := state.SpawnIndex

	lane := s.config.Lanes[s.rng.Intn(len(s.config.Lanes))]
	if lane.Count() < 2 {
		s.abortPhase(state, fmt.Errorf("%w: lane %q has %d", ErrLaneTooShort, lane.Name, lane.Count()))
		return
	}

	wp0 := lane.Get(0)
	wp1 := lane.Get(1)
	direction := wp1.Position.Sub(wp0.Position).Normalized()
	spawnPos := wp0.Position.Sub(direction.Scale(s.config.Spacing * float64(index)))

	state.SpawnIndex++
	state.Phase = components.WavePhaseWaitingToSpawn
	state.Deadline = state.Now + s.config.SpawnInterval

	entityID, err := s.factory.SpawnAgent(s.config.AgentTemplate, spawnPos, wp0.Rotation)
	if err != nil {
		s.logger.Error("failed to spawn agent",
			zap.Int("wave", state.Wave),
			zap.Int("index", index),
			zap.String("lane", lane.Name),
			zap.Error(err))
		return
	}

	if agent, ok := ecs.GetComponent[*components.AgentComponent](s.entityManager, entityID); ok {
		agent.Wave = state.Wave
		agent.SpawnIndex = index
		agent.Lane = lane.Name
	}

	if !s.movers.Init(entityID, lane) {
		s.logger.Error("spawned agent cannot follow its lane",
			zap.Int("wave", state.Wave),
			zap.Int("index", index),
			zap.Uint64("entity", uint64(entityID)),
			zap.Error(ErrNoMover))
	}

	state.SpawnedThisWave++
	state.TotalSpawned++

	s.logger.Debug("spawned agent",
		zap.Int("wave", state.Wave),
		zap.Int("index", index),
		zap.String("lane", lane.Name),
		zap.Uint64("entity", uint64(entityID)),
		zap.Float64("x", spawnPos.X),
		zap.Float64("y", spawnPos.Y),
		zap.Float64("z", spawnPos.Z))

	s.publish(event.AgentSpawned, event.AgentData{
		Entity:     entityID,
		Wave:       state.Wave,
		SpawnIndex: index,
		Lane:       lane.Name,
		Position:   spawnPos,
		Time:       state.Now,
	})
}

// completeWave 刷怪阶段结束，进入波间冷却
func (s *WaveSchedulerSystem) completeWave(state *components.WaveSchedulerComponent) {
	state.ConsecutiveFailures = 0
	state.Phase = components.WavePhaseCoolingDown
	state.Deadline = state.Now + s.config.TimeBetweenWaves

	s.logger.Info("wave active",
		zap.Int("wave", state.Wave),
		zap.Int("spawned", state.SpawnedThisWave),
		zap.Float64("nextWaveAt", state.Deadline))
	s.publish(event.WaveCompleted, event.WaveData{
		Wave:    state.Wave,
		Spawned: state.SpawnedThisWave,
		Planned: state.SpawnCount,
		Time:    state.Now,
	})
}

// abortPhase 配置错误：中止本次刷怪阶段，直接进入冷却，下一波重试
func (s *WaveSchedulerSystem) abortPhase(state *components.WaveSchedulerComponent, err error) {
	state.ConsecutiveFailures++
	state.Phase = components.WavePhaseCoolingDown
	state.Deadline = state.Now + s.config.TimeBetweenWaves

	s.logger.Error("spawn phase aborted",
		zap.Int("wave", state.Wave),
		zap.Int("index", state.SpawnIndex),
		zap.Int("consecutiveFailures", state.ConsecutiveFailures),
		zap.Error(err))
	s.publish(event.SpawnAborted, event.SpawnAbortedData{
		Wave:                state.Wave,
		SpawnIndex:          state.SpawnIndex,
		Err:                 err,
		ConsecutiveFailures: state.ConsecutiveFailures,
		Time:                state.Now,
	})
}

func (s *WaveSchedulerSystem) publish(t event.Type, data interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{Type: t, Data: data})
}

package systems

import (
	"github.com/gonewx/lanewave/pkg/components"
	"github.com/gonewx/lanewave/pkg/ecs"
	"github.com/gonewx/lanewave/pkg/event"
	"github.com/gonewx/lanewave/pkg/utils"
	"go.uber.org/zap"
)

const (
	// FacingBlend 每个固定步长朝向向目标方向插值的比例
	FacingBlend = 0.15
	// FacingMinSqrDistance 目标向量平方长度低于此值时不转向
	FacingMinSqrDistance = 0.001
)

// MovementSystem 路线移动系统
//
// 职责：
//   - 初始化移动器（吸附到路线起点）
//   - 每个固定步长推进代理，检测到达并切换目标路径点
//   - 走完路线的代理标记删除并发布 AgentArrived
//
// 只在固定步长上调用 Update，位移按 speed*dt 计算，与渲染帧率无关。
type MovementSystem struct {
	entityManager *ecs.EntityManager
	bus           *event.Bus
	logger        *zap.Logger

	// now 已模拟的时间（秒），用于事件时间戳
	now float64
}

// NewMovementSystem 创建移动系统
func NewMovementSystem(em *ecs.EntityManager, bus *event.Bus, logger *zap.Logger) *MovementSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovementSystem{
		entityManager: em,
		bus:           bus,
		logger:        logger.Named("Movement"),
	}
}

// Init 为实体分配路线
//
// 返回 false 表示实体没有移动器（或位置组件），由调用方按配置错误处理。
// 路线为空时移动器保持 Idle：不移动，也不会被移除。
func (s *MovementSystem) Init(entityID ecs.EntityID, path *components.WaypointPath) bool {
	mover, ok := ecs.GetComponent[*components.MoverComponent](s.entityManager, entityID)
	if !ok {
		return false
	}
	position, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, entityID)
	if !ok {
		return false
	}

	mover.Path = path
	mover.Cursor = 0

	if path.Count() == 0 {
		mover.State = components.MoverIdle
		s.logger.Debug("mover has no path, staying idle", zap.Uint64("entity", uint64(entityID)))
		return true
	}

	position.Position = path.Get(0).Position
	mover.State = components.MoverTraveling
	return true
}

// Update 推进所有移动器一个固定步长
func (s *MovementSystem) Update(dt float64) {
	s.now += dt

	entities := ecs.GetEntitiesWith2[*components.MoverComponent, *components.PositionComponent](s.entityManager)
	for _, entityID := range entities {
		if s.entityManager.IsPendingDestroy(entityID) {
			continue
		}
		mover, _ := ecs.GetComponent[*components.MoverComponent](s.entityManager, entityID)
		position, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, entityID)
		s.step(entityID, mover, position, dt)
	}
}

func (s *MovementSystem) step(entityID ecs.EntityID, mover *components.MoverComponent, position *components.PositionComponent, dt float64) {
	if mover.State != components.MoverTraveling {
		return
	}

	target := mover.Path.Get(mover.Cursor).Position
	toTarget := target.Sub(position.Position)

	// 每个步长至多切换一个路径点，切换后本步即朝新目标移动
	if toTarget.Length() <= mover.ArriveDistance {
		mover.Cursor++
		if mover.Cursor >= mover.Path.Count() {
			s.arrive(entityID, mover, position)
			return
		}
		target = mover.Path.Get(mover.Cursor).Position
		toTarget = target.Sub(position.Position)
	}

	distance := toTarget.Length()
	stepLength := mover.Speed * dt
	if stepLength >= distance {
		// 不越过目标点，保证有限步内走完路线
		position.Position = target
	} else if distance > 0 {
		position.Position = position.Position.Add(toTarget.Scale(stepLength / distance))
	}

	if toTarget.SqrLength() > FacingMinSqrDistance {
		facing := utils.LerpVec3(position.Facing, toTarget.Normalized(), FacingBlend).Normalized()
		if facing != utils.Zero {
			position.Facing = facing
		}
	}
}

// arrive 终态：标记删除并发布事件，只会发生一次
func (s *MovementSystem) arrive(entityID ecs.EntityID, mover *components.MoverComponent, position *components.PositionComponent) {
	mover.State = components.MoverArrived
	s.entityManager.DestroyEntity(entityID)

	data := event.AgentData{
		Entity:   entityID,
		Position: position.Position,
		Time:     s.now,
	}
	if agent, ok := ecs.GetComponent[*components.AgentComponent](s.entityManager, entityID); ok {
		data.Wave = agent.Wave
		data.SpawnIndex = agent.SpawnIndex
		data.Lane = agent.Lane
	}

	s.logger.Debug("agent reached end of path",
		zap.Uint64("entity", uint64(entityID)),
		zap.String("lane", data.Lane),
		zap.Int("wave", data.Wave))

	if s.bus != nil {
		s.bus.Publish(event.Event{Type: event.AgentArrived, Data: data})
	}
}

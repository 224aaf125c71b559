package systems

import (
	"math"
	"testing"

	"github.com/gonewx/lanewave/pkg/components"
	"github.com/gonewx/lanewave/pkg/ecs"
	"github.com/gonewx/lanewave/pkg/event"
	"github.com/gonewx/lanewave/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testTick = 0.02

func makePath(name string, points ...utils.Vec3) *components.WaypointPath {
	wps := make([]components.Waypoint, len(points))
	for i, p := range points {
		wps[i] = components.Waypoint{Position: p, Rotation: utils.Identity}
	}
	return components.NewWaypointPath(name, wps)
}

// newMoverEntity 创建带移动器的实体
func newMoverEntity(em *ecs.EntityManager, speed, arriveDistance float64, pos utils.Vec3) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{Position: pos, Facing: utils.Forward})
	ecs.AddComponent(em, id, &components.MoverComponent{Speed: speed, ArriveDistance: arriveDistance})
	return id
}

func newMovementFixture(t *testing.T) (*MovementSystem, *ecs.EntityManager, *[]event.AgentData) {
	t.Helper()
	em := ecs.NewEntityManager()
	bus := event.NewBus()
	arrived := &[]event.AgentData{}
	bus.Subscribe(event.AgentArrived, func(e event.Event) {
		*arrived = append(*arrived, e.Data.(event.AgentData))
	})
	return NewMovementSystem(em, bus, zaptest.NewLogger(t)), em, arrived
}

// TestMovementInitSnapsToStart 初始化后位置精确等于路线起点
func TestMovementInitSnapsToStart(t *testing.T) {
	ms, em, _ := newMovementFixture(t)

	start := utils.Vec3{X: 1.2345678901, Y: 0.1, Z: -9.87654321}
	path := makePath("lane", start, utils.Vec3{X: 5, Z: 5})
	id := newMoverEntity(em, 1.5, 0.15, utils.Vec3{X: 100, Y: 100, Z: 100})

	require.True(t, ms.Init(id, path))

	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	mover, _ := ecs.GetComponent[*components.MoverComponent](em, id)
	assert.Equal(t, start, pos.Position)
	assert.Equal(t, 0, mover.Cursor)
	assert.Equal(t, components.MoverTraveling, mover.State)
}

// TestMovementInitWithoutPath 空路线保持 Idle，不移动也不移除
func TestMovementInitWithoutPath(t *testing.T) {
	tests := []struct {
		name string
		path *components.WaypointPath
	}{
		{"nil路线", nil},
		{"空路线", components.NewWaypointPath("empty", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms, em, arrived := newMovementFixture(t)
			origin := utils.Vec3{X: 3, Z: 4}
			id := newMoverEntity(em, 1.5, 0.15, origin)

			require.True(t, ms.Init(id, tt.path))
			for i := 0; i < 100; i++ {
				ms.Update(testTick)
				em.RemoveMarkedEntities()
			}

			require.True(t, em.Exists(id))
			pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
			mover, _ := ecs.GetComponent[*components.MoverComponent](em, id)
			assert.Equal(t, origin, pos.Position)
			assert.Equal(t, components.MoverIdle, mover.State)
			assert.Empty(t, *arrived)
		})
	}
}

func TestMovementInitWithoutMover(t *testing.T) {
	ms, em, _ := newMovementFixture(t)
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{})

	assert.False(t, ms.Init(id, makePath("lane", utils.Zero, utils.Forward)))
}

// TestMovementDisplacement 每步位移为 speed*dt
func TestMovementDisplacement(t *testing.T) {
	ms, em, _ := newMovementFixture(t)
	id := newMoverEntity(em, 2, 0.15, utils.Zero)
	require.True(t, ms.Init(id, makePath("lane", utils.Zero, utils.Vec3{X: 10})))

	// 第一步：与起点重合，立即切换到下一个路径点并在同一步内移动
	ms.Update(0.1)

	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	mover, _ := ecs.GetComponent[*components.MoverComponent](em, id)
	assert.Equal(t, 1, mover.Cursor)
	assert.InDelta(t, 0.2, pos.Position.X, 1e-12)
	assert.InDelta(t, 0, pos.Position.Z, 1e-12)

	// 位移与步长成正比，与调用次数无关
	ms.Update(0.05)
	ms.Update(0.05)
	assert.InDelta(t, 0.4, pos.Position.X, 1e-12)
}

// TestMovementDoesNotOvershoot 步长超过剩余距离时停在路径点上
func TestMovementDoesNotOvershoot(t *testing.T) {
	ms, em, _ := newMovementFixture(t)
	id := newMoverEntity(em, 100, 0, utils.Zero)
	target := utils.Vec3{X: 1, Z: 1}
	require.True(t, ms.Init(id, makePath("lane", utils.Zero, target, utils.Vec3{X: 2, Z: 2})))

	ms.Update(0.1)

	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	assert.Equal(t, target, pos.Position)
}

// TestMovementFacing 朝向按固定比例插值
func TestMovementFacing(t *testing.T) {
	ms, em, _ := newMovementFixture(t)
	id := newMoverEntity(em, 1, 0.15, utils.Zero)
	require.True(t, ms.Init(id, makePath("lane", utils.Zero, utils.Vec3{X: 10})))

	ms.Update(testTick)

	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	expected := utils.Vec3{X: 0.15, Z: 0.85}.Normalized()
	assert.InDelta(t, expected.X, pos.Facing.X, 1e-12)
	assert.InDelta(t, expected.Z, pos.Facing.Z, 1e-12)
	assert.InDelta(t, 1, pos.Facing.Length(), 1e-12)
}

// TestMovementTerminalRemoval 两点路线、间距 0.1 < 到达距离 0.15：第二步移除
func TestMovementTerminalRemoval(t *testing.T) {
	ms, em, arrived := newMovementFixture(t)
	id := newMoverEntity(em, 1.5, 0.15, utils.Zero)
	require.True(t, ms.Init(id, makePath("short", utils.Zero, utils.Vec3{Z: 0.1})))

	ms.Update(testTick)

	mover, _ := ecs.GetComponent[*components.MoverComponent](em, id)
	assert.Equal(t, 1, mover.Cursor)
	assert.Equal(t, components.MoverTraveling, mover.State)
	assert.Empty(t, *arrived)

	ms.Update(testTick)

	assert.Equal(t, components.MoverArrived, mover.State)
	assert.Equal(t, 2, mover.Cursor)
	assert.True(t, em.IsPendingDestroy(id))
	require.Len(t, *arrived, 1)
	assert.Equal(t, id, (*arrived)[0].Entity)

	// 清理前再次更新不会重复发布
	ms.Update(testTick)
	assert.Len(t, *arrived, 1)

	em.RemoveMarkedEntities()
	assert.False(t, em.Exists(id))
}

// TestMovementCursorMonotonic 游标单调不减，有限步内走完路线
func TestMovementCursorMonotonic(t *testing.T) {
	ms, em, arrived := newMovementFixture(t)
	path := makePath("zigzag",
		utils.Vec3{X: 0, Z: 0},
		utils.Vec3{X: 0, Z: 3},
		utils.Vec3{X: 2, Z: 3},
		utils.Vec3{X: 2, Z: 0.5},
		utils.Vec3{X: -1, Z: 0.5},
	)
	id := newMoverEntity(em, 1.5, 0.15, utils.Vec3{X: 7})
	require.True(t, ms.Init(id, path))

	mover, _ := ecs.GetComponent[*components.MoverComponent](em, id)
	last := mover.Cursor
	ticks := 0
	for em.Exists(id) {
		ms.Update(testTick)
		require.GreaterOrEqual(t, mover.Cursor, last, "cursor went backwards at tick %d", ticks)
		require.LessOrEqual(t, mover.Cursor, path.Count())
		last = mover.Cursor
		em.RemoveMarkedEntities()

		ticks++
		require.Less(t, ticks, 10000, "agent never reached the end of its path")
	}

	assert.Equal(t, path.Count(), last)
	assert.Len(t, *arrived, 1)

	// 总路程 3+2+2.5+3 = 10.5（转角处提前转向略短），速度 1.5 => 约 7 秒
	assert.InDelta(t, 345, ticks, 20)
}

func TestMovementArrivalCarriesAgentInfo(t *testing.T) {
	ms, em, arrived := newMovementFixture(t)
	id := newMoverEntity(em, 1.5, 0.15, utils.Zero)
	ecs.AddComponent(em, id, &components.AgentComponent{Wave: 3, SpawnIndex: 2, Lane: "left"})
	require.True(t, ms.Init(id, makePath("left", utils.Zero)))

	ms.Update(testTick)

	require.Len(t, *arrived, 1)
	got := (*arrived)[0]
	assert.Equal(t, 3, got.Wave)
	assert.Equal(t, 2, got.SpawnIndex)
	assert.Equal(t, "left", got.Lane)
	assert.False(t, math.IsNaN(got.Position.X))
}

// TestMovementDenseWaypointsOneStepPerTick 相邻路径点都在到达距离内时，每步只推进一个路径点
func TestMovementDenseWaypointsOneStepPerTick(t *testing.T) {
	ms, em, arrived := newMovementFixture(t)
	id := newMoverEntity(em, 1.5, 0.15, utils.Zero)
	path := makePath("dense", utils.Zero, utils.Vec3{Z: 0.05}, utils.Vec3{Z: 0.1}, utils.Vec3{Z: 5})
	require.True(t, ms.Init(id, path))
	mover, _ := ecs.GetComponent[*components.MoverComponent](em, id)
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)

	ms.Update(testTick)
	assert.Equal(t, 1, mover.Cursor)
	// 切换后同一步内朝新目标移动
	assert.InDelta(t, 0.03, pos.Position.Z, 1e-9)

	ms.Update(testTick)
	assert.Equal(t, 2, mover.Cursor)

	ms.Update(testTick)
	assert.Equal(t, 3, mover.Cursor)

	ms.Update(testTick)
	assert.Equal(t, 3, mover.Cursor, "far waypoint must not be skipped")
	assert.Equal(t, components.MoverTraveling, mover.State)
	assert.Empty(t, *arrived)
}

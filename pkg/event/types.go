package event

import (
	"github.com/gonewx/lanewave/pkg/ecs"
	"github.com/gonewx/lanewave/pkg/utils"
)

// Type 事件类型
type Type string

// Event 事件
type Event struct {
	Type Type
	Data interface{}
}

const (
	WaveStarted   Type = "WaveStarted"   // 新一波开始刷怪
	WaveCompleted Type = "WaveCompleted" // 本波刷怪阶段结束，进入冷却
	AgentSpawned  Type = "AgentSpawned"
	AgentArrived  Type = "AgentArrived" // 代理走完路线并被移除
	SpawnAborted  Type = "SpawnAborted" // 配置错误导致本波刷怪中止
	EnergyChanged Type = "EnergyChanged"
)

// WaveData WaveStarted / WaveCompleted 的数据
type WaveData struct {
	Wave    int
	Spawned int // 本波已生成数量（WaveStarted 时为 0）
	Planned int
	Time    float64
}

// AgentData AgentSpawned / AgentArrived 的数据
type AgentData struct {
	Entity     ecs.EntityID
	Wave       int
	SpawnIndex int
	Lane       string
	Position   utils.Vec3
	Time       float64
}

// SpawnAbortedData SpawnAborted 的数据
type SpawnAbortedData struct {
	Wave                int
	SpawnIndex          int
	Err                 error
	ConsecutiveFailures int
	Time                float64
}

// EnergyData EnergyChanged 的数据
type EnergyData struct {
	Energy int
	Delta  int
}

package components

// WavePhase 波次调度阶段
type WavePhase int

const (
	// WavePhaseIdle 未启动或已停止
	WavePhaseIdle WavePhase = iota
	// WavePhaseWaitingToSpawn 刷怪阶段中，等待 SpawnIndex 号代理的生成时刻
	WavePhaseWaitingToSpawn
	// WavePhaseCoolingDown 两波之间的冷却；刚启动时以零时长冷却进入第一波
	WavePhaseCoolingDown
)

// String 返回阶段名（日志用）
func (p WavePhase) String() string {
	switch p {
	case WavePhaseIdle:
		return "Idle"
	case WavePhaseWaitingToSpawn:
		return "WaitingToSpawn"
	case WavePhaseCoolingDown:
		return "CoolingDown"
	default:
		return "Unknown"
	}
}

// WaveSchedulerComponent 波次调度器状态
// 存储波次循环的显式状态，供 WaveSchedulerSystem 使用
// 注意：遵循 ECS 原则，组件仅存储数据
//
// 时间单位：秒（模拟时间，由固定步长累加，与渲染帧率无关）
type WaveSchedulerComponent struct {
	// Running 波次循环是否在运行（StartWaves 的重入保护）
	Running bool

	// IsPaused 暂停时模拟时间不推进
	IsPaused bool

	// Phase 当前阶段
	Phase WavePhase

	// Now 调度器累计的模拟时间
	Now float64

	// Deadline 当前等待结束的时刻（停止后保留，作为重新启动的最早开波时刻）
	Deadline float64

	// Wave 当前波次计数（从0开始，每轮循环开始时递增）
	Wave int

	// SpawnIndex 本波下一个要生成的代理序号
	SpawnIndex int

	// SpawnCount 本波要生成的代理总数
	SpawnCount int

	// SpawnedThisWave 本波实际生成的代理数
	SpawnedThisWave int

	// TotalSpawned 累计生成的代理数
	TotalSpawned int

	// ConsecutiveFailures 连续因配置错误中止的刷怪阶段数（成功一轮后清零）
	ConsecutiveFailures int
}

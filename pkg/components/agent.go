package components

import "github.com/gonewx/lanewave/pkg/utils"

// AgentComponent 标识由波次调度器生成的代理
type AgentComponent struct {
	TemplateID string // 代理模板ID
	Wave       int    // 所属波次（从1开始）
	SpawnIndex int    // 在本波中的生成序号（从0开始）
	Lane       string // 分配到的路线名
	// SpawnPosition 调度器计算的生成位置（路线起点向后偏移 spacing*index）。
	// 移动器初始化时会吸附到路线起点，这里保留原始生成位置用于排查间距。
	SpawnPosition utils.Vec3
}

package components

import "github.com/gonewx/lanewave/pkg/utils"

// PositionComponent 实体在世界中的位置与朝向
type PositionComponent struct {
	Position utils.Vec3
	// Facing 当前前方向（单位向量），由 MovementSystem 平滑转向
	Facing utils.Vec3
}

package components

import (
	"fmt"

	"github.com/gonewx/lanewave/pkg/utils"
)

// Waypoint 路径点：位置 + 朝向
type Waypoint struct {
	Position utils.Vec3
	Rotation utils.Quat
}

// WaypointPath 一条行进路线（Lane）
//
// 由关卡配置在模拟开始前构建，此后只读，
// 被分配到该路线的所有代理共享（借用，不拥有）。
type WaypointPath struct {
	Name      string
	waypoints []Waypoint
}

// NewWaypointPath 创建路线，复制传入的路径点以保证只读
func NewWaypointPath(name string, waypoints []Waypoint) *WaypointPath {
	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	return &WaypointPath{Name: name, waypoints: wps}
}

// Count 路径点数量；nil 路线视为空路线
func (p *WaypointPath) Count() int {
	if p == nil {
		return 0
	}
	return len(p.waypoints)
}

// Get 返回第 i 个路径点
//
// 越界访问属于调用方的编程错误，直接 panic。
func (p *WaypointPath) Get(i int) Waypoint {
	if i < 0 || i >= p.Count() {
		panic(fmt.Sprintf("waypoint index %d out of range [0,%d) on path %q", i, p.Count(), p.name()))
	}
	return p.waypoints[i]
}

func (p *WaypointPath) name() string {
	if p == nil {
		return "<nil>"
	}
	return p.Name
}

package components

// MoverState 移动器状态
type MoverState int

const (
	// MoverIdle 未分配路线（或路线为空），不移动也不会被移除
	MoverIdle MoverState = iota
	// MoverTraveling 正在朝 Cursor 指向的路径点前进
	MoverTraveling
	// MoverArrived 已走完路线（终态），实体已请求移除
	MoverArrived
)

// String 返回状态名（日志用）
func (s MoverState) String() string {
	switch s {
	case MoverIdle:
		return "Idle"
	case MoverTraveling:
		return "Traveling"
	case MoverArrived:
		return "Arrived"
	default:
		return "Unknown"
	}
}

// MoverComponent 沿路线移动的代理状态
//
// 不变量：0 <= Cursor <= Path.Count()，Cursor == Path.Count() 即到达终点。
type MoverComponent struct {
	Path           *WaypointPath // 借用的只读路线
	Cursor         int           // 当前目标路径点索引
	State          MoverState
	Speed          float64 // 线速度（单位/秒）
	ArriveDistance float64 // 到达判定距离
}

package utils

import "math"

// Quat 单位四元数，表示路径点朝向
type Quat struct {
	X, Y, Z, W float64
}

// Identity 单位旋转
var Identity = Quat{W: 1}

// QuatFromYaw 根据绕 Y 轴的偏航角（角度制）构造旋转
// yaw=0 时朝向 +Z，yaw=90 时朝向 +X
func QuatFromYaw(yawDegrees float64) Quat {
	half := yawDegrees * math.Pi / 360
	return Quat{Y: math.Sin(half), W: math.Cos(half)}
}

// Rotate 用四元数旋转向量
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2w(u×v) + 2u×(u×v)
	u := Vec3{q.X, q.Y, q.Z}
	t := cross(u, v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(cross(u, t))
}

// ForwardVector 旋转后的前方向
func (q Quat) ForwardVector() Vec3 {
	return q.Rotate(Forward)
}

// Yaw 返回偏航角（角度制），用于日志和俯视渲染
func (q Quat) Yaw() float64 {
	f := q.ForwardVector()
	return math.Atan2(f.X, f.Z) * 180 / math.Pi
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

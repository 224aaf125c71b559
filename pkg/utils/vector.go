package utils

import "math"

// Vec3 三维向量（世界坐标，Y 轴朝上）
type Vec3 struct {
	X, Y, Z float64
}

// Zero 零向量
var Zero = Vec3{}

// Forward 默认朝向（+Z）
var Forward = Vec3{Z: 1}

// Add 向量相加
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub 向量相减
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale 数乘
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot 点积
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// SqrLength 长度的平方（避免开方）
func (v Vec3) SqrLength() float64 {
	return v.Dot(v)
}

// Length 向量长度
func (v Vec3) Length() float64 {
	return math.Sqrt(v.SqrLength())
}

// Normalized 返回单位向量
// 零向量返回零向量
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < 1e-9 {
		return Zero
	}
	return v.Scale(1 / l)
}

// LerpVec3 在 a 和 b 之间按 t 线性插值（t 不做截断）
func LerpVec3(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: Lerp(a.X, b.X, t),
		Y: Lerp(a.Y, b.Y, t),
		Z: Lerp(a.Z, b.Z, t),
	}
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

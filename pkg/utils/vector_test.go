package utils

import (
	"math"
	"testing"
)

func approxVec(a, b Vec3) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

// TestVec3Arithmetic 测试基本运算
func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add = %v, 期望 {5 7 9}", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub = %v, 期望 {3 3 3}", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale = %v, 期望 {2 4 6}", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, 期望 32", got)
	}
}

// TestVec3Normalized 测试归一化
func TestVec3Normalized(t *testing.T) {
	tests := []struct {
		name     string
		input    Vec3
		expected Vec3
	}{
		{"X轴", Vec3{3, 0, 0}, Vec3{1, 0, 0}},
		{"3-4-0", Vec3{3, 4, 0}, Vec3{0.6, 0.8, 0}},
		{"零向量", Vec3{}, Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Normalized(); !approxVec(got, tt.expected) {
				t.Errorf("Normalized(%v) = %v, 期望 %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestLerp 测试线性插值
func TestLerp(t *testing.T) {
	tests := []struct {
		name     string
		a, b, t  float64
		expected float64
	}{
		{"起点", 0, 10, 0, 0},
		{"终点", 0, 10, 1, 10},
		{"中点", 0, 10, 0.5, 5},
		{"外插", 0, 10, 1.5, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lerp(tt.a, tt.b, tt.t); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Lerp(%v, %v, %v) = %v, 期望 %v", tt.a, tt.b, tt.t, got, tt.expected)
			}
		})
	}

	got := LerpVec3(Vec3{0, 0, 1}, Vec3{1, 0, 0}, 0.15)
	if !approxVec(got, Vec3{0.15, 0, 0.85}) {
		t.Errorf("LerpVec3 = %v", got)
	}
}

// TestQuatFromYaw 测试偏航角旋转
func TestQuatFromYaw(t *testing.T) {
	tests := []struct {
		yaw      float64
		expected Vec3
	}{
		{0, Vec3{0, 0, 1}},
		{90, Vec3{1, 0, 0}},
		{180, Vec3{0, 0, -1}},
		{-90, Vec3{-1, 0, 0}},
	}

	for _, tt := range tests {
		got := QuatFromYaw(tt.yaw).ForwardVector()
		if !approxVec(got, tt.expected) {
			t.Errorf("QuatFromYaw(%v).ForwardVector() = %v, 期望 %v", tt.yaw, got, tt.expected)
		}
	}

	if got := Identity.ForwardVector(); !approxVec(got, Forward) {
		t.Errorf("Identity forward = %v", got)
	}
	if yaw := QuatFromYaw(45).Yaw(); math.Abs(yaw-45) > 1e-9 {
		t.Errorf("Yaw() = %v, 期望 45", yaw)
	}
}

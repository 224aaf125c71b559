package game

// FixedStepClock 固定步长累加器
//
// 渲染帧的可变时间累加到 accumulator，按固定步长消费。
// 单帧时间和单帧步数都有上限，避免卡顿后一次追赶过多步长。
type FixedStepClock struct {
	step          float64
	maxSteps      int
	maxFrameDelta float64
	accumulator   float64
}

// NewFixedStepClock 创建固定步长时钟
//
// 参数：
//   - step: 固定步长（秒）
//   - maxSteps: 单帧最多执行的步数
//   - maxFrameDelta: 单帧时间上限（秒）
func NewFixedStepClock(step float64, maxSteps int, maxFrameDelta float64) *FixedStepClock {
	return &FixedStepClock{
		step:          step,
		maxSteps:      maxSteps,
		maxFrameDelta: maxFrameDelta,
	}
}

// Step 固定步长（秒）
func (c *FixedStepClock) Step() float64 {
	return c.step
}

// Advance 累加一帧时间并执行到期的固定步长
// 返回本帧执行的步数
func (c *FixedStepClock) Advance(frameDelta float64, stepFn func(dt float64)) int {
	if frameDelta < 0 {
		frameDelta = 0
	}
	if frameDelta > c.maxFrameDelta {
		frameDelta = c.maxFrameDelta
	}
	c.accumulator += frameDelta

	steps := 0
	for c.accumulator >= c.step && steps < c.maxSteps {
		stepFn(c.step)
		c.accumulator -= c.step
		steps++
	}

	// 追赶上限后丢弃积压时间
	if steps == c.maxSteps && c.accumulator >= c.step {
		c.accumulator = 0
	}
	return steps
}

package main

import (
	"context"
	"math"
	"time"

	"github.com/gonewx/lanewave/pkg/systems"
)

// runner 按固定步长驱动模拟
type runner struct {
	sim         *systems.Simulation
	tick        float64 // 秒
	duration    time.Duration
	reportEvery time.Duration
	realtime    bool
}

// stepsFor 把模拟时长换算为步数，至少 1 步
func (r *runner) stepsFor(d time.Duration) int {
	return max(1, int(math.Round(d.Seconds()/r.tick)))
}

// run 启动波次并推进到 duration（realtime 且 duration 为 0 时直到 ctx 取消）
// 每 reportEvery 模拟时间发送一次统计；ctx 取消视为正常结束
func (r *runner) run(ctx context.Context, reports chan<- systems.Stats) error {
	total := 0
	if r.duration > 0 {
		total = r.stepsFor(r.duration)
	}
	reportSteps := r.stepsFor(r.reportEvery)

	var ticks <-chan time.Time
	if r.realtime {
		ticker := time.NewTicker(time.Duration(r.tick * float64(time.Second)))
		defer ticker.Stop()
		ticks = ticker.C
	}

	r.sim.Scheduler.StartWaves()

	for step := 1; total == 0 || step <= total; step++ {
		if ticks != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-ticks:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		r.sim.Step(r.tick)

		if step%reportSteps == 0 {
			select {
			case reports <- r.sim.Stats():
			case <-ctx.Done():
				return nil
			}
		}
	}
	return nil
}

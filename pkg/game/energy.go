package game

import (
	"fmt"

	"github.com/gonewx/lanewave/pkg/event"
)

// EnergyDisplay 能量显示（UI 协作者）
type EnergyDisplay interface {
	ShowEnergy(energy int)
}

// EnergyText 把能量格式化为 HUD 文本
func EnergyText(energy int) string {
	return fmt.Sprintf("Energy: %d", energy)
}

// EnergyBank 能量计数
//
// 由场景创建并显式传给需要的协作者（收集能量球的输入、HUD），不使用全局实例。
type EnergyBank struct {
	energy  int
	display EnergyDisplay
	bus     *event.Bus
}

// NewEnergyBank 创建能量计数
//
// display 和 bus 均可为 nil
func NewEnergyBank(initial int, display EnergyDisplay, bus *event.Bus) *EnergyBank {
	bank := &EnergyBank{
		energy:  initial,
		display: display,
		bus:     bus,
	}
	if display != nil {
		display.ShowEnergy(initial)
	}
	return bank
}

// Add 增加能量并刷新显示
func (b *EnergyBank) Add(amount int) {
	b.energy += amount

	if b.display != nil {
		b.display.ShowEnergy(b.energy)
	}
	if b.bus != nil {
		b.bus.Publish(event.Event{
			Type: event.EnergyChanged,
			Data: event.EnergyData{Energy: b.energy, Delta: amount},
		})
	}
}

// Energy 当前能量
func (b *EnergyBank) Energy() int {
	return b.energy
}

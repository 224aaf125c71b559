package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a view of the simulation (e.g., the wave viewer).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Closer 是一个可选接口，场景被替换或程序退出时调用
//
// 场景在 Close 中释放事件订阅并保存进度，保证所有退出路径都会释放订阅。
type Closer interface {
	Close() error
}

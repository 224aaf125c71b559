package scenes

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keyBinding 按键到场景命令的映射
type keyBinding struct {
	key ebiten.Key
	cmd Command
}

// 调试键位：K 开始波次（与开始按钮等价）
var keyBindings = []keyBinding{
	{ebiten.KeyK, CommandStartWaves},
	{ebiten.KeyX, CommandStopWaves},
	{ebiten.KeyP, CommandTogglePause},
	{ebiten.KeyE, CommandCollectEnergy},
}

// justPressedCommands 返回本帧刚按下的按键对应的命令
func justPressedCommands() []Command {
	var cmds []Command
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			cmds = append(cmds, b.cmd)
		}
	}
	return cmds
}

// justTouchedOrClicked 检查是否刚刚发生点击或触摸
// 优先检测触摸，返回是否点击以及点击位置
func justTouchedOrClicked() (bool, int, int) {
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}

	return false, 0, 0
}

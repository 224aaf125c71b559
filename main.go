package main

import (
	"flag"
	"log"

	"github.com/gonewx/lanewave/pkg/app"
	"github.com/gonewx/lanewave/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configPath := flag.String("config", "config/app.toml", "runtime config (TOML)")
	levelPath := flag.String("level", "", "level file, overrides [level] path in the config")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// 初始化嵌入资源（磁盘缺少关卡或脚本时回退）
	embedded.Init(resourcesFS)

	gameApp, err := app.NewApp(app.Config{
		ConfigPath: *configPath,
		LevelPath:  *levelPath,
		Verbose:    *verbose,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer gameApp.Close()

	width, height := gameApp.WindowSize()
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("Lane Wave")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Printf("game loop exited: %v", err)
	}
}

// Package app 提供桌面查看器的核心包装器
//
// 该包将启动逻辑从 main 包提取出来：加载运行时配置、构建日志、
// 注册关卡场景工厂，并实现 ebiten.Game 接口。
package app

import (
	"fmt"
	"image/color"

	"github.com/gonewx/lanewave/pkg/config"
	"github.com/gonewx/lanewave/pkg/game"
	"github.com/gonewx/lanewave/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// Config 定义应用启动配置
type Config struct {
	// ConfigPath 运行时配置（TOML）路径
	ConfigPath string
	// LevelPath 覆盖配置中的关卡路径，为空则使用配置
	LevelPath string
	// Verbose 启用 debug 级别日志
	Verbose bool
}

// App 是查看器的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	config       *config.AppConfig
	levelPath    string
	logger       *zap.Logger

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 调用此函数前，应先调用 embedded.Init() 以便在磁盘缺少资源时使用嵌入的关卡和脚本。
func NewApp(cfg Config) (*App, error) {
	appConfig, err := config.LoadAppConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("运行时配置加载失败: %w", err)
	}
	if cfg.Verbose {
		appConfig.Logging.Level = "debug"
	}

	logger, err := game.NewLogger(appConfig.Logging)
	if err != nil {
		return nil, fmt.Errorf("日志初始化失败: %w", err)
	}

	levelPath := appConfig.Level.Path
	if cfg.LevelPath != "" {
		levelPath = cfg.LevelPath
	}

	a := &App{
		sceneManager: game.NewSceneManager(logger),
		config:       appConfig,
		levelPath:    levelPath,
		logger:       logger.Named("App"),
	}
	a.sceneManager.SetSceneFactory(a.newLevelScene)

	if err := a.sceneManager.LoadLevel(levelPath); err != nil {
		logger.Sync()
		return nil, fmt.Errorf("关卡加载失败: %w", err)
	}

	ebiten.SetTPS(appConfig.Simulation.TickRate)
	a.logger.Info("app initialized",
		zap.String("level", levelPath),
		zap.Int("tps", appConfig.Simulation.TickRate))

	return a, nil
}

// newLevelScene 场景工厂：打开关卡会话并创建波次场景
func (a *App) newLevelScene(levelPath string) (game.Scene, error) {
	sess, err := game.OpenSession(a.config, levelPath, a.logger)
	if err != nil {
		return nil, err
	}

	sim := a.config.Simulation
	clock := game.NewFixedStepClock(sim.TickDuration(), sim.MaxStepsPerFrame, sim.MaxFrameDelta)
	scene := scenes.NewSessionScene(sess, clock, a.config.View, a.logger)

	if sim.AutoStart {
		scene.Execute(scenes.CommandStartWaves)
	}
	return scene, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（由 SetTPS 决定）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.config.View.Width, a.config.View.Height)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	// R 重新加载关卡，失败时保留当前场景
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		// 新场景会从存储加载进度，先保存当前进度
		if scene, ok := a.sceneManager.GetCurrentScene().(*scenes.WaveScene); ok {
			if err := scene.SaveProgress(); err != nil {
				a.logger.Warn("failed to save progress before reload", zap.Error(err))
			}
		}
		if err := a.sceneManager.LoadLevel(a.levelPath); err != nil {
			a.logger.Error("reload level failed", zap.String("path", a.levelPath), zap.Error(err))
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.config.View.Width, a.config.View.Height
}

// WindowSize 配置中的窗口尺寸
func (a *App) WindowSize() (int, int) {
	return a.config.View.Width, a.config.View.Height
}

// Close 关闭当前场景（保存进度）并刷新日志
func (a *App) Close() {
	a.sceneManager.Close()
	_ = a.logger.Sync()
}

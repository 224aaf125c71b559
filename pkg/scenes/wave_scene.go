package scenes

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/gonewx/lanewave/pkg/components"
	"github.com/gonewx/lanewave/pkg/config"
	"github.com/gonewx/lanewave/pkg/ecs"
	"github.com/gonewx/lanewave/pkg/event"
	"github.com/gonewx/lanewave/pkg/game"
	"github.com/gonewx/lanewave/pkg/systems"
	"github.com/gonewx/lanewave/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"
)

// 渲染常量
const (
	agentRadius     = 0.25 // 世界单位
	waypointRadius  = 3    // 像素
	facingLength    = 0.5  // 世界单位
	hudMarginX      = 12
	hudLineHeight   = 18
	startButtonW    = 140
	startButtonH    = 36
	startButtonPadX = 16
	startButtonPadY = 16
)

var (
	backgroundColor  = color.RGBA{R: 34, G: 52, B: 40, A: 255}
	laneColor        = color.RGBA{R: 120, G: 160, B: 110, A: 255}
	waypointColor    = color.RGBA{R: 200, G: 220, B: 180, A: 255}
	defaultAgentTint = color.RGBA{R: 220, G: 80, B: 70, A: 255}
	facingColor      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	buttonColor      = color.RGBA{R: 70, G: 110, B: 180, A: 255}
	buttonIdleColor  = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	hudColor         = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	warnColor        = color.RGBA{R: 255, G: 190, B: 90, A: 255}
)

// Command 场景输入命令
type Command int

const (
	CommandStartWaves    Command = iota // K 键 / 开始按钮
	CommandStopWaves                    // X 键
	CommandTogglePause                  // P 键
	CommandCollectEnergy                // E 键，收集一个能量球
)

// EnergyOrbValue 每个能量球的能量
const EnergyOrbValue = 1

// WaveScene 俯视波次场景
//
// 职责：
//   - 把键盘/鼠标输入转换为调度器命令
//   - 用固定步长时钟推进模拟
//   - 绘制路线、代理和 HUD（能量、波次、配置错误提示）
type WaveScene struct {
	sim      *systems.Simulation
	clock    *game.FixedStepClock
	energy   *game.EnergyBank
	progress *game.ProgressStore
	view     config.ViewConfig
	logger   *zap.Logger

	face        text.Face
	energyText  string
	statusText  string
	statusWarn  bool
	startButton rect
	colors      map[string]color.RGBA

	session *game.Session // 由 NewSessionScene 设置，Close 时一并关闭
	subs    event.Group
	closed  bool
}

type rect struct {
	x, y, w, h float64
}

func (r rect) contains(x, y float64) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// NewWaveScene 创建波次场景
//
// progress 可为 nil（不持久化）。场景持有模拟，Close 时释放订阅并保存进度。
func NewWaveScene(sim *systems.Simulation, clock *game.FixedStepClock, progress *game.ProgressStore, view config.ViewConfig, logger *zap.Logger) *WaveScene {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &WaveScene{
		sim:      sim,
		clock:    clock,
		progress: progress,
		view:     view,
		logger:   logger.Named("WaveScene"),
		face:     text.NewGoXFace(basicfont.Face7x13),
		colors:   templateColors(sim.Level().Templates),
		startButton: rect{
			x: float64(view.Width - startButtonW - startButtonPadX),
			y: startButtonPadY,
			w: startButtonW,
			h: startButtonH,
		},
	}

	initialEnergy := 0
	if progress != nil {
		progress.Attach(sim.Bus)
		initialEnergy = progress.Progress().Energy
	}
	s.energy = game.NewEnergyBank(initialEnergy, s, sim.Bus)

	s.subs.Add(sim.Bus.Subscribe(event.WaveStarted, func(e event.Event) {
		data := e.Data.(event.WaveData)
		s.setStatus(fmt.Sprintf("Wave %d incoming", data.Wave), false)
	}))
	s.subs.Add(sim.Bus.Subscribe(event.WaveCompleted, func(e event.Event) {
		data := e.Data.(event.WaveData)
		s.setStatus(fmt.Sprintf("Wave %d active", data.Wave), false)
	}))
	s.subs.Add(sim.Bus.Subscribe(event.SpawnAborted, func(e event.Event) {
		data := e.Data.(event.SpawnAbortedData)
		s.setStatus(fmt.Sprintf("Wave %d aborted (%d in a row): %v", data.Wave, data.ConsecutiveFailures, data.Err), true)
	}))

	return s
}

// NewSessionScene 用已打开的关卡会话创建场景，场景关闭时关闭会话
func NewSessionScene(sess *game.Session, clock *game.FixedStepClock, view config.ViewConfig, logger *zap.Logger) *WaveScene {
	s := NewWaveScene(sess.Simulation, clock, sess.Progress, view, logger)
	s.session = sess
	return s
}

// ShowEnergy 实现 game.EnergyDisplay
func (s *WaveScene) ShowEnergy(energy int) {
	s.energyText = game.EnergyText(energy)
}

func (s *WaveScene) setStatus(msg string, warn bool) {
	s.statusText = msg
	s.statusWarn = warn
}

// Energy 能量计数
func (s *WaveScene) Energy() *game.EnergyBank {
	return s.energy
}

// Simulation 场景持有的模拟
func (s *WaveScene) Simulation() *systems.Simulation {
	return s.sim
}

// Execute 执行输入命令
func (s *WaveScene) Execute(cmd Command) {
	scheduler := s.sim.Scheduler
	switch cmd {
	case CommandStartWaves:
		scheduler.StartWaves()
	case CommandStopWaves:
		scheduler.Stop()
		s.setStatus("Waves stopped", false)
	case CommandTogglePause:
		state := scheduler.State()
		if !state.Running {
			return
		}
		if state.IsPaused {
			scheduler.Resume()
			s.setStatus("Resumed", false)
		} else {
			scheduler.Pause()
			s.setStatus("Paused", false)
		}
	case CommandCollectEnergy:
		s.energy.Add(EnergyOrbValue)
		s.logger.Debug("energy orb collected", zap.Int("energy", s.energy.Energy()))
	}
}

// HandleClick 处理鼠标点击，点中开始按钮时启动波次
func (s *WaveScene) HandleClick(x, y int) bool {
	if !s.startButton.contains(float64(x), float64(y)) {
		return false
	}
	s.Execute(CommandStartWaves)
	return true
}

// Update 处理输入并推进模拟
func (s *WaveScene) Update(deltaTime float64) {
	s.pollInput()
	s.Advance(deltaTime)
}

// Advance 按固定步长推进模拟，返回执行的步数
func (s *WaveScene) Advance(deltaTime float64) int {
	return s.clock.Advance(deltaTime, s.sim.Step)
}

func (s *WaveScene) pollInput() {
	for _, cmd := range justPressedCommands() {
		s.Execute(cmd)
	}
	if clicked, x, y := justTouchedOrClicked(); clicked {
		s.HandleClick(x, y)
	}
}

// SaveProgress 立即保存进度（重新加载关卡前调用）
func (s *WaveScene) SaveProgress() error {
	if s.progress == nil {
		return nil
	}
	return s.progress.Save()
}

// Close 释放订阅并保存进度，可重复调用
func (s *WaveScene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.subs.Close()
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		return nil
	}

	s.sim.Close()
	if s.progress != nil {
		if err := s.progress.Close(); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
	}
	return nil
}

// toScreen 俯视投影：世界 X -> 屏幕 x，世界 Z -> 屏幕 y（向上）
func (s *WaveScene) toScreen(p utils.Vec3) (float32, float32) {
	x := s.view.OriginX + p.X*s.view.Scale
	y := s.view.OriginY - p.Z*s.view.Scale
	return float32(x), float32(y)
}

// Draw 绘制场景
func (s *WaveScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	s.drawLanes(screen)
	s.drawAgents(screen)
	s.drawStartButton(screen)
	s.drawHUD(screen)
}

func (s *WaveScene) drawLanes(screen *ebiten.Image) {
	for _, lane := range s.sim.Scheduler.Lanes() {
		for i := 0; i < lane.Count(); i++ {
			x, y := s.toScreen(lane.Get(i).Position)
			if i > 0 {
				px, py := s.toScreen(lane.Get(i - 1).Position)
				vector.StrokeLine(screen, px, py, x, y, 2, laneColor, true)
			}
			vector.DrawFilledCircle(screen, x, y, waypointRadius, waypointColor, true)
		}
	}
}

func (s *WaveScene) drawAgents(screen *ebiten.Image) {
	em := s.sim.EntityManager
	radius := float32(agentRadius * s.view.Scale)

	for _, id := range s.sim.Agents() {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		agent, _ := ecs.GetComponent[*components.AgentComponent](em, id)

		tint, ok := s.colors[agent.TemplateID]
		if !ok {
			tint = defaultAgentTint
		}

		x, y := s.toScreen(pos.Position)
		vector.DrawFilledCircle(screen, x, y, radius, tint, true)

		fx, fy := s.toScreen(pos.Position.Add(pos.Facing.Scale(facingLength)))
		vector.StrokeLine(screen, x, y, fx, fy, 2, facingColor, true)
	}
}

func (s *WaveScene) drawStartButton(screen *ebiten.Image) {
	b := s.startButton
	fill := buttonColor
	label := "Start Waves"
	if s.sim.Scheduler.State().Running {
		fill = buttonIdleColor
		label = "Running"
	}
	vector.DrawFilledRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), fill, true)
	vector.StrokeRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), 1, hudColor, true)

	op := &text.DrawOptions{}
	op.GeoM.Translate(b.x+12, b.y+b.h/2-7)
	op.ColorScale.ScaleWithColor(hudColor)
	text.Draw(screen, label, s.face, op)
}

func (s *WaveScene) drawHUD(screen *ebiten.Image) {
	stats := s.sim.Stats()

	lines := []string{
		s.energyText,
		fmt.Sprintf("Wave: %d (%s)", stats.Wave, stats.Phase),
		fmt.Sprintf("Agents: %d  Spawned: %d  Arrived: %d", stats.ActiveAgents, stats.TotalSpawned, stats.Arrived),
		"K/click: start  X: stop  P: pause  E: energy orb",
	}
	if s.sim.Scheduler.State().IsPaused {
		lines = append(lines, "PAUSED")
	}

	y := float64(hudLineHeight)
	for _, line := range lines {
		s.drawText(screen, line, y, hudColor)
		y += hudLineHeight
	}
	if s.statusText != "" {
		tint := hudColor
		if s.statusWarn {
			tint = warnColor
		}
		s.drawText(screen, s.statusText, y, tint)
	}
}

func (s *WaveScene) drawText(screen *ebiten.Image, str string, y float64, clr color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(hudMarginX, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, s.face, op)
}

// templateColors 解析模板颜色 "#rrggbb"，无效时使用默认色
func templateColors(templates []config.AgentTemplateConfig) map[string]color.RGBA {
	colors := make(map[string]color.RGBA, len(templates))
	for _, tmpl := range templates {
		if c, ok := parseHexColor(tmpl.Color); ok {
			colors[tmpl.ID] = c
		}
	}
	return colors
}

func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}

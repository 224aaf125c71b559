package config

import (
	"fmt"

	"github.com/gonewx/lanewave/pkg/components"
	"github.com/gonewx/lanewave/pkg/embedded"
	"github.com/gonewx/lanewave/pkg/utils"
	"gopkg.in/yaml.v3"
)

// 默认值（关卡未配置时使用）
const (
	DefaultEnemiesPerWave   = 6
	DefaultSpawnInterval    = 0.8 // 秒
	DefaultTimeBetweenWaves = 6.0 // 秒
	DefaultSpacing          = 0.6 // 同波代理之间的间距
	DefaultAgentSpeed       = 1.5
	DefaultArriveDistance   = 0.15
)

// LevelConfig 关卡配置数据结构
// 定义了代理模板、波次参数和可用路线
type LevelConfig struct {
	ID          string `yaml:"id"`          // 关卡ID，如 "garden"
	Name        string `yaml:"name"`        // 关卡名称
	Description string `yaml:"description"` // 关卡描述（可选）

	// AgentTemplate 波次生成使用的代理模板ID；为空时每波都会报告配置错误
	AgentTemplate string                `yaml:"agentTemplate"`
	Templates     []AgentTemplateConfig `yaml:"templates"`

	Wave  WaveSettings `yaml:"wave"`
	Lanes []LaneConfig `yaml:"lanes"`
}

// AgentTemplateConfig 代理模板
type AgentTemplateConfig struct {
	ID             string  `yaml:"id"`
	Speed          float64 `yaml:"speed"`          // 默认 1.5
	ArriveDistance float64 `yaml:"arriveDistance"` // 默认 0.15
	// Mover 模板是否带移动器，默认 true；false 用于复现"实例缺少移动器"的配置错误
	Mover *bool  `yaml:"mover"`
	Color string `yaml:"color"` // 渲染颜色 "#rrggbb"（可选）
}

// UnmarshalYAML 未写出的键取默认值，显式写出的 0 保留
func (t *AgentTemplateConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ID             string   `yaml:"id"`
		Speed          *float64 `yaml:"speed"`
		ArriveDistance *float64 `yaml:"arriveDistance"`
		Mover          *bool    `yaml:"mover"`
		Color          string   `yaml:"color"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*t = AgentTemplateConfig{
		ID:             raw.ID,
		Speed:          DefaultAgentSpeed,
		ArriveDistance: DefaultArriveDistance,
		Mover:          raw.Mover,
		Color:          raw.Color,
	}
	if raw.Speed != nil {
		t.Speed = *raw.Speed
	}
	if raw.ArriveDistance != nil {
		t.ArriveDistance = *raw.ArriveDistance
	}
	return nil
}

// HasMover 模板是否带移动器
func (t AgentTemplateConfig) HasMover() bool {
	return t.Mover == nil || *t.Mover
}

// WaveSettings 波次参数
type WaveSettings struct {
	EnemiesPerWave   int     `yaml:"enemiesPerWave"`   // 每波代理数，默认 6
	SpawnInterval    float64 `yaml:"spawnInterval"`    // 同波代理生成间隔（秒），默认 0.8
	TimeBetweenWaves float64 `yaml:"timeBetweenWaves"` // 波间冷却（秒），默认 6
	Spacing          float64 `yaml:"spacing"`          // 生成位置间距，默认 0.6
}

// DefaultWaveSettings 未配置 wave 段时使用的波次参数
func DefaultWaveSettings() WaveSettings {
	return WaveSettings{
		EnemiesPerWave:   DefaultEnemiesPerWave,
		SpawnInterval:    DefaultSpawnInterval,
		TimeBetweenWaves: DefaultTimeBetweenWaves,
		Spacing:          DefaultSpacing,
	}
}

// UnmarshalYAML 未写出的键取默认值，显式写出的 0 保留
func (w *WaveSettings) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		EnemiesPerWave   *int     `yaml:"enemiesPerWave"`
		SpawnInterval    *float64 `yaml:"spawnInterval"`
		TimeBetweenWaves *float64 `yaml:"timeBetweenWaves"`
		Spacing          *float64 `yaml:"spacing"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*w = DefaultWaveSettings()
	if raw.EnemiesPerWave != nil {
		w.EnemiesPerWave = *raw.EnemiesPerWave
	}
	if raw.SpawnInterval != nil {
		w.SpawnInterval = *raw.SpawnInterval
	}
	if raw.TimeBetweenWaves != nil {
		w.TimeBetweenWaves = *raw.TimeBetweenWaves
	}
	if raw.Spacing != nil {
		w.Spacing = *raw.Spacing
	}
	return nil
}

// LaneConfig 路线配置
type LaneConfig struct {
	Name      string           `yaml:"name"`
	Waypoints []WaypointConfig `yaml:"waypoints"`
}

// WaypointConfig 路径点配置
type WaypointConfig struct {
	Pos []float64 `yaml:"pos"` // [x, y, z]
	Yaw float64   `yaml:"yaw"` // 偏航角（角度制），0 朝向 +Z
}

// LoadLevelConfig 从YAML文件加载关卡配置
// 参数：
//
//	filepath - 关卡配置文件的路径（相对或绝对路径）
//
// 返回：
//
//	*LevelConfig - 解析后的关卡配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadLevelConfig(filepath string) (*LevelConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", filepath, err)
	}

	levelConfig, err := ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid level config in %s: %w", filepath, err)
	}
	return levelConfig, nil
}

// ParseLevelConfig 解析YAML数据、应用默认值并验证
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	// wave 段缺失时保留预填的默认值
	levelConfig := LevelConfig{Wave: DefaultWaveSettings()}
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}

	applyDefaults(&levelConfig)

	if err := validateLevelConfig(&levelConfig); err != nil {
		return nil, err
	}
	return &levelConfig, nil
}

// applyDefaults 为 LevelConfig 中缺失的可选字段设置默认值
// 波次参数和模板的默认值在解码时按键是否出现设置，见 UnmarshalYAML
func applyDefaults(config *LevelConfig) {
	if config.Name == "" {
		config.Name = config.ID
	}
}

// validateLevelConfig 验证关卡配置的结构合法性
//
// 路线长度不足、缺少模板等"可运行但会降级"的问题不在这里拒绝，
// 见 Warnings()；运行时由波次调度器按配置错误处理。
func validateLevelConfig(config *LevelConfig) error {
	if config.ID == "" {
		return fmt.Errorf("level ID is required")
	}

	if config.Wave.EnemiesPerWave < 0 {
		return fmt.Errorf("wave.enemiesPerWave cannot be negative, got %d", config.Wave.EnemiesPerWave)
	}
	if config.Wave.SpawnInterval < 0 {
		return fmt.Errorf("wave.spawnInterval cannot be negative, got %v", config.Wave.SpawnInterval)
	}
	if config.Wave.TimeBetweenWaves < 0 {
		return fmt.Errorf("wave.timeBetweenWaves cannot be negative, got %v", config.Wave.TimeBetweenWaves)
	}
	if config.Wave.Spacing < 0 {
		return fmt.Errorf("wave.spacing cannot be negative, got %v", config.Wave.Spacing)
	}

	seenTemplates := make(map[string]bool)
	for i, tmpl := range config.Templates {
		if tmpl.ID == "" {
			return fmt.Errorf("templates[%d]: id is required", i)
		}
		if seenTemplates[tmpl.ID] {
			return fmt.Errorf("templates[%d]: duplicate id %q", i, tmpl.ID)
		}
		seenTemplates[tmpl.ID] = true

		if tmpl.Speed <= 0 {
			return fmt.Errorf("template %q: speed must be positive, got %v", tmpl.ID, tmpl.Speed)
		}
		if tmpl.ArriveDistance < 0 {
			return fmt.Errorf("template %q: arriveDistance cannot be negative, got %v", tmpl.ID, tmpl.ArriveDistance)
		}
	}

	seenLanes := make(map[string]bool)
	for i, lane := range config.Lanes {
		if lane.Name == "" {
			return fmt.Errorf("lanes[%d]: name is required", i)
		}
		if seenLanes[lane.Name] {
			return fmt.Errorf("lanes[%d]: duplicate name %q", i, lane.Name)
		}
		seenLanes[lane.Name] = true

		for j, wp := range lane.Waypoints {
			if len(wp.Pos) != 3 {
				return fmt.Errorf("lane %q, waypoint %d: pos must have 3 components, got %d", lane.Name, j, len(wp.Pos))
			}
		}
	}

	return nil
}

// Warnings 返回不阻止加载、但会导致运行时刷怪失败的配置问题
func (c *LevelConfig) Warnings() []string {
	var warnings []string

	if c.AgentTemplate == "" {
		warnings = append(warnings, "agentTemplate is not set, no agents will spawn")
	} else if _, ok := c.Template(c.AgentTemplate); !ok {
		warnings = append(warnings, fmt.Sprintf("agentTemplate %q has no matching template", c.AgentTemplate))
	}

	if len(c.Lanes) == 0 {
		warnings = append(warnings, "no lanes configured, no agents will spawn")
	}
	for _, lane := range c.Lanes {
		if len(lane.Waypoints) < 2 {
			warnings = append(warnings, fmt.Sprintf("lane %q has %d waypoints, at least 2 are needed to spawn", lane.Name, len(lane.Waypoints)))
		}
	}

	return warnings
}

// Template 按ID查找代理模板
func (c *LevelConfig) Template(id string) (AgentTemplateConfig, bool) {
	for _, tmpl := range c.Templates {
		if tmpl.ID == id {
			return tmpl, true
		}
	}
	return AgentTemplateConfig{}, false
}

// BuildLanes 根据配置构建只读路线列表（顺序与配置一致）
func (c *LevelConfig) BuildLanes() []*components.WaypointPath {
	lanes := make([]*components.WaypointPath, 0, len(c.Lanes))
	for _, lane := range c.Lanes {
		wps := make([]components.Waypoint, 0, len(lane.Waypoints))
		for _, wp := range lane.Waypoints {
			wps = append(wps, components.Waypoint{
				Position: utils.Vec3{X: wp.Pos[0], Y: wp.Pos[1], Z: wp.Pos[2]},
				Rotation: utils.QuatFromYaw(wp.Yaw),
			})
		}
		lanes = append(lanes, components.NewWaypointPath(lane.Name, wps))
	}
	return lanes
}

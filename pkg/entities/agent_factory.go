package entities

import (
	"errors"
	"fmt"

	"github.com/gonewx/lanewave/pkg/components"
	"github.com/gonewx/lanewave/pkg/config"
	"github.com/gonewx/lanewave/pkg/ecs"
	"github.com/gonewx/lanewave/pkg/utils"
)

// ErrUnknownTemplate 模板ID未在关卡配置中定义
var ErrUnknownTemplate = errors.New("unknown agent template")

// NewAgentEntity 按模板创建一个代理实体
// 参数:
//   - manager: EntityManager 实例
//   - tmpl: 代理模板（速度、到达距离、是否带移动器）
//   - pos: 生成位置
//   - rot: 生成朝向
//
// 返回: 创建的实体ID
//
// 模板 Mover=false 时不添加 MoverComponent，调用方初始化移动器会失败。
func NewAgentEntity(manager *ecs.EntityManager, tmpl config.AgentTemplateConfig, pos utils.Vec3, rot utils.Quat) ecs.EntityID {
	id := manager.CreateEntity()

	ecs.AddComponent(manager, id, &components.PositionComponent{
		Position: pos,
		Facing:   rot.ForwardVector(),
	})

	ecs.AddComponent(manager, id, &components.AgentComponent{
		TemplateID:    tmpl.ID,
		SpawnPosition: pos,
	})

	if tmpl.HasMover() {
		ecs.AddComponent(manager, id, &components.MoverComponent{
			State:          components.MoverIdle,
			Speed:          tmpl.Speed,
			ArriveDistance: tmpl.ArriveDistance,
		})
	}

	return id
}

// AgentFactory 按模板ID生成代理，供波次调度器使用
type AgentFactory struct {
	manager   *ecs.EntityManager
	templates map[string]config.AgentTemplateConfig
}

// NewAgentFactory 创建代理工厂
func NewAgentFactory(manager *ecs.EntityManager, templates []config.AgentTemplateConfig) *AgentFactory {
	f := &AgentFactory{
		manager:   manager,
		templates: make(map[string]config.AgentTemplateConfig, len(templates)),
	}
	for _, tmpl := range templates {
		f.templates[tmpl.ID] = tmpl
	}
	return f
}

// SpawnAgent 在指定位置和朝向生成代理
func (f *AgentFactory) SpawnAgent(templateID string, pos utils.Vec3, rot utils.Quat) (ecs.EntityID, error) {
	tmpl, ok := f.templates[templateID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}
	return NewAgentEntity(f.manager, tmpl, pos, rot), nil
}

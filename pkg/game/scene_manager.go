package game

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

var errNoSceneFactory = errors.New("scene factory not set")

// SceneFactory 场景工厂函数类型
// 用于按关卡路径创建场景，避免循环依赖
type SceneFactory func(levelPath string) (Scene, error)

// SceneManager manages which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
	logger       *zap.Logger
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager(logger *zap.Logger) *SceneManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SceneManager{
		logger: logger.Named("SceneManager"),
	}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene, closing the previous one if it implements Closer.
func (sm *SceneManager) SwitchTo(scene Scene) {
	sm.closeCurrent()
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadLevel 通过工厂创建关卡场景并切换
// 创建失败时保留当前场景
func (sm *SceneManager) LoadLevel(levelPath string) error {
	sm.logger.Info("loading level", zap.String("path", levelPath))

	if sm.sceneFactory == nil {
		sm.logger.Error("scene factory not set")
		return errNoSceneFactory
	}

	newScene, err := sm.sceneFactory(levelPath)
	if err != nil {
		sm.logger.Error("failed to create level scene", zap.String("path", levelPath), zap.Error(err))
		return err
	}

	sm.SwitchTo(newScene)
	return nil
}

// Close 关闭当前场景
func (sm *SceneManager) Close() {
	sm.closeCurrent()
	sm.currentScene = nil
}

func (sm *SceneManager) closeCurrent() {
	if closer, ok := sm.currentScene.(Closer); ok {
		if err := closer.Close(); err != nil {
			sm.logger.Warn("scene close failed", zap.Error(err))
		}
	}
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

package game

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene is a mock implementation of the Scene interface for testing.
type MockScene struct {
	updateCalled bool
	drawCalled   bool
	deltaTime    float64
	closeCalls   int
}

// Update records that Update was called and stores the deltaTime.
func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

// Draw records that Draw was called.
func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

// Close records teardown.
func (m *MockScene) Close() error {
	m.closeCalls++
	return nil
}

// TestNewSceneManager verifies that NewSceneManager creates a valid instance.
func TestNewSceneManager(t *testing.T) {
	sm := NewSceneManager(nil)
	if sm == nil {
		t.Fatal("NewSceneManager() returned nil")
	}
	if sm.GetCurrentScene() != nil {
		t.Error("Expected currentScene to be nil initially")
	}
}

// TestSceneManagerUpdateAndDraw verifies that calls reach the current scene.
func TestSceneManagerUpdateAndDraw(t *testing.T) {
	sm := NewSceneManager(nil)
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	sm.Update(0.02)
	sm.Draw(nil)

	if !mockScene.updateCalled || !mockScene.drawCalled {
		t.Error("Scene's Update/Draw was not called")
	}
	if mockScene.deltaTime != 0.02 {
		t.Errorf("Expected deltaTime 0.02, got %v", mockScene.deltaTime)
	}
}

// TestSceneManagerNoScene verifies that nil scene is handled gracefully.
func TestSceneManagerNoScene(t *testing.T) {
	sm := NewSceneManager(nil)
	sm.Update(0.016)
	sm.Draw(nil)
	sm.Close()
}

// TestSceneManagerClosesReplacedScene 切换场景时关闭旧场景
func TestSceneManagerClosesReplacedScene(t *testing.T) {
	sm := NewSceneManager(nil)
	scene1 := &MockScene{}
	scene2 := &MockScene{}

	sm.SwitchTo(scene1)
	sm.SwitchTo(scene2)
	if scene1.closeCalls != 1 {
		t.Errorf("Expected scene1 to be closed once, got %d", scene1.closeCalls)
	}

	sm.Update(0.016)
	if scene1.updateCalled || !scene2.updateCalled {
		t.Error("Only the current scene should be updated")
	}

	sm.Close()
	if scene2.closeCalls != 1 || sm.GetCurrentScene() != nil {
		t.Error("Close should close and clear the current scene")
	}
}

// TestSceneManagerLoadLevel 工厂创建失败时保留当前场景
func TestSceneManagerLoadLevel(t *testing.T) {
	sm := NewSceneManager(nil)
	if err := sm.LoadLevel("x.yaml"); err == nil {
		t.Error("Expected error without factory")
	}

	current := &MockScene{}
	sm.SwitchTo(current)

	failure := errors.New("bad level")
	sm.SetSceneFactory(func(path string) (Scene, error) {
		if path == "bad.yaml" {
			return nil, failure
		}
		return &MockScene{}, nil
	})

	if err := sm.LoadLevel("bad.yaml"); !errors.Is(err, failure) {
		t.Errorf("Expected factory error, got %v", err)
	}
	if sm.GetCurrentScene() != current || current.closeCalls != 0 {
		t.Error("Failed load should keep the current scene open")
	}

	if err := sm.LoadLevel("good.yaml"); err != nil {
		t.Fatalf("LoadLevel() failed: %v", err)
	}
	if sm.GetCurrentScene() == current || current.closeCalls != 1 {
		t.Error("Successful load should replace and close the previous scene")
	}
}

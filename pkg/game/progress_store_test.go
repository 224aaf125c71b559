package game

import (
	"os"
	"testing"

	"github.com/gonewx/lanewave/pkg/event"
	"github.com/quasilyte/gdata/v2"
)

// createTestGdataManager 在临时 HOME 下创建 gdata 管理器
func createTestGdataManager(t *testing.T, appName string) *gdata.Manager {
	t.Helper()

	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return manager
}

// TestProgressStoreTracksEvents 订阅事件更新进度，Close 后保存并停止更新
func TestProgressStoreTracksEvents(t *testing.T) {
	manager := createTestGdataManager(t, "test_progress")
	bus := event.NewBus()

	store := NewProgressStore(manager, "garden", nil)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	store.Attach(bus)

	bus.Publish(event.Event{Type: event.WaveStarted, Data: event.WaveData{Wave: 1}})
	bus.Publish(event.Event{Type: event.WaveStarted, Data: event.WaveData{Wave: 2}})
	bus.Publish(event.Event{Type: event.AgentArrived, Data: event.AgentData{}})
	NewEnergyBank(0, nil, bus).Add(4)

	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	bus.Publish(event.Event{Type: event.WaveStarted, Data: event.WaveData{Wave: 9}})

	got := store.Progress()
	if got.HighestWave != 2 || got.TotalArrived != 1 || got.Energy != 4 {
		t.Errorf("Unexpected progress: %+v", got)
	}

	reloaded := NewProgressStore(manager, "garden", nil)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if reloaded.Progress() != got {
		t.Errorf("Expected reloaded progress %+v, got %+v", got, reloaded.Progress())
	}

	other := NewProgressStore(manager, "desert", nil)
	if err := other.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if other.Progress() != (Progress{}) {
		t.Errorf("Expected empty progress for another level, got %+v", other.Progress())
	}
}

// TestProgressStoreDegraded gdata 不可用时只保留内存进度
func TestProgressStoreDegraded(t *testing.T) {
	store := NewProgressStore(nil, "garden", nil)
	if store.Persistent() {
		t.Error("Expected non-persistent store")
	}
	if err := store.Load(); err != nil {
		t.Errorf("Load() in degraded mode should not fail: %v", err)
	}

	bus := event.NewBus()
	store.Attach(bus)
	bus.Publish(event.Event{Type: event.WaveStarted, Data: event.WaveData{Wave: 3}})

	if err := store.Close(); err != nil {
		t.Errorf("Close() in degraded mode should not fail: %v", err)
	}
	if store.Progress().HighestWave != 3 {
		t.Errorf("Expected highest wave 3, got %d", store.Progress().HighestWave)
	}
}

func TestProgressStoreCorruptData(t *testing.T) {
	manager := createTestGdataManager(t, "test_progress_corrupt")
	if err := manager.SaveObjectProp(progressObject, "garden", []byte("energy: [oops")); err != nil {
		t.Fatalf("SaveObjectProp() failed: %v", err)
	}

	store := NewProgressStore(manager, "garden", nil)
	if err := store.Load(); err == nil {
		t.Error("Expected error for corrupt progress data")
	}
	if store.Progress() != (Progress{}) {
		t.Errorf("Expected empty progress after failed load, got %+v", store.Progress())
	}
}

package event

import "testing"

func TestBusPublish(t *testing.T) {
	bus := NewBus()

	var got []int
	bus.Subscribe(WaveStarted, func(e Event) {
		got = append(got, e.Data.(WaveData).Wave)
	})
	bus.Subscribe(AgentArrived, func(e Event) {
		t.Errorf("AgentArrived handler should not fire for %s", e.Type)
	})

	bus.Publish(Event{Type: WaveStarted, Data: WaveData{Wave: 1}})
	bus.Publish(Event{Type: WaveStarted, Data: WaveData{Wave: 2}})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected waves [1 2], got %v", got)
	}
}

// TestSubscriptionClose 取消订阅后不再回调，重复 Close 无副作用
func TestSubscriptionClose(t *testing.T) {
	bus := NewBus()

	calls, otherCalls := 0, 0
	sub := bus.Subscribe(EnergyChanged, func(Event) { calls++ })
	other := bus.Subscribe(EnergyChanged, func(Event) { otherCalls++ })

	bus.Publish(Event{Type: EnergyChanged})
	sub.Close()
	sub.Close()
	bus.Publish(Event{Type: EnergyChanged})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if otherCalls != 2 {
		t.Errorf("Expected remaining subscriber to get 2 calls, got %d", otherCalls)
	}

	other.Close()
	bus.Publish(Event{Type: EnergyChanged})
	if otherCalls != 2 {
		t.Errorf("Expected no calls after Close, got %d", otherCalls)
	}

	var nilSub *Subscription
	nilSub.Close()
}

// TestCloseDuringPublish 回调中取消后续订阅，当次分发即跳过
func TestCloseDuringPublish(t *testing.T) {
	bus := NewBus()

	var second *Subscription
	secondCalls := 0
	bus.Subscribe(AgentSpawned, func(Event) { second.Close() })
	second = bus.Subscribe(AgentSpawned, func(Event) { secondCalls++ })

	bus.Publish(Event{Type: AgentSpawned})
	if secondCalls != 0 {
		t.Errorf("Expected closed subscription to be skipped, got %d calls", secondCalls)
	}
}

func TestGroupClose(t *testing.T) {
	bus := NewBus()

	var group Group
	calls := 0
	group.Add(bus.Subscribe(WaveStarted, func(Event) { calls++ }))
	group.Add(bus.Subscribe(WaveCompleted, func(Event) { calls++ }))

	group.Close()
	group.Close()
	bus.Publish(Event{Type: WaveStarted})
	bus.Publish(Event{Type: WaveCompleted})

	if calls != 0 {
		t.Errorf("Expected no calls after group close, got %d", calls)
	}
}

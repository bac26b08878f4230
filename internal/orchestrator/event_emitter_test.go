package orchestrator

import (
	"testing"
	"time"
)

func TestEmitterDeliversInOrder(t *testing.T) {
	e := NewEventEmitter(4)
	e.Emit(Event{Type: EventPlanBuilt})
	e.Emit(Event{Type: EventStepStarted})
	e.Emit(Event{Type: EventStepCompleted})
	e.Close()

	var got []EventType
	for ev := range e.Events() {
		got = append(got, ev.Type)
	}
	want := []EventType{EventPlanBuilt, EventStepStarted, EventStepCompleted}
	if len(got) != len(want) {
		t.Fatalf("received %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEmitterDropsWhenConsumerStalls(t *testing.T) {
	e := NewEventEmitter(1)
	e.Emit(Event{Type: EventPlanBuilt})

	done := make(chan struct{})
	go func() {
		e.Emit(Event{Type: EventStepStarted}) // buffer full, nobody reading
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked instead of dropping")
	}
	if got := e.DroppedCount(); got != 1 {
		t.Errorf("DroppedCount() = %d, want 1", got)
	}
}

func TestEmitterUnblocksWhenConsumerCatchesUp(t *testing.T) {
	e := NewEventEmitter(1)
	e.Emit(Event{Type: EventPlanBuilt})

	go func() {
		time.Sleep(20 * time.Millisecond)
		<-e.Events()
	}()

	e.Emit(Event{Type: EventStepStarted}) // waits for the drain, then lands
	if got := e.DroppedCount(); got != 0 {
		t.Errorf("DroppedCount() = %d, want 0", got)
	}
	if ev := <-e.Events(); ev.Type != EventStepStarted {
		t.Errorf("delivered %v, want step_started", ev.Type)
	}
}

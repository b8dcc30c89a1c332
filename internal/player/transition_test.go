package player

import "testing"

func TestNewTransitionRequiresPausedSpawn(t *testing.T) {
	tests := []struct {
		requested bool
		kind      Kind
		want      bool
	}{
		{true, KindMPV, true},
		{true, KindMPlayer, false},
		{true, KindVLC, false},
		{true, KindGeneric, false},
		{false, KindMPV, false},
	}
	for _, tt := range tests {
		tr := NewTransition(tt.requested, tt.kind, 1)
		if tr.Enabled() != tt.want {
			t.Errorf("NewTransition(%v, %v).Enabled() = %v, want %v", tt.requested, tt.kind, tr.Enabled(), tt.want)
		}
	}
}

func TestTransitionCommitPromotesPreload(t *testing.T) {
	tr := &Transition{enabled: true, preloads: make([]*Process, 1)}
	sup := NewSupervisor(1)
	defer sup.TerminateAll()
	defer tr.DiscardAll()

	old := spawnSleep(t, 0, "30")
	sup.SetPrimary(0, old)

	next := spawnSleep(t, 0, "30")
	tr.preloads[0] = next

	if !tr.Commit(0, sup) {
		t.Fatal("Commit() = false with a live preload")
	}
	if sup.Primary(0) != next {
		t.Error("preload did not become primary")
	}
	if old.Active {
		t.Error("old primary still active after commit")
	}
	if tr.preloads[0] != nil {
		t.Error("preload slot not cleared after commit")
	}
}

func TestTransitionCommitWithoutPreloadFallsBack(t *testing.T) {
	tr := &Transition{enabled: true, preloads: make([]*Process, 1)}
	sup := NewSupervisor(1)
	defer sup.TerminateAll()

	old := spawnSleep(t, 0, "30")
	sup.SetPrimary(0, old)

	if tr.Commit(0, sup) {
		t.Error("Commit() = true with no preload")
	}
	if sup.Primary(0) != old {
		t.Error("failed commit must leave the primary untouched")
	}
}

func TestTransitionCommitDeadPreloadFallsBack(t *testing.T) {
	tr := &Transition{enabled: true, preloads: make([]*Process, 1)}
	sup := NewSupervisor(1)
	defer sup.TerminateAll()

	dead := spawnSleep(t, 0, "30")
	dead.Terminate()
	tr.preloads[0] = dead

	if tr.Commit(0, sup) {
		t.Error("Commit() = true with a dead preload")
	}
	if tr.preloads[0] != nil {
		t.Error("dead preload left in slot")
	}
}

func TestTransitionDisabledIsInert(t *testing.T) {
	tr := NewTransition(false, KindMPV, 1)
	sup := NewSupervisor(1)

	if err := tr.Preload(0, SpawnOptions{Player: "/bin/false"}, false); err != nil {
		t.Errorf("disabled Preload() error = %v, want nil", err)
	}
	if tr.Commit(0, sup) {
		t.Error("disabled Commit() = true")
	}
}

func TestTransitionResizeDiscardsExcess(t *testing.T) {
	tr := &Transition{enabled: true, preloads: make([]*Process, 2)}
	defer tr.DiscardAll()

	p := spawnSleep(t, 1, "30")
	tr.preloads[1] = p

	tr.Resize(1)

	if p.Active {
		t.Error("preload on removed surface still active")
	}
	if len(tr.preloads) != 1 {
		t.Errorf("len(preloads) = %d, want 1", len(tr.preloads))
	}
}

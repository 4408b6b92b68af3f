package components

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusIdle, "Idle"},
		{StatusForaging, "Foraging"},
		{StatusMating, "Mating"},
		{StatusFleeing, "Fleeing"},
		{Status(NumStatuses), "Unknown"},
		{Status(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestStatusPriorityOrder(t *testing.T) {
	// Higher values win when behaviors compete.
	if !(StatusIdle < StatusForaging && StatusForaging < StatusMating && StatusMating < StatusFleeing) {
		t.Error("status constants must run from lowest to highest priority")
	}
}

func TestStatusStringDoesNotAllocate(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = StatusFleeing.String()
	})
	if allocs != 0 {
		t.Errorf("Status.String allocated %v times per call, want 0", allocs)
	}
}

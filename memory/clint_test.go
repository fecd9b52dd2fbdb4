package memory

import "testing"

func TestClintRaisesOnCompare(t *testing.T) {
	var pending []bool
	c := NewClint(1, func(v bool) { pending = append(pending, v) })

	if err := c.Store(ClintOffsetMtimeCmpLo, 4, 3); err != nil {
		t.Fatalf("store mtimecmp: %v", err)
	}
	for i := 0; i < 3; i++ {
		c.OnCycle(1)
	}
	if len(pending) != 1 || !pending[0] {
		t.Fatalf("expected one rising edge at mtime==mtimecmp, got %v", pending)
	}
}

func TestClintMtimeAdvancesWithPeriod(t *testing.T) {
	c := NewClint(4, nil)
	c.OnCycle(15)
	if got, _ := c.Load(ClintOffsetMtimeLo, 4); got != 3 {
		t.Fatalf("mtime = %d, want 3", got)
	}
	c.OnCycle(1)
	if got, _ := c.Load(ClintOffsetMtimeLo, 4); got != 4 {
		t.Fatalf("mtime = %d, want 4", got)
	}
}

func TestClintFallsAfterCompareRaised(t *testing.T) {
	var edges []bool
	c := NewClint(1, func(v bool) { edges = append(edges, v) })
	_ = c.Store(ClintOffsetMtimeCmpLo, 4, 2)
	c.OnCycle(2)
	_ = c.Store(ClintOffsetMtimeCmpLo, 4, 100)
	if len(edges) != 2 || edges[0] != true || edges[1] != false {
		t.Fatalf("expected rising then falling edge, got %v", edges)
	}
}

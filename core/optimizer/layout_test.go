package optimizer

import "testing"

func TestNewLayout_WithWear(t *testing.T) {
	l := NewLayout(4, 3, true)
	if l.Charge != 0 || l.Discharge != 4 || l.GridImport != 8 || l.GridExport != 12 {
		t.Fatalf("power blocks: %+v", l)
	}
	if l.Energy != 16 || l.Curtail != 20 {
		t.Fatalf("energy blocks: %+v", l)
	}
	if l.DeltaPos != 24 || l.DeltaNeg != 28 || l.DOD != 32 || l.CycWear != 36 || l.TotalWear != 40 {
		t.Fatalf("wear blocks: %+v", l)
	}
	if l.Peak != 44 || l.Fill != 45 {
		t.Fatalf("peak/fill: %+v", l)
	}
	if l.NumVars != 48 {
		t.Fatalf("num vars: got %d want 48", l.NumVars)
	}
}

func TestNewLayout_WithoutWear(t *testing.T) {
	l := NewLayout(4, 3, false)
	if l.DeltaPos != -1 || l.DeltaNeg != -1 || l.DOD != -1 || l.CycWear != -1 || l.TotalWear != -1 {
		t.Fatalf("wear offsets should be -1: %+v", l)
	}
	if l.Peak != 24 || l.Fill != 25 {
		t.Fatalf("peak/fill: %+v", l)
	}
	if l.NumVars != 28 {
		t.Fatalf("num vars: got %d want 28", l.NumVars)
	}
}

package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5,0,3)=%d", got)
	}
	if got := Clamp(-1.5, 0.0, 65535.0); got != 0 {
		t.Errorf("Clamp(-1.5,0,65535)=%v", got)
	}
	if got := Clamp(1.3, 1.35, 1.25); got != 1.3 {
		t.Errorf("swapped bounds: %v", got)
	}
	if got := Clamp(1.4, 1.35, 1.25); got != 1.35 {
		t.Errorf("swapped bounds upper: %v", got)
	}
}

package metric

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Metric{Cosine, Euclidean, Manhattan}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Metric{"", "dot", "COSINE", "l2"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestDistanceBased(t *testing.T) {
	if Cosine.DistanceBased() {
		t.Error("cosine is not distance based")
	}
	if !Euclidean.DistanceBased() || !Manhattan.DistanceBased() {
		t.Error("euclidean and manhattan are distance based")
	}
}

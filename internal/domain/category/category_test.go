package category

import "testing"

func TestIsValid(t *testing.T) {
	for _, c := range All() {
		if !c.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", c)
		}
	}

	invalid := []Category{"", "sports", "FINANCE", Mixed}
	for _, c := range invalid {
		if c.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", c)
		}
	}
}

func TestAll_Order(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(all))
	}
	if all[0] != Finance || all[len(all)-1] != General {
		t.Errorf("unexpected canonical order: %v", all)
	}
}

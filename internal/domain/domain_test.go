package domain

import "testing"

func TestModelsHaveDistinctTables(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Models() {
		tn, ok := m.(interface{ TableName() string })
		if !ok {
			t.Fatalf("%T has no TableName", m)
		}
		if seen[tn.TableName()] {
			t.Fatalf("table %q registered twice", tn.TableName())
		}
		seen[tn.TableName()] = true
	}
	if len(seen) != 11 {
		t.Fatalf("expected 11 models, got %d", len(seen))
	}
}

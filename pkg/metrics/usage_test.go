package metrics

import "testing"

func TestSearchUsageIsZero(t *testing.T) {
	if !(SearchUsage{}).IsZero() {
		t.Fatal("empty usage should be zero")
	}
	if (SearchUsage{VariantsTried: 1}).IsZero() {
		t.Fatal("usage with variants should not be zero")
	}
}

package ids

import "testing"

func TestIDRoundTrip(t *testing.T) {
	if got := MineID(7); got != "M0007" {
		t.Fatalf("MineID = %q", got)
	}
	if got := MarkerID(42); got != "K000042" {
		t.Fatalf("MarkerID = %q", got)
	}
	if n, ok := ParseUintAfterPrefix(MarkerPrefix, MarkerID(42)); !ok || n != 42 {
		t.Fatalf("parse marker: %d %v", n, ok)
	}
}

func TestParseUintAfterPrefixRejectsInvalid(t *testing.T) {
	tests := []string{"", "M", "Kx1", "M12"}
	for _, tc := range tests {
		if _, ok := ParseUintAfterPrefix(MarkerPrefix, tc); ok {
			t.Fatalf("expected parse failure for %q", tc)
		}
	}
}

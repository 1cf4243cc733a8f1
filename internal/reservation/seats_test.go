package reservation

import (
	"reflect"
	"testing"
)

func TestSeatNumber(t *testing.T) {
	cases := map[int]string{1: "A1", 12: "A12", 150: "A150"}
	for n, want := range cases {
		if got := SeatNumber(n); got != want {
			t.Errorf("SeatNumber(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestInvalidSeatNumbers(t *testing.T) {
	tests := []struct {
		name       string
		seats      []string
		totalSeats int
		want       []string
	}{
		{"all valid", []string{"A1", "A5", "A10"}, 10, nil},
		{"beyond the range", []string{"A1", "A11"}, 10, []string{"A11"}},
		{"zero and negative ordinals", []string{"A0", "A-1"}, 10, []string{"A0", "A-1"}},
		{"wrong prefix", []string{"B1"}, 10, []string{"B1"}},
		{"no ordinal", []string{"A", "Ax"}, 10, []string{"A", "Ax"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invalidSeatNumbers(tt.seats, tt.totalSeats)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("invalidSeatNumbers(%v, %d) = %v, want %v", tt.seats, tt.totalSeats, got, tt.want)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	set := map[string]struct{}{"A2": {}, "A4": {}}
	got := intersect([]string{"A4", "A1", "A2"}, set)
	want := []string{"A4", "A2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("intersect = %v, want %v (caller order preserved)", got, want)
	}
	if out := intersect([]string{"A1"}, set); out != nil {
		t.Fatalf("expected nil for no overlap, got %v", out)
	}
}

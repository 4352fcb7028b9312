package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{
		-3:   DefaultLimit,
		0:    DefaultLimit,
		5:    5,
		100:  100,
		1000: MaxLimit,
	}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

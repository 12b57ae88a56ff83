package ports

import (
	"math"
	"testing"
)

func TestPage_Normalize(t *testing.T) {
	cases := []struct {
		name string
		in   Page
		want Page
	}{
		{"defaults", Page{}, Page{Page: 1, Limit: DefaultPageLimit}},
		{"negative", Page{Page: -4, Limit: -1}, Page{Page: 1, Limit: DefaultPageLimit}},
		{"limit capped", Page{Page: 2, Limit: 1000}, Page{Page: 2, Limit: MaxPageLimit}},
		{"page capped", Page{Page: math.MaxInt, Limit: MaxPageLimit}, Page{Page: MaxPage, Limit: MaxPageLimit}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestPage_SkipNeverNegative(t *testing.T) {
	for _, limit := range []int{1, DefaultPageLimit, MaxPageLimit, math.MaxInt} {
		p := Page{Page: math.MaxInt, Limit: limit}.Normalize()
		if p.Skip() < 0 {
			t.Fatalf("limit %d: skip = %d", limit, p.Skip())
		}
	}
}

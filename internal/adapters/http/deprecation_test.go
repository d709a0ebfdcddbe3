package http

import "testing"

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"/v1/state", "/v1/state", true},
		{"/v1/state", "/v1/snapshot", false},
		{"/v1/drones/:id/trail", "/v1/drones/d1/trail", true},
		{"/v1/drones/:id/trail", "/v1/drones/d1", false},
		{"/v1/drones/:id", "/v1/drones/", false},
	}
	for _, tc := range cases {
		if got := matchPattern(tc.path, tc.pattern); got != tc.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tc.path, tc.pattern, got, tc.want)
		}
	}
}

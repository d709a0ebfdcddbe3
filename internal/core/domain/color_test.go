package domain_test

import (
	"testing"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

func TestPalette_AssignsPresetInOrder(t *testing.T) {
	teams := make([]domain.Team, 8)
	for i := range teams {
		teams[i] = domain.Team{ID: domain.ID(string(rune('a' + i)))}
	}
	p := domain.NewPalette(teams, nil)

	for i, team := range teams {
		want := domain.DefaultTeamColors[i%len(domain.DefaultTeamColors)]
		if got := p.Color(team.ID); got != want {
			t.Errorf("team %s: expected %v, got %v", team.ID, want, got)
		}
	}
	if p.Len() != 8 {
		t.Errorf("expected 8 teams, got %d", p.Len())
	}
}

func TestPalette_DuplicateTeamKeepsFirstColor(t *testing.T) {
	p := domain.NewPalette([]domain.Team{{ID: "1"}, {ID: "1"}, {ID: "2"}}, nil)
	if p.Color("1") != (domain.RGB{255, 0, 0}) {
		t.Errorf("expected first color for team 1, got %v", p.Color("1"))
	}
	if p.Len() != 2 {
		t.Errorf("expected 2 teams, got %d", p.Len())
	}
}

func TestPalette_UnknownTeamIsBlack(t *testing.T) {
	p := domain.NewPalette([]domain.Team{{ID: "1"}}, nil)
	if p.Color("404") != domain.Black {
		t.Errorf("expected black, got %v", p.Color("404"))
	}

	var nilPalette *domain.Palette
	if nilPalette.Color("1") != domain.Black || nilPalette.Len() != 0 || nilPalette.Legend() != nil {
		t.Error("nil palette should behave as empty")
	}
}

func TestPalette_Legend(t *testing.T) {
	p := domain.NewPalette([]domain.Team{{ID: "b", Name: "Beta"}, {ID: "a", Name: "Alpha"}}, nil)
	legend := p.Legend()
	if len(legend) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(legend))
	}
	if legend[0].TeamID != "a" || legend[0].Name != "Alpha" || legend[0].Color != (domain.RGB{0, 255, 0}) {
		t.Errorf("unexpected first entry %+v", legend[0])
	}
	if legend[1].TeamID != "b" || legend[1].Color != (domain.RGB{255, 0, 0}) {
		t.Errorf("unexpected second entry %+v", legend[1])
	}
}

func TestHeatColor(t *testing.T) {
	cases := []struct {
		count, max int
		want       domain.RGB
	}{
		{0, 5, domain.RGB{0, 255, 0}},
		{-3, 5, domain.RGB{0, 255, 0}},
		{2, 5, domain.RGB{204, 255, 0}},
		{5, 5, domain.RGB{255, 0, 0}},
		{12, 5, domain.RGB{255, 0, 0}},
		{1, 0, domain.RGB{255, 0, 0}},
	}
	for _, tc := range cases {
		if got := domain.HeatColor(tc.count, tc.max); got != tc.want {
			t.Errorf("HeatColor(%d, %d) = %v, want %v", tc.count, tc.max, got, tc.want)
		}
	}
}

func TestHeatColor_Monotonic(t *testing.T) {
	prev := domain.HeatColor(0, 10)
	for i := 1; i <= 10; i++ {
		c := domain.HeatColor(i, 10)
		// Red rises to full before green falls.
		if c[0] < prev[0] || c[1] > prev[1] {
			t.Errorf("step %d: %v does not move from %v towards red", i, c, prev)
		}
		if c[2] != 0 {
			t.Errorf("step %d: unexpected blue in %v", i, c)
		}
		prev = c
	}
}

package assess

import (
	"testing"

	"github.com/subnetscout/prescan/pkg/config"
)

func TestDecideRate_Boundaries(t *testing.T) {
	bands := config.Default().RateLevels

	cases := []struct {
		score float64
		level int
	}{
		{100, 5},
		{90.0, 5},
		{89.999, 4},
		{75.0, 4},
		{74.999, 3},
		{60.0, 3},
		{59.999, 2},
		{40.0, 2},
		{39.999, 1},
		{0, 1},
	}
	for _, tc := range cases {
		rate := DecideRate(tc.score, bands)
		if rate.Level != tc.level {
			t.Errorf("DecideRate(%f) = level %d, want %d", tc.score, rate.Level, tc.level)
		}
	}
}

func TestDecideRate_NameFollowsLevel(t *testing.T) {
	bands := config.Default().RateLevels

	rate := DecideRate(65, bands)
	if rate.Name != "level_3" {
		t.Errorf("Rate name = %q, want level_3", rate.Name)
	}
	if rate.Description != "medium" {
		t.Errorf("Rate description = %q, want medium", rate.Description)
	}
}

func TestFastPathRate_PicksHighestLevel(t *testing.T) {
	bands := []config.RateBand{
		{Level: 2, MinScore: 40, Description: "low"},
		{Level: 5, MinScore: 90, Description: "flat out"},
		{Level: 1, MinScore: 0, Description: "crawl"},
	}

	rate := FastPathRate(bands)
	if rate.Level != 5 || rate.Name != "level_5" || rate.Description != "flat out" {
		t.Errorf("FastPathRate = %+v, want level 5 'flat out'", rate)
	}
}

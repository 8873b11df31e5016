package assess

import (
	"fmt"

	"github.com/subnetscout/prescan/pkg/config"
)

// DecideRate maps an overall subnet score onto a scan rate band. Bands
// are validated at load time to be in descending MinScore order with
// the lowest starting at 0, so the first match wins and a match always
// exists.
func DecideRate(score float64, bands []config.RateBand) Rate {
	for _, band := range bands {
		if score >= band.MinScore {
			return rateFromBand(band)
		}
	}
	return rateFromBand(bands[len(bands)-1])
}

// FastPathRate returns the maximum-rate band for subnets that pass the
// Tier 1 redundancy gate. The highest configured level is used rather
// than a hardcoded band so operators can rename or re-describe it.
func FastPathRate(bands []config.RateBand) Rate {
	best := bands[0]
	for _, band := range bands[1:] {
		if band.Level > best.Level {
			best = band
		}
	}
	return rateFromBand(best)
}

func rateFromBand(band config.RateBand) Rate {
	return Rate{
		Level:       band.Level,
		Name:        fmt.Sprintf("level_%d", band.Level),
		Description: band.Description,
	}
}

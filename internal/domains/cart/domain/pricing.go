package domain

import "errors"

// SizeTier orders cake sizes from smallest to largest.
type SizeTier string

const (
	SizeMini   SizeTier = "mini"
	SizeSmall  SizeTier = "small"
	SizeMedium SizeTier = "medium"
	SizeLarge  SizeTier = "large"
	SizeTiered SizeTier = "tiered"
)

var ErrInvalidSizeTier = errors.New("unknown cake size tier")

// Base prices per tier and the per-add-on surcharge, in cents.
const addOnPriceCents int64 = 350

var tierBaseCents = map[SizeTier]int64{
	SizeMini:   1200,
	SizeSmall:  2400,
	SizeMedium: 3900,
	SizeLarge:  5600,
	SizeTiered: 9800,
}

var tierRank = map[SizeTier]int{
	SizeMini:   0,
	SizeSmall:  1,
	SizeMedium: 2,
	SizeLarge:  3,
	SizeTiered: 4,
}

// ItemConfig is the editable configuration of a cake line item. Price is
// derived from it, never stored alongside it.
type ItemConfig struct {
	Name     string   `json:"name"`
	Note     string   `json:"note"`
	ImageRef string   `json:"imageRef"`
	Size     SizeTier `json:"size"`
	AddOns   []string `json:"addOns"`
}

// Validate checks the config can be priced.
func (c ItemConfig) Validate() error {
	if _, ok := tierBaseCents[c.Size]; !ok {
		return ErrInvalidSizeTier
	}
	return nil
}

// QuoteCents derives the unit price for a configuration. The mapping is
// deterministic and monotonic: a larger tier or an extra add-on never
// lowers the price.
func QuoteCents(cfg ItemConfig) (int64, error) {
	base, ok := tierBaseCents[cfg.Size]
	if !ok {
		return 0, ErrInvalidSizeTier
	}
	return base + int64(len(cfg.AddOns))*addOnPriceCents, nil
}

// TierRank exposes the size ordering for callers comparing tiers.
func TierRank(tier SizeTier) (int, bool) {
	rank, ok := tierRank[tier]
	return rank, ok
}

var tiersAscending = []SizeTier{SizeMini, SizeSmall, SizeMedium, SizeLarge, SizeTiered}

// TierForUnitPrice recovers the largest tier whose base price the unit price
// covers; the remainder is attributed to add-ons. Used when adopting a remote
// cart, whose wire format carries prices but not configurations. Prices below
// the smallest base map to the smallest tier.
func TierForUnitPrice(unitCents int64) SizeTier {
	tier := SizeMini
	for _, t := range tiersAscending {
		if tierBaseCents[t] <= unitCents {
			tier = t
		}
	}
	return tier
}

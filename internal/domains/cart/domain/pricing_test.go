package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteCents_BaseAndAddOns(t *testing.T) {
	price, err := QuoteCents(ItemConfig{Size: SizeMedium})
	require.NoError(t, err)
	require.Equal(t, int64(3900), price)

	price, err = QuoteCents(ItemConfig{Size: SizeMedium, AddOns: []string{"candles", "topper"}})
	require.NoError(t, err)
	require.Equal(t, int64(3900+2*350), price)
}

func TestQuoteCents_MonotonicAcrossTiers(t *testing.T) {
	tiers := []SizeTier{SizeMini, SizeSmall, SizeMedium, SizeLarge, SizeTiered}
	var prev int64 = -1
	for _, tier := range tiers {
		price, err := QuoteCents(ItemConfig{Size: tier})
		require.NoError(t, err)
		require.Greater(t, price, prev, "tier %s must cost more than the one below", tier)
		prev = price
	}
}

func TestQuoteCents_AddOnNeverLowersPrice(t *testing.T) {
	base, err := QuoteCents(ItemConfig{Size: SizeSmall})
	require.NoError(t, err)
	withAddOn, err := QuoteCents(ItemConfig{Size: SizeSmall, AddOns: []string{"candles"}})
	require.NoError(t, err)
	require.GreaterOrEqual(t, withAddOn, base)
}

func TestQuoteCents_UnknownTier(t *testing.T) {
	_, err := QuoteCents(ItemConfig{Size: "colossal"})
	require.ErrorIs(t, err, ErrInvalidSizeTier)
}

func TestTierRank_OrdersSizes(t *testing.T) {
	mini, ok := TierRank(SizeMini)
	require.True(t, ok)
	tiered, ok := TierRank(SizeTiered)
	require.True(t, ok)
	require.Less(t, mini, tiered)

	_, ok = TierRank("colossal")
	require.False(t, ok)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testItem(id, bakery, cakeID string, qty int32) CartItem {
	return CartItem{
		ID:             id,
		Ref:            AvailableCake(cakeID),
		BakeryID:       bakery,
		Config:         ItemConfig{Name: "Carrot Cake", Size: SizeMedium},
		UnitPriceCents: 3900,
		Quantity:       qty,
	}
}

func TestUpsert_AppendBindsBakery(t *testing.T) {
	var cart Cart
	line, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 1))

	require.NoError(t, err)
	require.Equal(t, "ci-1", line.ID)
	require.Equal(t, "bk-1", cart.BakeryID)
	require.Len(t, cart.Items, 1)
	require.NoError(t, cart.Validate())
}

func TestUpsert_MergesSameCakeKeepsExistingID(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 2))
	require.NoError(t, err)

	line, err := cart.Upsert(testItem("ci-2", "bk-1", "cake-1", 3))
	require.NoError(t, err)
	require.Equal(t, "ci-1", line.ID)
	require.Equal(t, int32(5), line.Quantity)
	require.Len(t, cart.Items, 1)
}

func TestUpsert_MergeSaturatesAtMaxQuantity(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 2_000_000_000))
	require.NoError(t, err)

	line, err := cart.Upsert(testItem("ci-2", "bk-1", "cake-1", 2_000_000_000))
	require.NoError(t, err)
	require.Equal(t, MaxQuantity, line.Quantity)
	require.Positive(t, line.SubTotalCents())
	require.NoError(t, cart.Validate())
}

func TestUpsert_CustomAndAvailableNeverMerge(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 1))
	require.NoError(t, err)

	custom := testItem("ci-2", "bk-1", "cake-1", 1)
	custom.Ref = CustomCake("cake-1")
	_, err = cart.Upsert(custom)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
}

func TestUpsert_RejectsForeignBakery(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 1))
	require.NoError(t, err)

	_, err = cart.Upsert(testItem("ci-2", "bk-2", "cake-9", 1))
	require.ErrorIs(t, err, ErrBakeryMismatch)
	require.Len(t, cart.Items, 1)
}

func TestReplace_KeepsIdentityAndQuantity(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 2))
	require.NoError(t, err)

	line, err := cart.Replace("ci-1", ItemConfig{Name: "Carrot Deluxe", Size: SizeLarge, AddOns: []string{"candles"}}, 5950)
	require.NoError(t, err)
	require.Equal(t, "ci-1", line.ID)
	require.Equal(t, int32(2), line.Quantity)
	require.Equal(t, SizeLarge, line.Config.Size)
	require.Equal(t, int64(5950), line.UnitPriceCents)
}

func TestReplace_UnknownItem(t *testing.T) {
	var cart Cart
	_, err := cart.Replace("nope", ItemConfig{Size: SizeMini}, 1200)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestSetQuantity_BelowOneRemovesLine(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 2))
	require.NoError(t, err)

	removed, err := cart.SetQuantity("ci-1", 0)
	require.NoError(t, err)
	require.True(t, removed)
	require.True(t, cart.Empty())
	require.Empty(t, cart.BakeryID)
}

func TestSetQuantity_ClampsToMaxQuantity(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 1))
	require.NoError(t, err)

	removed, err := cart.SetQuantity("ci-1", 2_000_000_000)
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, MaxQuantity, cart.Items[0].Quantity)
}

func TestRemove_LastItemClearsBinding(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 1))
	require.NoError(t, err)
	_, err = cart.Upsert(testItem("ci-2", "bk-1", "cake-2", 1))
	require.NoError(t, err)

	require.NoError(t, cart.Remove("ci-1"))
	require.Equal(t, "bk-1", cart.BakeryID)

	require.NoError(t, cart.Remove("ci-2"))
	require.Empty(t, cart.BakeryID)
	require.NoError(t, cart.Validate())
}

func TestValidate_DanglingBinding(t *testing.T) {
	cart := Cart{BakeryID: "bk-1"}
	require.ErrorIs(t, cart.Validate(), ErrDanglingBinding)
}

func TestValidate_EmptyBinding(t *testing.T) {
	cart := Cart{Items: []CartItem{testItem("ci-1", "bk-1", "cake-1", 1)}}
	require.ErrorIs(t, cart.Validate(), ErrEmptyBinding)
}

func TestClone_DoesNotAliasAddOns(t *testing.T) {
	var cart Cart
	item := testItem("ci-1", "bk-1", "cake-1", 1)
	item.Config.AddOns = []string{"candles"}
	_, err := cart.Upsert(item)
	require.NoError(t, err)
	cart.CheckoutMeta = []byte(`{"note":"ring the bell"}`)

	clone := cart.Clone()
	clone.Items[0].Config.AddOns[0] = "sparklers"
	clone.CheckoutMeta[2] = 'x'

	require.Equal(t, "candles", cart.Items[0].Config.AddOns[0])
	require.Equal(t, byte('n'), cart.CheckoutMeta[2])
}

func TestTotalCents(t *testing.T) {
	var cart Cart
	_, err := cart.Upsert(testItem("ci-1", "bk-1", "cake-1", 2))
	require.NoError(t, err)
	second := testItem("ci-2", "bk-1", "cake-2", 1)
	second.UnitPriceCents = 1200
	_, err = cart.Upsert(second)
	require.NoError(t, err)

	require.Equal(t, int64(2*3900+1200), cart.TotalCents())
}

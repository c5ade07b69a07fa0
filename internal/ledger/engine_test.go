package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardWith(items ...Item) Snapshot {
	s := Defaults()
	s.Cards = []MainCard{{ID: "c1", Name: "主卡", Items: items, SubCards: []SubCard{}}}
	return s
}

func mustItem(t *testing.T, s Snapshot, id string) Item {
	t.Helper()
	it, ok := s.FindItem(id)
	require.True(t, ok, "item %s not found", id)
	return it
}

func TestSmartLinkageOnCost(t *testing.T) {
	s := cardWith(
		Item{ID: "a", Title: "畅视套餐39", Cost: Number(39), Duration: Number(Unlimited), StartMonth: DefaultStart},
		Item{ID: "b", Title: "携转6折优惠", Cost: Number(-15.6), Duration: Number(12), StartMonth: DefaultStart},
	)

	out := UpdateItem(s, "a", FieldCost, "50")

	assert.Equal(t, 50.0, mustItem(t, out, "a").Cost.Float())
	assert.Equal(t, -20.0, mustItem(t, out, "b").Cost.Float())
	// input untouched
	assert.Equal(t, -15.6, mustItem(t, s, "b").Cost.Float())
}

func TestSmartLinkageOnTitle(t *testing.T) {
	s := cardWith(
		Item{ID: "a", Title: "普通业务", Cost: Number(29)},
		Item{ID: "b", Title: "携转6折优惠", Cost: Number(0)},
	)
	out := UpdateItem(s, "a", FieldTitle, "主套餐")
	assert.Equal(t, -11.6, mustItem(t, out, "b").Cost.Float())
}

func TestSmartLinkageStaysInsideCard(t *testing.T) {
	s := Defaults()
	s.Cards = []MainCard{{
		ID:    "c1",
		Items: []Item{{ID: "a", Title: "畅视套餐29", Cost: Number(29)}},
		SubCards: []SubCard{{
			ID:    "s1",
			Items: []Item{{ID: "b", Title: "携转6折优惠", Cost: Number(-1)}},
		}},
	}}

	out := UpdateItem(s, "a", FieldCost, "100")
	assert.Equal(t, -1.0, mustItem(t, out, "b").Cost.Float(), "discount on a sub-card must not follow the main card plan")
}

func TestSmartLinkageInSubCard(t *testing.T) {
	s := Defaults()
	s.Cards = []MainCard{{
		ID: "c1",
		SubCards: []SubCard{{
			ID: "s1",
			Items: []Item{
				{ID: "p", Title: "畅视套餐39", Cost: Number(39)},
				{ID: "d", Title: "携转6折优惠", Cost: Number(0)},
			},
		}},
	}}
	out := UpdateItem(s, "p", FieldCost, "29")
	assert.Equal(t, -11.6, mustItem(t, out, "d").Cost.Float())
}

func TestUpdateItemNonPlanDoesNotLink(t *testing.T) {
	s := cardWith(
		Item{ID: "a", Title: "云Plus (费)", Cost: Number(10)},
		Item{ID: "b", Title: "携转6折优惠", Cost: Number(-3)},
	)
	out := UpdateItem(s, "a", FieldCost, "20")
	assert.Equal(t, -3.0, mustItem(t, out, "b").Cost.Float())
}

func TestUpdateItemPendingNumbers(t *testing.T) {
	s := cardWith(Item{ID: "a", Title: "x", Cost: Number(5)})

	out := UpdateItem(s, "a", FieldCost, "-")
	it := mustItem(t, out, "a")
	assert.True(t, it.Cost.IsPending())
	assert.Equal(t, "-", it.Cost.String())

	out = UpdateItem(out, "a", FieldCost, "-8")
	assert.Equal(t, -8.0, mustItem(t, out, "a").Cost.Float())

	out = UpdateItem(out, "a", FieldVipPrice, "")
	assert.True(t, mustItem(t, out, "a").VipPrice.IsPending())

	out = UpdateItem(out, "a", FieldDuration, "oops")
	assert.Equal(t, 0.0, mustItem(t, out, "a").Duration.Float())
}

func TestUpdateItemStringFields(t *testing.T) {
	s := cardWith(Item{ID: "a", Title: "x"})
	out := UpdateItem(s, "a", FieldStartMonth, "2025-06")
	out = UpdateItem(out, "a", FieldSubtitle, "备注")
	it := mustItem(t, out, "a")
	assert.Equal(t, "2025-06", it.StartMonth)
	assert.Equal(t, "备注", it.Subtitle)
}

func TestUpdateItemMissingIsNoop(t *testing.T) {
	s := Defaults()
	out := UpdateItem(s, "nope", FieldCost, "1")
	assert.Equal(t, s, out)
}

func TestApplyPortedPresetUsesSiblingPlan(t *testing.T) {
	s := cardWith(
		Item{ID: "plan", Title: "畅视套餐29", Cost: Number(29)},
		Item{ID: "x", Title: "新业务", Cost: Number(0), VipPrice: Number(16.25), Duration: Number(12)},
	)
	out := ApplyPreset(s, "x", PortedDiscountPresetID, nil)

	it := mustItem(t, out, "x")
	assert.Equal(t, "携转6折优惠", it.Title)
	assert.Equal(t, -11.6, it.Cost.Float())
	assert.Equal(t, 0.0, it.VipPrice.Float())
	assert.Equal(t, 12.0, it.Duration.Float())
}

func TestApplyPortedPresetWithoutPlanUsesStaticCost(t *testing.T) {
	s := cardWith(Item{ID: "x", Title: "新业务", Cost: Number(7)})
	out := ApplyPreset(s, "x", PortedDiscountPresetID, nil)
	assert.Equal(t, 0.0, mustItem(t, out, "x").Cost.Float())
}

func TestApplyPlanPresetRelinksDiscount(t *testing.T) {
	s := cardWith(
		Item{ID: "plan", Title: "新业务", Cost: Number(0)},
		Item{ID: "d", Title: "携转6折优惠", Cost: Number(0)},
	)
	out := ApplyPreset(s, "plan", "p_39", nil)
	assert.Equal(t, 39.0, mustItem(t, out, "plan").Cost.Float())
	assert.Equal(t, -1.0, mustItem(t, out, "plan").Duration.Float())
	assert.Equal(t, -15.6, mustItem(t, out, "d").Cost.Float())
}

func TestApplyPresetLookup(t *testing.T) {
	s := cardWith(Item{ID: "x", Title: "新业务"})
	s = AddCustomPreset(s, Preset{Name: "⚡️ 神卡", Title: "神卡", Cost: 3, Vip: 9, Duration: 6})
	custom := s.CustomPresets[0]

	// found through the fallback search
	out := ApplyPreset(s, "x", custom.ID, nil)
	assert.Equal(t, "神卡", mustItem(t, out, "x").Title)

	// candidates win when supplied
	cands := []Preset{{ID: custom.ID, Title: "候选", Cost: 1}}
	out = ApplyPreset(s, "x", custom.ID, cands)
	assert.Equal(t, "候选", mustItem(t, out, "x").Title)

	// unknown preset leaves the item alone
	out = ApplyPreset(s, "x", "missing", nil)
	assert.Equal(t, "新业务", mustItem(t, out, "x").Title)
}

func TestAddMainCard(t *testing.T) {
	s := SetCurrentDate(Defaults(), "2025-09")
	out := AddMainCard(s)
	require.Len(t, out.Cards, 2)

	c := out.Cards[1]
	assert.Equal(t, "新主卡", c.Name)
	assert.NotEmpty(t, c.ID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "畅视套餐39", c.Items[0].Title)
	assert.Equal(t, 39.0, c.Items[0].Cost.Float())
	assert.Equal(t, -1.0, c.Items[0].Duration.Float())
	assert.Equal(t, "2025-09", c.Items[0].StartMonth)
	assert.NotNil(t, c.SubCards)
}

func TestAddSubCardCapsAtFour(t *testing.T) {
	s := Defaults()
	for i := 0; i < 6; i++ {
		s = AddSubCard(s, "main_def")
	}
	assert.Len(t, s.Cards[0].SubCards, MaxSubCards)
	assert.Equal(t, "新副卡", s.Cards[0].SubCards[0].Name)

	s = AddSubCard(s, "unknown")
	assert.Len(t, s.Cards, 1)
}

func TestAddItemDefaults(t *testing.T) {
	s := SetGlobalVipPrice(Defaults(), "20")
	s = SetCurrentDate(s, "2025-03")
	s = AddSubCard(s, "main_def")
	subID := s.Cards[0].SubCards[0].ID

	s = AddItem(s, "main_def", false, "")
	s = AddItem(s, subID, true, "main_def")

	main := s.Cards[0].Items[len(s.Cards[0].Items)-1]
	assert.Equal(t, "新业务", main.Title)
	assert.Equal(t, 0.0, main.Cost.Float())
	assert.Equal(t, 20.0, main.VipPrice.Float())
	assert.Equal(t, 12.0, main.Duration.Float())
	assert.Equal(t, "2025-03", main.StartMonth)

	require.Len(t, s.Cards[0].SubCards[0].Items, 1)

	// a sub-card id used as a main id adds nothing
	before := s
	s = AddItem(s, subID, false, "")
	assert.Equal(t, before, s)
}

func TestDeleteItemScansEverywhere(t *testing.T) {
	s := Defaults()
	s = AddSubCard(s, "main_def")
	subID := s.Cards[0].SubCards[0].ID
	s = AddItem(s, subID, true, "main_def")
	itemID := s.Cards[0].SubCards[0].Items[0].ID

	s = DeleteItem(s, itemID)
	assert.Empty(t, s.Cards[0].SubCards[0].Items)

	s = DeleteItem(s, "m1")
	_, ok := s.FindItem("m1")
	assert.False(t, ok)
	_, ok = s.FindItem("m2")
	assert.True(t, ok)
}

func TestDeleteCard(t *testing.T) {
	s := AddMainCard(Defaults())
	s = AddSubCard(s, "main_def")
	s = AddSubCard(s, "main_def")
	sub := s.Cards[0].SubCards[0].ID

	out := DeleteCard(s, ScopeSub, "main_def", sub)
	assert.Len(t, out.Cards[0].SubCards, 1)
	assert.Len(t, s.Cards[0].SubCards, 2)

	out = DeleteCard(out, ScopeMain, "main_def", "")
	require.Len(t, out.Cards, 1)
	assert.NotEqual(t, "main_def", out.Cards[0].ID)

	out = DeleteCard(out, ScopeMain, "ghost", "")
	assert.Len(t, out.Cards, 1)
}

func TestRenameCard(t *testing.T) {
	s := AddSubCard(Defaults(), "main_def")
	sub := s.Cards[0].SubCards[0].ID

	s = RenameCard(s, "main_def", false, "爸爸的卡")
	s = RenameCard(s, sub, true, "副卡A")
	assert.Equal(t, "爸爸的卡", s.Cards[0].Name)
	assert.Equal(t, "副卡A", s.Cards[0].SubCards[0].Name)

	// a sub id is not renamed through the main path
	s = RenameCard(s, sub, false, "nope")
	assert.Equal(t, "副卡A", s.Cards[0].SubCards[0].Name)
}

func TestCustomPresets(t *testing.T) {
	s := AddCustomPreset(Defaults(), Preset{ID: "ignored", Name: "a"})
	s = AddCustomPreset(s, Preset{Name: "b"})
	require.Len(t, s.CustomPresets, 2)
	assert.NotEqual(t, "ignored", s.CustomPresets[0].ID)

	s = DeleteCustomPreset(s, s.CustomPresets[0].ID)
	require.Len(t, s.CustomPresets, 1)
	assert.Equal(t, "b", s.CustomPresets[0].Name)

	all := AllPresets(s)
	assert.Equal(t, "b", all[0].Name)
	assert.Len(t, all, 1+len(Catalog()))
}

func TestSetGlobalVipPrice(t *testing.T) {
	assert.Equal(t, 9.9, SetGlobalVipPrice(Defaults(), "9.9").GlobalVipPrice)
	assert.Equal(t, 0.0, SetGlobalVipPrice(Defaults(), "x").GlobalVipPrice)
}

func TestResetData(t *testing.T) {
	s := AddMainCard(Defaults())
	assert.Equal(t, Defaults(), ResetData(s))
}

func TestImportDataRoundTrip(t *testing.T) {
	s := AddMainCard(Defaults())
	s = AddSubCard(s, "main_def")
	s = AddCustomPreset(s, Preset{Name: "p", Title: "t", Cost: 1, Vip: 2, Duration: 3})
	s = SetCurrentDate(s, "2025-07")

	data, err := ExportSnapshot(s)
	require.NoError(t, err)

	got, err := ImportData(Defaults(), data)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	again, err := ExportSnapshot(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestImportDataDefaults(t *testing.T) {
	cur := AddCustomPreset(Defaults(), Preset{Name: "keep?"})
	cur.GlobalVipPrice = 3

	got, err := ImportData(cur, []byte(`{"cards":[],"currentDate":"2024-02"}`))
	require.NoError(t, err)
	assert.Empty(t, got.CustomPresets)
	assert.NotNil(t, got.CustomPresets)
	assert.Equal(t, DefaultGlobalVipPrice, got.GlobalVipPrice)
	assert.Equal(t, "2024-02", got.CurrentDate)
	assert.Empty(t, got.Cards)
}

func TestImportDataRejectsBadJSON(t *testing.T) {
	cur := Defaults()
	got, err := ImportData(cur, []byte(`{not json`))
	assert.Error(t, err)
	assert.Equal(t, cur, got)
}

func TestImportBackupNeedsCards(t *testing.T) {
	_, err := ImportBackup(Defaults(), []byte(`{"currentDate":"2024-01"}`))
	assert.ErrorIs(t, err, ErrMissingCards)

	_, err = ImportBackup(Defaults(), []byte(`{"cards":null}`))
	assert.ErrorIs(t, err, ErrMissingCards)

	got, err := ImportBackup(Defaults(), []byte(`{"cards":[{"id":"x","name":"n","items":[],"subCards":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "x", got.Cards[0].ID)
}

func TestDiscountCost(t *testing.T) {
	assert.Equal(t, -20.0, DiscountCost(50))
	assert.Equal(t, -11.6, DiscountCost(29))
	assert.Equal(t, -15.6, DiscountCost(39))
	assert.Equal(t, -0.05, DiscountCost(0.123))
}

func TestImportDataFractionalPresetDuration(t *testing.T) {
	data := []byte(`{"customPresets":[{"id":"c1","name":"半年半","title":"t","cost":1,"vip":2,"duration":1.5}]}`)
	got, err := ImportData(Defaults(), data)
	require.NoError(t, err)
	require.Len(t, got.CustomPresets, 1)
	assert.Equal(t, 1.5, got.CustomPresets[0].Duration)

	s := AddItem(got, "main_def", false, "")
	itemID := s.Cards[0].Items[len(s.Cards[0].Items)-1].ID
	s = ApplyPreset(s, itemID, "c1", nil)
	it, ok := s.FindItem(itemID)
	require.True(t, ok)
	assert.Equal(t, 1.5, it.Duration.Float())
}

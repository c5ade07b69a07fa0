package persist

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(t *testing.T, js string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(js), &m))
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := New(NewMemoryBackend())

	s := ledger.AddMainCard(ledger.Defaults())
	s = ledger.AddCustomPreset(s, ledger.Preset{Name: "x", Title: "y", Cost: 1, Vip: 2, Duration: 3})
	s = ledger.SetCurrentDate(s, "2025-08")
	require.NoError(t, p.Save(ctx, s))

	assert.Equal(t, s, p.Load(ctx))
}

func TestSavedBlobIsVersioned(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, New(b).Save(ctx, ledger.Defaults()))

	raw, err := b.Get(ctx, StorageKey)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, Version, env.Version)
	assert.Contains(t, env.State, "cards")
	assert.Contains(t, env.State, "customPresets")
}

func TestLoadMissingGivesDefaults(t *testing.T) {
	assert.Equal(t, ledger.Defaults(), New(NewMemoryBackend()).Load(context.Background()))
}

func TestLoadMalformedGivesDefaults(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Put(ctx, StorageKey, []byte("{broken")))
	assert.Equal(t, ledger.Defaults(), New(b).Load(ctx))
}

func TestLoadPartiallyBrokenKeepsGoodKeys(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	blob := `{"version":1,"state":{"currentDate":"2025-04","globalVipPrice":"oops","cards":{"bad":true}}}`
	require.NoError(t, b.Put(ctx, StorageKey, []byte(blob)))

	got := New(b).Load(ctx)
	assert.Equal(t, "2025-04", got.CurrentDate)
	assert.Equal(t, ledger.DefaultGlobalVipPrice, got.GlobalVipPrice)
	assert.Equal(t, ledger.Defaults().Cards, got.Cards)
	assert.Empty(t, got.CustomPresets)
}

func TestMigrateVersionZero(t *testing.T) {
	got := Migrate(state(t, `{"currentDate":"2024-01"}`), 0)
	assert.JSONEq(t, `"2024-01"`, string(got["currentDate"]))
	assert.JSONEq(t, `[]`, string(got["customPresets"]))
	assert.Contains(t, got, "cards")
	assert.Contains(t, got, "globalVipPrice")
}

func TestMigrateNewerPassesThrough(t *testing.T) {
	in := state(t, `{"currentDate":"2024-01"}`)
	got := Migrate(in, 1)
	assert.Equal(t, in, got)
	assert.NotContains(t, got, "customPresets")
}

func TestMergeRules(t *testing.T) {
	defaults := ledger.Defaults()

	got := Merge(state(t, `{"globalVipPrice":9}`), defaults)
	assert.Equal(t, defaults.Cards, got.Cards, "absent cards fall back")
	assert.Equal(t, 9.0, got.GlobalVipPrice)
	assert.Equal(t, defaults.CurrentDate, got.CurrentDate)
	assert.NotNil(t, got.CustomPresets)

	got = Merge(state(t, `{"cards":[],"customPresets":null}`), defaults)
	assert.Empty(t, got.Cards, "persisted empty cards win")
	assert.Empty(t, got.CustomPresets)
}

func TestDecodeLegacyStringNumbers(t *testing.T) {
	blob := `{"version":0,"state":{"cards":[{"id":"c","name":"n","items":[{"id":"i","title":"t","startMonth":"2025-01","duration":"12","cost":"-","vipPrice":"16.25"}],"subCards":[]}]}}`
	got, err := Decode([]byte(blob))
	require.NoError(t, err)

	it, ok := got.FindItem("i")
	require.True(t, ok)
	assert.Equal(t, 12.0, it.Duration.Float())
	assert.True(t, it.Cost.IsPending())
	assert.Equal(t, 16.25, it.VipPrice.Float())
	assert.Empty(t, got.CustomPresets)
}

func TestAttachAutoSaves(t *testing.T) {
	ctx := context.Background()
	p := New(NewMemoryBackend())
	store := ledger.NewStore(p.Load(ctx))
	p.Attach(ctx, store)

	store.AddMainCard()
	store.UpdateItem("m1", ledger.FieldCost, "50")

	got := p.Load(ctx)
	assert.Len(t, got.Cards, 2)
	it, _ := got.FindItem("m2")
	assert.Equal(t, -20.0, it.Cost.Float())
}

func TestGormBackend(t *testing.T) {
	ctx := context.Background()
	b, err := OpenLocal(filepath.Join(t.TempDir(), "state", "cardctl.db"))
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Put(ctx, "k", []byte("one")))
	require.NoError(t, b.Put(ctx, "k", []byte("two")))
	v, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(v))

	p := New(b)
	s := ledger.AddSubCard(ledger.Defaults(), "main_def")
	require.NoError(t, p.Save(ctx, s))
	assert.Equal(t, s, p.Load(ctx))
}

func TestFractionalPresetDurationSurvivesLoad(t *testing.T) {
	blob := `{"version":1,"state":{"cards":[],"customPresets":[{"id":"c1","name":"n","title":"t","cost":1,"vip":2,"duration":1.5}]}}`
	got, err := Decode([]byte(blob))
	require.NoError(t, err)
	require.Len(t, got.CustomPresets, 1)
	assert.Equal(t, 1.5, got.CustomPresets[0].Duration)

	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Put(ctx, StorageKey, []byte(blob)))
	loaded := New(b).Load(ctx)
	require.Len(t, loaded.CustomPresets, 1)
	assert.Equal(t, "c1", loaded.CustomPresets[0].ID)
}

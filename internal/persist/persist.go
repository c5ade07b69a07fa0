// Package persist keeps the ledger in durable local storage.
//
// The whole snapshot is written under one fixed key as a versioned blob
// {"state": {...}, "version": N}. Loading migrates old versions and merges
// the result over the built-in defaults key by key, so a damaged blob only
// costs the keys it cannot supply.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"
)

const (
	// StorageKey is the fixed key of the ledger blob.
	StorageKey = "unicom-calc-storage"

	// Version is the schema version written by Save.
	Version = 1
)

// ErrNotFound is returned by a Backend when the key has never been written.
var ErrNotFound = errors.New("persist: key not found")

// Backend stores opaque blobs by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type envelope struct {
	State   map[string]json.RawMessage `json:"state"`
	Version int                        `json:"version"`
}

// Persister saves and restores the ledger through a Backend.
type Persister struct {
	Backend Backend
	Key     string
	Log     *slog.Logger
}

// New returns a Persister writing to StorageKey.
func New(b Backend) *Persister {
	return &Persister{Backend: b, Key: StorageKey, Log: slog.Default()}
}

// Encode builds the stored blob for s.
func Encode(s ledger.Snapshot) ([]byte, error) {
	state, err := json.Marshal(s.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return json.Marshal(struct {
		State   json.RawMessage `json:"state"`
		Version int             `json:"version"`
	}{State: state, Version: Version})
}

// Save writes s under the persister's key.
func (p *Persister) Save(ctx context.Context, s ledger.Snapshot) error {
	blob, err := Encode(s)
	if err != nil {
		return err
	}
	if err := p.Backend.Put(ctx, p.Key, blob); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Load restores the ledger. It never fails: a missing, unreadable or
// malformed blob yields the defaults and a warning.
func (p *Persister) Load(ctx context.Context) ledger.Snapshot {
	raw, err := p.Backend.Get(ctx, p.Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			p.Log.Warn("read persisted ledger", "key", p.Key, "error", err)
		}
		return ledger.Defaults()
	}
	s, err := Decode(raw)
	if err != nil {
		p.Log.Warn("persisted ledger is malformed, using defaults", "key", p.Key, "error", err)
		return ledger.Defaults()
	}
	return s
}

// Decode migrates and merges a stored blob over the defaults.
func Decode(raw []byte) (ledger.Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("decode blob: %w", err)
	}
	if env.State == nil {
		env.State = map[string]json.RawMessage{}
	}
	return Merge(Migrate(env.State, env.Version), ledger.Defaults()), nil
}

// Attach saves every mutation of store. Save errors are logged; the ledger
// in memory stays authoritative.
func (p *Persister) Attach(ctx context.Context, store *ledger.Store) {
	store.Subscribe(func(s ledger.Snapshot) {
		if err := p.Save(ctx, s); err != nil {
			p.Log.Warn("auto-save ledger", "error", err)
		}
	})
}

func defaultsState() map[string]json.RawMessage {
	b, _ := json.Marshal(ledger.Defaults())
	var m map[string]json.RawMessage
	_ = json.Unmarshal(b, &m)
	return m
}

// Migrate upgrades a persisted state from version. Version 0 is laid over
// the defaults with customPresets defaulting to empty; newer versions pass
// through unchanged. Migration only ever adds keys.
func Migrate(state map[string]json.RawMessage, version int) map[string]json.RawMessage {
	if version != 0 {
		return state
	}
	out := defaultsState()
	for k, v := range state {
		out[k] = v
	}
	if isAbsent(state["customPresets"]) {
		out["customPresets"] = json.RawMessage(`[]`)
	}
	return out
}

func isAbsent(v json.RawMessage) bool {
	return len(v) == 0 || string(v) == "null"
}

// Merge lays a persisted state over defaults. cards falls back to the
// defaults when absent, customPresets to an empty list, and every other key
// that decodes overrides the default. Keys that fail to decode keep the
// default value.
func Merge(state map[string]json.RawMessage, defaults ledger.Snapshot) ledger.Snapshot {
	out := defaults.Clone()

	if v := state["currentDate"]; !isAbsent(v) {
		var d string
		if json.Unmarshal(v, &d) == nil {
			out.CurrentDate = d
		}
	}
	if v := state["globalVipPrice"]; !isAbsent(v) {
		var price float64
		if json.Unmarshal(v, &price) == nil {
			out.GlobalVipPrice = price
		}
	}

	out.CustomPresets = []ledger.Preset{}
	if v := state["customPresets"]; !isAbsent(v) {
		var presets []ledger.Preset
		if json.Unmarshal(v, &presets) == nil {
			out.CustomPresets = presets
		}
	}

	if v := state["cards"]; !isAbsent(v) {
		var cards []ledger.MainCard
		if json.Unmarshal(v, &cards) == nil {
			out.Cards = cards
		}
	}
	return out.Clone()
}

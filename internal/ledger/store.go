package ledger

import "sync"

// Op is one ledger operation.
type Op func(Snapshot) Snapshot

// Store holds the current ledger and is the only writer to it. Each Apply
// runs one operation and swaps the whole snapshot, so readers never observe
// a half-applied change. Subscribers are called after every swap, outside
// the state lock, with their own copy. Notifications are delivered in the
// order the swaps happened.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	snap     Snapshot
	subs     []func(Snapshot)
}

// NewStore returns a store starting at initial.
func NewStore(initial Snapshot) *Store {
	return &Store{snap: initial.Clone()}
}

// Snapshot returns a copy of the current ledger.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Subscribe registers fn to run after each mutation.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Apply runs op against the current ledger and stores the result.
// Subscribers must not call Apply.
func (s *Store) Apply(op Op) Snapshot {
	s.mu.Lock()
	next := op(s.snap.Clone())
	s.snap = next
	subs := append([]func(Snapshot){}, s.subs...)
	// taken before mu is released so the next Apply waits for this delivery
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range subs {
		fn(next.Clone())
	}
	return next.Clone()
}

// Totals evaluates the current ledger at its own month.
func (s *Store) Totals() Totals {
	return s.Snapshot().Totals()
}

func (s *Store) AddMainCard() Snapshot { return s.Apply(AddMainCard) }

func (s *Store) DeleteCard(scope Scope, mainID, subID string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return DeleteCard(cur, scope, mainID, subID) })
}

func (s *Store) RenameCard(id string, isSub bool, name string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return RenameCard(cur, id, isSub, name) })
}

func (s *Store) AddSubCard(mainID string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return AddSubCard(cur, mainID) })
}

func (s *Store) AddItem(parentID string, isSub bool, mainIDOfSub string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return AddItem(cur, parentID, isSub, mainIDOfSub) })
}

func (s *Store) DeleteItem(itemID string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return DeleteItem(cur, itemID) })
}

func (s *Store) UpdateItem(itemID string, field Field, value string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return UpdateItem(cur, itemID, field, value) })
}

func (s *Store) AddCustomPreset(p Preset) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return AddCustomPreset(cur, p) })
}

func (s *Store) DeleteCustomPreset(id string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return DeleteCustomPreset(cur, id) })
}

func (s *Store) ApplyPreset(itemID, presetID string, candidates []Preset) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return ApplyPreset(cur, itemID, presetID, candidates) })
}

func (s *Store) SetCurrentDate(month string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return SetCurrentDate(cur, month) })
}

func (s *Store) SetGlobalVipPrice(value string) Snapshot {
	return s.Apply(func(cur Snapshot) Snapshot { return SetGlobalVipPrice(cur, value) })
}

func (s *Store) ResetData() Snapshot { return s.Apply(ResetData) }

// ImportData replaces the ledger with data. A decode error leaves the
// ledger untouched and no subscriber runs.
func (s *Store) ImportData(data []byte) error {
	return s.importWith(ImportData, data)
}

// ImportBackup is ImportData for backup files, which must carry cards.
func (s *Store) ImportBackup(data []byte) error {
	return s.importWith(ImportBackup, data)
}

func (s *Store) importWith(fn func(Snapshot, []byte) (Snapshot, error), data []byte) error {
	next, err := fn(s.Snapshot(), data)
	if err != nil {
		return err
	}
	s.Apply(func(Snapshot) Snapshot { return next })
	return nil
}

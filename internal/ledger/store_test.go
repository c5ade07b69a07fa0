package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreNotifiesSubscribers(t *testing.T) {
	st := NewStore(Defaults())
	var seen []Snapshot
	st.Subscribe(func(s Snapshot) { seen = append(seen, s) })

	st.AddMainCard()
	st.UpdateItem("m1", FieldCost, "50")

	require.Len(t, seen, 2)
	assert.Len(t, seen[0].Cards, 2)
	it, _ := st.Snapshot().FindItem("m2")
	assert.Equal(t, -20.0, it.Cost.Float())
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	st := NewStore(Defaults())
	snap := st.Snapshot()
	snap.Cards[0].Name = "changed"
	assert.Equal(t, "我的主卡", st.Snapshot().Cards[0].Name)
}

func TestStoreImportErrorLeavesLedger(t *testing.T) {
	st := NewStore(Defaults())
	calls := 0
	st.Subscribe(func(Snapshot) { calls++ })

	assert.Error(t, st.ImportData([]byte("nope")))
	assert.ErrorIs(t, st.ImportBackup([]byte(`{}`)), ErrMissingCards)
	assert.Equal(t, Defaults(), st.Snapshot())
	assert.Zero(t, calls)

	require.NoError(t, st.ImportData([]byte(`{"cards":[]}`)))
	assert.Empty(t, st.Snapshot().Cards)
	assert.Equal(t, 1, calls)
}

func TestStoreConcurrentMutations(t *testing.T) {
	st := NewStore(Defaults())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.AddItem("main_def", false, "")
		}()
	}
	wg.Wait()
	assert.Len(t, st.Snapshot().Cards[0].Items, 22)
}

func TestStoreOperations(t *testing.T) {
	st := NewStore(Defaults())
	st.AddSubCard("main_def")
	sub := st.Snapshot().Cards[0].SubCards[0].ID
	st.RenameCard(sub, true, "副")
	st.AddItem(sub, true, "main_def")
	st.SetCurrentDate("2025-05")
	st.SetGlobalVipPrice("1")
	st.AddCustomPreset(Preset{Name: "x"})
	pid := st.Snapshot().CustomPresets[0].ID
	itemID := st.Snapshot().Cards[0].SubCards[0].Items[0].ID
	st.ApplyPreset(itemID, "p_plus", nil)
	st.DeleteCustomPreset(pid)

	s := st.Snapshot()
	assert.Equal(t, "副", s.Cards[0].SubCards[0].Name)
	assert.Equal(t, "2025-05", s.CurrentDate)
	assert.Empty(t, s.CustomPresets)
	it, _ := s.FindItem(itemID)
	assert.Equal(t, "联通PLUS白银", it.Title)

	st.DeleteItem(itemID)
	st.DeleteCard(ScopeSub, "main_def", sub)
	assert.Empty(t, st.Snapshot().Cards[0].SubCards)

	st.ResetData()
	assert.Equal(t, Defaults(), st.Snapshot())
}

func TestStoreDeliversInOrderWithSlowSubscriber(t *testing.T) {
	st := NewStore(Defaults())

	var mu sync.Mutex
	var last Snapshot
	calls := 0
	st.Subscribe(func(s Snapshot) {
		mu.Lock()
		n := calls
		calls++
		mu.Unlock()
		time.Sleep(time.Duration(n%4) * 50 * time.Microsecond)
		mu.Lock()
		last = s
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				st.AddItem("main_def", false, "")
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 40, calls)
	assert.Equal(t, st.Snapshot(), last, "last delivered snapshot is the current ledger")
}

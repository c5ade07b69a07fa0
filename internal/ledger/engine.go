package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Every operation below takes a snapshot and returns the next one. The input
// is never modified; ids that match nothing leave the ledger as it was.

// Scope selects which kind of card DeleteCard removes.
type Scope string

const (
	ScopeMain Scope = "main"
	ScopeSub  Scope = "sub"
)

// Field names an editable item field, using the JSON key.
type Field string

const (
	FieldTitle      Field = "title"
	FieldSubtitle   Field = "subtitle"
	FieldStartMonth Field = "startMonth"
	FieldDuration   Field = "duration"
	FieldCost       Field = "cost"
	FieldVipPrice   Field = "vipPrice"
)

const (
	newMainCardName = "新主卡"
	newSubCardName  = "新副卡"
	newItemTitle    = "新业务"
	newItemDuration = 12
)

// DiscountCost returns the ported-number discount for a plan price,
// rounded to cents.
func DiscountCost(planCost float64) float64 {
	rate := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(DiscountRate))
	return decimal.NewFromFloat(planCost).Mul(rate).Neg().Round(2).InexactFloat64()
}

// AddMainCard appends a main card seeded with a 39 unlimited plan.
func AddMainCard(s Snapshot) Snapshot {
	out := s.Clone()
	out.Cards = append(out.Cards, MainCard{
		ID:   NewID("main"),
		Name: newMainCardName,
		Items: []Item{{
			ID:         NewID("m"),
			Title:      "畅视套餐39",
			StartMonth: s.CurrentDate,
			Duration:   Number(Unlimited),
			Cost:       Number(39),
			VipPrice:   Number(0),
		}},
		SubCards: []SubCard{},
	})
	return out
}

// DeleteCard removes a main card, or the sub-card subID under mainID.
func DeleteCard(s Snapshot, scope Scope, mainID, subID string) Snapshot {
	out := s.Clone()
	if scope == ScopeMain {
		cards := out.Cards[:0]
		for _, c := range out.Cards {
			if c.ID != mainID {
				cards = append(cards, c)
			}
		}
		out.Cards = cards
		return out
	}
	for i := range out.Cards {
		c := &out.Cards[i]
		if c.ID != mainID {
			continue
		}
		subs := c.SubCards[:0]
		for _, sc := range c.SubCards {
			if sc.ID != subID {
				subs = append(subs, sc)
			}
		}
		c.SubCards = subs
	}
	return out
}

// RenameCard renames the first main card (or sub-card when isSub) with id.
func RenameCard(s Snapshot, id string, isSub bool, name string) Snapshot {
	out := s.Clone()
	for i := range out.Cards {
		c := &out.Cards[i]
		if !isSub {
			if c.ID == id {
				c.Name = name
				return out
			}
			continue
		}
		for j := range c.SubCards {
			if c.SubCards[j].ID == id {
				c.SubCards[j].Name = name
				return out
			}
		}
	}
	return out
}

// AddSubCard appends an empty sub-card to mainID unless it is full.
func AddSubCard(s Snapshot, mainID string) Snapshot {
	out := s.Clone()
	for i := range out.Cards {
		c := &out.Cards[i]
		if c.ID == mainID && len(c.SubCards) < MaxSubCards {
			c.SubCards = append(c.SubCards, SubCard{ID: NewID("sub"), Name: newSubCardName, Items: []Item{}})
		}
	}
	return out
}

func newItem(s Snapshot) Item {
	return Item{
		ID:         NewID("i"),
		Title:      newItemTitle,
		StartMonth: s.CurrentDate,
		Duration:   Number(newItemDuration),
		Cost:       Number(0),
		VipPrice:   Number(s.GlobalVipPrice),
	}
}

// AddItem appends a default item to a main card, or to sub-card parentID
// under mainIDOfSub when isSub is set.
func AddItem(s Snapshot, parentID string, isSub bool, mainIDOfSub string) Snapshot {
	out := s.Clone()
	it := newItem(s)
	for i := range out.Cards {
		c := &out.Cards[i]
		if !isSub && c.ID == parentID {
			c.Items = append(c.Items, it)
		}
		if isSub && c.ID == mainIDOfSub {
			for j := range c.SubCards {
				if c.SubCards[j].ID == parentID {
					c.SubCards[j].Items = append(c.SubCards[j].Items, it)
				}
			}
		}
	}
	return out
}

// DeleteItem removes itemID from whichever card holds it.
func DeleteItem(s Snapshot, itemID string) Snapshot {
	out := s.Clone()
	for _, list := range out.itemLists() {
		kept := (*list)[:0]
		for _, it := range *list {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		*list = kept
	}
	return out
}

// UpdateItem sets one field of itemID from user input.
//
// Numeric fields keep "" and "-" pending so a negative number can be typed;
// other input is parsed and falls back to 0. Editing a cost or title
// re-derives the ported-number discount on the same card.
func UpdateItem(s Snapshot, itemID string, field Field, value string) Snapshot {
	return update(s, itemID, field, func(it *Item) {
		switch field {
		case FieldTitle:
			it.Title = value
		case FieldSubtitle:
			it.Subtitle = value
		case FieldStartMonth:
			it.StartMonth = value
		case FieldDuration:
			it.Duration = ParseNum(value)
		case FieldCost:
			it.Cost = ParseNum(value)
		case FieldVipPrice:
			it.VipPrice = ParseNum(value)
		}
	})
}

func setNumber(s Snapshot, itemID string, field Field, v float64) Snapshot {
	return update(s, itemID, field, func(it *Item) {
		switch field {
		case FieldDuration:
			it.Duration = Number(v)
		case FieldCost:
			it.Cost = Number(v)
		case FieldVipPrice:
			it.VipPrice = Number(v)
		}
	})
}

func update(s Snapshot, itemID string, field Field, set func(*Item)) Snapshot {
	out := s.Clone()
	lists := out.itemLists()
	for _, list := range lists {
		for i := range *list {
			if (*list)[i].ID == itemID {
				set(&(*list)[i])
			}
		}
	}
	if field == FieldCost || field == FieldTitle {
		for _, list := range lists {
			relink(*list, itemID)
		}
	}
	return out
}

// relink recomputes the discount item of a card when the edited item is the
// card's main plan.
func relink(items []Item, triggerID string) {
	var trigger *Item
	for i := range items {
		if items[i].ID == triggerID {
			trigger = &items[i]
			break
		}
	}
	if trigger == nil || !IsMainPlan(*trigger) {
		return
	}
	for i := range items {
		if IsPortedDiscount(items[i]) {
			items[i].Cost = Number(DiscountCost(trigger.Cost.Float()))
			return
		}
	}
}

// siblingMainPlan finds the main plan sharing a card with itemID.
func siblingMainPlan(s Snapshot, itemID string) (Item, bool) {
	check := func(items []Item) (Item, bool, bool) {
		holds := false
		for _, it := range items {
			if it.ID == itemID {
				holds = true
			}
		}
		if !holds {
			return Item{}, false, false
		}
		for _, it := range items {
			if it.ID != itemID && IsMainPlan(it) {
				return it, true, true
			}
		}
		return Item{}, false, true
	}
	for _, c := range s.Cards {
		if it, ok, holds := check(c.Items); holds {
			return it, ok
		}
		for _, sc := range c.SubCards {
			if it, ok, holds := check(sc.Items); holds {
				return it, ok
			}
		}
	}
	return Item{}, false
}

// AddCustomPreset stores p as a user preset under a fresh id.
func AddCustomPreset(s Snapshot, p Preset) Snapshot {
	out := s.Clone()
	p.ID = NewID("cp")
	out.CustomPresets = append(out.CustomPresets, p)
	return out
}

// DeleteCustomPreset removes the user preset with id.
func DeleteCustomPreset(s Snapshot, id string) Snapshot {
	out := s.Clone()
	kept := out.CustomPresets[:0]
	for _, p := range out.CustomPresets {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	out.CustomPresets = kept
	return out
}

// ApplyPreset copies a preset's title, rebate, duration and cost onto
// itemID. The preset is looked up in candidates when given, otherwise in the
// catalog and then the user presets.
//
// The ported-number preset takes its cost from the item's sibling main plan
// and only uses its static cost when the card has no main plan.
func ApplyPreset(s Snapshot, itemID, presetID string, candidates []Preset) Snapshot {
	var (
		p  Preset
		ok bool
	)
	if len(candidates) > 0 {
		p, ok = FindPreset(presetID, candidates)
	} else {
		p, ok = FindPreset(presetID, catalog, s.CustomPresets)
	}
	if !ok {
		return s
	}

	out := UpdateItem(s, itemID, FieldTitle, p.Title)
	out = setNumber(out, itemID, FieldVipPrice, p.Vip)
	out = setNumber(out, itemID, FieldDuration, p.Duration)

	cost := p.Cost
	if presetID == PortedDiscountPresetID {
		if plan, found := siblingMainPlan(out, itemID); found {
			cost = DiscountCost(plan.Cost.Float())
		}
	}
	return setNumber(out, itemID, FieldCost, cost)
}

// SetCurrentDate moves the ledger to another month.
func SetCurrentDate(s Snapshot, month string) Snapshot {
	out := s.Clone()
	out.CurrentDate = month
	return out
}

// SetGlobalVipPrice sets the rebate new items start with. Input that does
// not parse is stored as 0.
func SetGlobalVipPrice(s Snapshot, value string) Snapshot {
	out := s.Clone()
	out.GlobalVipPrice = parseLeadingFloat(value)
	return out
}

// ResetData discards the ledger and returns the built-in defaults.
func ResetData(Snapshot) Snapshot {
	return Defaults()
}

// ErrMissingCards rejects a backup that carries no cards.
var ErrMissingCards = errors.New("backup has no cards")

type importDoc struct {
	CurrentDate    *string     `json:"currentDate"`
	GlobalVipPrice *float64    `json:"globalVipPrice"`
	CustomPresets  []Preset    `json:"customPresets"`
	Cards          *[]MainCard `json:"cards"`
}

// ImportData replaces the ledger with an externally supplied snapshot.
// Keys missing from data keep their current value, except customPresets
// (empty) and globalVipPrice (DefaultGlobalVipPrice). On a decode error s is
// returned unchanged along with the error.
func ImportData(s Snapshot, data []byte) (Snapshot, error) {
	var doc importDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return s, fmt.Errorf("decode snapshot: %w", err)
	}
	out := s.Clone()
	if doc.CurrentDate != nil {
		out.CurrentDate = *doc.CurrentDate
	}
	if doc.Cards != nil {
		out.Cards = *doc.Cards
	}
	out.CustomPresets = doc.CustomPresets
	out.GlobalVipPrice = DefaultGlobalVipPrice
	if doc.GlobalVipPrice != nil {
		out.GlobalVipPrice = *doc.GlobalVipPrice
	}
	return out.Clone(), nil
}

// ImportBackup is ImportData for a user-selected backup file: it also
// refuses files that carry no cards.
func ImportBackup(s Snapshot, data []byte) (Snapshot, error) {
	var probe struct {
		Cards json.RawMessage `json:"cards"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return s, fmt.Errorf("decode backup: %w", err)
	}
	if len(probe.Cards) == 0 || string(probe.Cards) == "null" {
		return s, ErrMissingCards
	}
	return ImportData(s, data)
}

// ExportSnapshot serialises the ledger in the backup and sync format.
func ExportSnapshot(s Snapshot) ([]byte, error) {
	b, err := json.Marshal(s.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

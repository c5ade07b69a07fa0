package ledger

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// Unlimited marks an item that never expires.
	Unlimited = -1

	// MaxSubCards is how many sub-cards one main card can hold.
	MaxSubCards = 4

	// DefaultGlobalVipPrice seeds new items and imports without a price.
	DefaultGlobalVipPrice = 16.25

	// DefaultStart is the ledger month of a fresh install.
	DefaultStart = "2025-01"
)

// Item is one billable or rebate line on a card.
type Item struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
	StartMonth string `json:"startMonth"`
	Duration   Num    `json:"duration"`
	Cost       Num    `json:"cost"`
	VipPrice   Num    `json:"vipPrice"`
}

// SubCard is a secondary line attached to a main card.
type SubCard struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// MainCard is a primary SIM line with its own items and up to
// MaxSubCards sub-cards.
type MainCard struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Items    []Item    `json:"items"`
	SubCards []SubCard `json:"subCards"`
}

// Snapshot is the whole ledger: the unit of persistence and cloud sync.
type Snapshot struct {
	CurrentDate    string     `json:"currentDate"`
	GlobalVipPrice float64    `json:"globalVipPrice"`
	CustomPresets  []Preset   `json:"customPresets"`
	Cards          []MainCard `json:"cards"`
}

// Defaults returns the built-in ledger of a fresh install.
func Defaults() Snapshot {
	return Snapshot{
		CurrentDate:    DefaultStart,
		GlobalVipPrice: DefaultGlobalVipPrice,
		CustomPresets:  []Preset{},
		Cards: []MainCard{
			{
				ID:   "main_def",
				Name: "我的主卡",
				Items: []Item{
					{ID: "m1", Title: "畅视套餐39", Subtitle: "长期有效", StartMonth: DefaultStart, Duration: Number(Unlimited), Cost: Number(39), VipPrice: Number(0)},
					{ID: "m2", Title: "携转6折优惠", Subtitle: "智能关联", StartMonth: DefaultStart, Duration: Number(12), Cost: Number(-15.6), VipPrice: Number(0)},
				},
				SubCards: []SubCard{},
			},
		},
	}
}

// Clone deep-copies the snapshot. Nil slices come back empty so that the
// JSON form always carries arrays.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.CustomPresets = append(make([]Preset, 0, len(s.CustomPresets)), s.CustomPresets...)
	out.Cards = make([]MainCard, len(s.Cards))
	for i, c := range s.Cards {
		out.Cards[i] = c.clone()
	}
	return out
}

func (c MainCard) clone() MainCard {
	out := c
	out.Items = cloneItems(c.Items)
	out.SubCards = make([]SubCard, len(c.SubCards))
	for i, sc := range c.SubCards {
		out.SubCards[i] = SubCard{ID: sc.ID, Name: sc.Name, Items: cloneItems(sc.Items)}
	}
	return out
}

func cloneItems(items []Item) []Item {
	return append(make([]Item, 0, len(items)), items...)
}

// itemLists returns every item list in the snapshot, main-card lists before
// their sub-card lists. The pointers alias s, so only use it on a clone.
func (s *Snapshot) itemLists() []*[]Item {
	var lists []*[]Item
	for i := range s.Cards {
		c := &s.Cards[i]
		lists = append(lists, &c.Items)
		for j := range c.SubCards {
			lists = append(lists, &c.SubCards[j].Items)
		}
	}
	return lists
}

// CardKind tells main-card rows from sub-card rows.
type CardKind string

const (
	KindMain CardKind = "main"
	KindSub  CardKind = "sub"
)

// Label is the Chinese tag used in exports.
func (k CardKind) Label() string {
	if k == KindSub {
		return "副卡"
	}
	return "主卡"
}

// Walk calls fn for every item, in card order.
func (s Snapshot) Walk(fn func(kind CardKind, cardName string, item Item)) {
	for _, c := range s.Cards {
		for _, it := range c.Items {
			fn(KindMain, c.Name, it)
		}
		for _, sc := range c.SubCards {
			for _, it := range sc.Items {
				fn(KindSub, sc.Name, it)
			}
		}
	}
}

// FindItem returns the item with id, wherever it lives.
func (s Snapshot) FindItem(id string) (Item, bool) {
	for _, c := range s.Cards {
		for _, it := range c.Items {
			if it.ID == id {
				return it, true
			}
		}
		for _, sc := range c.SubCards {
			for _, it := range sc.Items {
				if it.ID == id {
					return it, true
				}
			}
		}
	}
	return Item{}, false
}

// NewID returns a fresh entity id with the given prefix.
var NewID = func(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

var mainPlanMarkers = []string{"套餐", "畅视", "主套餐"}

// portedDiscountMarker identifies the ported-number discount item by title.
const portedDiscountMarker = "携转6折"

// IsMainPlan reports whether the item's title marks it as a card's main plan.
func IsMainPlan(it Item) bool {
	for _, m := range mainPlanMarkers {
		if strings.Contains(it.Title, m) {
			return true
		}
	}
	return false
}

// IsPortedDiscount reports whether the item is a ported-number discount line.
func IsPortedDiscount(it Item) bool {
	return strings.Contains(it.Title, portedDiscountMarker)
}

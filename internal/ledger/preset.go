package ledger

// DiscountRate is the price factor of the ported-number offer ("携转6折"):
// the plan is billed at 60%, so the discount item carries -40% of it.
const DiscountRate = 0.6

// Built-in preset ids with behaviour attached to them.
const (
	CustomPresetID         = "custom"
	PortedDiscountPresetID = "p_port"
)

// Preset is a template used to fast-fill an item. Built-in presets live in
// the catalog; user presets are stored in Snapshot.CustomPresets.
type Preset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Cost     float64 `json:"cost"`
	Vip      float64 `json:"vip"`
	Duration float64 `json:"duration"`
}

var catalog = []Preset{
	{ID: CustomPresetID, Name: "✏️ 自定义填写...", Title: "", Cost: 0, Vip: 16.25, Duration: 12},

	// 主套餐
	{ID: "p_29", Name: "📱 畅视套餐 (29元)", Title: "畅视套餐29", Cost: 29, Vip: 0, Duration: -1},
	{ID: "p_39", Name: "📱 畅视套餐 (39元)", Title: "畅视套餐39", Cost: 39, Vip: 0, Duration: -1},
	{ID: "p_generic", Name: "📱 通用主套餐 (填金额)", Title: "主套餐", Cost: 0, Vip: 0, Duration: -1},

	// 折扣与权益
	{ID: PortedDiscountPresetID, Name: "📉 携转6折 (自动关联)", Title: "携转6折优惠", Cost: 0, Vip: 0, Duration: 12},
	{ID: "p_wopai", Name: "🎓 沃派会员 (免费年包)", Title: "沃派会员年包", Cost: 0, Vip: 16.25, Duration: 12},
	{ID: "p_plus", Name: "💎 联通PLUS白银", Title: "联通PLUS白银", Cost: 8.25, Vip: 16.25, Duration: -1},

	// 云盘
	{ID: "p_cloud_free", Name: "☁️ 云Plus (免)", Title: "云Plus (免)", Cost: 0, Vip: 16.25, Duration: -1},
	{ID: "p_cloud_paid", Name: "☁️ 云Plus (费)", Title: "云Plus (费)", Cost: 10, Vip: 16.25, Duration: -1},

	// 赠送
	{ID: "p_300", Name: "🎁 300元充值返赠", Title: "300充值返赠", Cost: 0, Vip: 16.25, Duration: 4},
	{ID: "p_200", Name: "🎁 200元充值返赠", Title: "200充值返赠", Cost: 0, Vip: 16.25, Duration: 2},
	{ID: "p_sub_gift", Name: "🎉 新办副卡赠送", Title: "新办副卡赠送", Cost: 0, Vip: 16.25, Duration: 6},
}

// Catalog returns a copy of the built-in presets.
func Catalog() []Preset {
	out := make([]Preset, len(catalog))
	copy(out, catalog)
	return out
}

// AllPresets lists user presets first, then the catalog, the order the
// preset picker offers them.
func AllPresets(s Snapshot) []Preset {
	out := make([]Preset, 0, len(s.CustomPresets)+len(catalog))
	out = append(out, s.CustomPresets...)
	return append(out, catalog...)
}

// FindPreset returns the first preset with id across lists, in order.
func FindPreset(id string, lists ...[]Preset) (Preset, bool) {
	for _, list := range lists {
		for _, p := range list {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Preset{}, false
}

package drink

const (
	DefaultMaxKcal    = 130
	DefaultMaxCarbs   = 8.0
	DefaultDrinkCount = 1
	MinDrinkCount     = 1
	MaxDrinkCount     = 4
)

// PreferencesInput 使用者送出的偏好，未提供的欄位以預設值補上
type PreferencesInput struct {
	Categories       []string `json:"categories,omitempty"`
	Spirits          []string `json:"spirits,omitempty"`
	DrinkCount       *int     `json:"drink_count,omitempty"`
	MaxKcal          *float64 `json:"max_kcal,omitempty"`
	MaxCarbs         *float64 `json:"max_carbs,omitempty"`
	SugarFreeMixers  *bool    `json:"sugar_free_mixers,omitempty"`
	AllowCaffeine    *bool    `json:"allow_caffeine,omitempty"`
	AllowCarbonation *bool    `json:"allow_carbonation,omitempty"`
	GlutenFreeOnly   *bool    `json:"gluten_free_only,omitempty"`
	KetoOnly         *bool    `json:"keto_only,omitempty"`
	PrefCategory     string   `json:"pref_category,omitempty"`
}

// Preferences 套用預設值後的有效偏好
type Preferences struct {
	Categories       []string `json:"categories"`
	Spirits          []string `json:"spirits"`
	DrinkCount       int      `json:"drink_count"`
	MaxKcal          float64  `json:"max_kcal"`
	MaxCarbs         float64  `json:"max_carbs"`
	SugarFreeMixers  bool     `json:"sugar_free_mixers"`
	AllowCaffeine    bool     `json:"allow_caffeine"`
	AllowCarbonation bool     `json:"allow_carbonation"`
	GlutenFreeOnly   bool     `json:"gluten_free_only"`
	KetoOnly         bool     `json:"keto_only"`
	PrefCategory     string   `json:"pref_category"`
}

// DefaultPreferences 健康取向的預設值
func DefaultPreferences() Preferences {
	return Preferences{
		Categories:       []string{CategoryAny},
		Spirits:          []string{},
		DrinkCount:       DefaultDrinkCount,
		MaxKcal:          DefaultMaxKcal,
		MaxCarbs:         DefaultMaxCarbs,
		SugarFreeMixers:  true,
		AllowCaffeine:    true,
		AllowCarbonation: true,
	}
}

// Resolve 將輸入疊加在預設值上，drink_count 夾在 [1,4]
func (in PreferencesInput) Resolve() Preferences {
	p := DefaultPreferences()
	if cats := normalize(in.Categories); len(cats) > 0 {
		p.Categories = cats
	}
	if sp := normalize(in.Spirits); len(sp) > 0 {
		p.Spirits = sp
	}
	if in.DrinkCount != nil {
		p.DrinkCount = *in.DrinkCount
	}
	p.DrinkCount = ClampDrinkCount(p.DrinkCount)
	if in.MaxKcal != nil {
		p.MaxKcal = *in.MaxKcal
	}
	if in.MaxCarbs != nil {
		p.MaxCarbs = *in.MaxCarbs
	}
	if in.SugarFreeMixers != nil {
		p.SugarFreeMixers = *in.SugarFreeMixers
	}
	if in.AllowCaffeine != nil {
		p.AllowCaffeine = *in.AllowCaffeine
	}
	if in.AllowCarbonation != nil {
		p.AllowCarbonation = *in.AllowCarbonation
	}
	if in.GlutenFreeOnly != nil {
		p.GlutenFreeOnly = *in.GlutenFreeOnly
	}
	if in.KetoOnly != nil {
		p.KetoOnly = *in.KetoOnly
	}
	p.PrefCategory = in.PrefCategory
	return p
}

// ClampDrinkCount 限制杯數範圍
func ClampDrinkCount(n int) int {
	if n < MinDrinkCount {
		return MinDrinkCount
	}
	if n > MaxDrinkCount {
		return MaxDrinkCount
	}
	return n
}

// HasCategory 是否要求某一類別
func (p Preferences) HasCategory(cat string) bool {
	return contains(p.Categories, cat)
}

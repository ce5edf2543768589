package drink

import "math"

const (
	// OzToML 每液量盎司的毫升數
	OzToML = 29.5735
	// AlcoholDensity 乙醇密度 (g/mL)
	AlcoholDensity = 0.789
	// AlcoholKcalPerGram 每克酒精熱量
	AlcoholKcalPerGram = 7.0
)

// Category 基酒分類
type Category string

const (
	CategoryWine    Category = "wine"
	CategoryBeer    Category = "beer"
	CategorySpirit  Category = "spirit"
	CategorySeltzer Category = "seltzer"
)

// Component 配方成分，只有 *BaseIngredient 與 *Mixer 兩種
type Component interface {
	ComponentName() string
	component()
}

// BaseIngredient 含酒精的基底，固定份量與酒精濃度
type BaseIngredient struct {
	Name         string
	Category     Category
	ServingOz    float64
	ABVPct       float64
	ExtraKcal    float64
	CarbsG       *float64
	SugarG       *float64
	GlutenFree   bool
	KetoFriendly bool
	Caffeine     bool
	Carbonation  bool
	OrderScript  string
}

// ComponentName 實作 Component
func (b *BaseIngredient) ComponentName() string { return b.Name }

func (b *BaseIngredient) component() {}

// AlcoholKcal 一份基酒中酒精本身的熱量
func (b *BaseIngredient) AlcoholKcal() float64 {
	ml := b.ServingOz * OzToML
	grams := ml * (b.ABVPct / 100.0) * AlcoholDensity
	return grams * AlcoholKcalPerGram
}

// ServingKcal 一份基酒的總熱量（四捨五入至整數）
func (b *BaseIngredient) ServingKcal() float64 {
	return math.RoundToEven(b.AlcoholKcal() + b.ExtraKcal)
}

// ServingCarbs 一份基酒的碳水，未標示時為 0
func (b *BaseIngredient) ServingCarbs() float64 {
	if b.CarbsG == nil {
		return 0
	}
	return *b.CarbsG
}

// Mixer 無酒精調和飲料，以液量盎司計
type Mixer struct {
	Name        string
	KcalPerOz   float64
	CarbsPerOz  float64
	Caffeine    bool
	Carbonation bool
}

// ComponentName 實作 Component
func (m *Mixer) ComponentName() string { return m.Name }

func (m *Mixer) component() {}

// Catalog 營養資料表，建立後唯讀
type Catalog struct {
	bases     []*BaseIngredient
	baseIndex map[string]*BaseIngredient
	mixers    []*Mixer
	mixIndex  map[string]*Mixer
}

// NewCatalog 建立營養資料表，名稱重複時以先出現者為準
func NewCatalog(bases []BaseIngredient, mixers []Mixer) *Catalog {
	c := &Catalog{
		baseIndex: make(map[string]*BaseIngredient, len(bases)),
		mixIndex:  make(map[string]*Mixer, len(mixers)),
	}
	for i := range bases {
		b := bases[i]
		if _, dup := c.baseIndex[b.Name]; dup {
			continue
		}
		c.bases = append(c.bases, &b)
		c.baseIndex[b.Name] = &b
	}
	for i := range mixers {
		m := mixers[i]
		if _, dup := c.mixIndex[m.Name]; dup {
			continue
		}
		c.mixers = append(c.mixers, &m)
		c.mixIndex[m.Name] = &m
	}
	return c
}

// Resolve 依名稱查詢成分，先查基酒再查調和飲料；查無時回傳 nil
func (c *Catalog) Resolve(name string) Component {
	if b, ok := c.baseIndex[name]; ok {
		return b
	}
	if m, ok := c.mixIndex[name]; ok {
		return m
	}
	return nil
}

// Base 查詢基酒
func (c *Catalog) Base(name string) (*BaseIngredient, bool) {
	b, ok := c.baseIndex[name]
	return b, ok
}

// Mixer 查詢調和飲料
func (c *Catalog) Mixer(name string) (*Mixer, bool) {
	m, ok := c.mixIndex[name]
	return m, ok
}

// Bases 依建立順序回傳所有基酒
func (c *Catalog) Bases() []*BaseIngredient {
	return c.bases
}

// Mixers 依建立順序回傳所有調和飲料
func (c *Catalog) Mixers() []*Mixer {
	return c.mixers
}

func grams(v float64) *float64 { return &v }

// DefaultCatalog 旅途中常見的基酒與調和飲料
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultBases(), defaultMixers())
}

func defaultBases() []BaseIngredient {
	spirit := func(name, order string) BaseIngredient {
		return BaseIngredient{
			Name: name, Category: CategorySpirit, ServingOz: 1.5, ABVPct: 40,
			GlutenFree: true, KetoFriendly: true, OrderScript: order,
		}
	}
	return []BaseIngredient{
		spirit("Vodka (1.5 oz)", "Vodka, one and a half ounces."),
		spirit("Tequila blanco (1.5 oz)", "Tequila blanco, one and a half ounces."),
		spirit("Gin (1.5 oz)", "Gin, one and a half ounces."),
		spirit("Whiskey/bourbon (1.5 oz)", "Whiskey pour, one and a half ounces."),
		spirit("Rum white (1.5 oz)", "White rum, one and a half ounces."),

		{Name: "Dry white wine (5 oz)", Category: CategoryWine, ServingOz: 5, ABVPct: 12, ExtraKcal: 20,
			CarbsG: grams(3.0), SugarG: grams(1.5), GlutenFree: true, KetoFriendly: true,
			OrderScript: "Five ounces of dry white wine."},
		{Name: "Dry red wine (5 oz)", Category: CategoryWine, ServingOz: 5, ABVPct: 13, ExtraKcal: 22,
			CarbsG: grams(4.0), SugarG: grams(1.0), GlutenFree: true, KetoFriendly: true,
			OrderScript: "Five ounces of dry red wine."},
		{Name: "Brut champagne (5 oz)", Category: CategoryWine, ServingOz: 5, ABVPct: 12, ExtraKcal: 10,
			CarbsG: grams(2.0), SugarG: grams(1.0), GlutenFree: true, KetoFriendly: true, Carbonation: true,
			OrderScript: "A five ounce pour of brut champagne."},

		{Name: "Light beer (12 oz)", Category: CategoryBeer, ServingOz: 12, ABVPct: 4.2, ExtraKcal: 20,
			CarbsG: grams(5.0), SugarG: grams(0), Carbonation: true,
			OrderScript: "A twelve ounce light beer."},
		{Name: "Regular lager (12 oz)", Category: CategoryBeer, ServingOz: 12, ABVPct: 5.0, ExtraKcal: 60,
			CarbsG: grams(13.0), SugarG: grams(0), Carbonation: true,
			OrderScript: "A twelve ounce lager."},
		{Name: "Hard seltzer (12 oz)", Category: CategorySeltzer, ServingOz: 12, ABVPct: 5.0, ExtraKcal: 30,
			CarbsG: grams(2.0), SugarG: grams(1.0), GlutenFree: true, KetoFriendly: true, Carbonation: true,
			OrderScript: "A twelve ounce hard seltzer."},
	}
}

func defaultMixers() []Mixer {
	return []Mixer{
		{Name: "soda water"},
		{Name: "diet tonic"},
		{Name: "diet cola", Caffeine: true},
		{Name: "light tonic", KcalPerOz: 5.0, CarbsPerOz: 1.2},
		{Name: "tonic", KcalPerOz: 10.0, CarbsPerOz: 2.5},
		{Name: "lime juice", KcalPerOz: 8.0, CarbsPerOz: 2.6},
		{Name: "lemon juice", KcalPerOz: 7.0, CarbsPerOz: 2.4},
		{Name: "orange juice", KcalPerOz: 14.0, CarbsPerOz: 3.5},
		{Name: "cranberry juice", KcalPerOz: 13.0, CarbsPerOz: 3.3},
		{Name: "pineapple juice", KcalPerOz: 16.0, CarbsPerOz: 4.0},
		{Name: "simple syrup", KcalPerOz: 50.0, CarbsPerOz: 12.5},
		{Name: "ginger beer", KcalPerOz: 12.0, CarbsPerOz: 3.0, Carbonation: true},
		{Name: "diet ginger beer", Carbonation: true},
		{Name: "coconut water", KcalPerOz: 6.0, CarbsPerOz: 1.5},
	}
}

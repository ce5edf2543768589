package drink

import (
	"math"
	"strconv"
)

// Profile 單一配方計算出的營養與屬性摘要
type Profile struct {
	Name        string   `json:"name"`
	Kcal        int      `json:"kcal"`
	CarbsG      float64  `json:"carbs_g"`
	ABVPct      float64  `json:"abv_pct"`
	Order       string   `json:"order"`
	Tags        []string `json:"tags"`
	Carbonation bool     `json:"carbonation"`
	Caffeine    bool     `json:"caffeine"`
	GlutenFree  bool     `json:"gluten_free"`
	Keto        bool     `json:"keto"`
}

// BuildProfile 彙總配方成分，數值只在最後四捨五入一次
func BuildProfile(catalog *Catalog, r Recipe) Profile {
	var (
		kcal, carbs           float64
		totalOz, alcoholML    float64
		carbonation, caffeine bool
		glutenFree, keto      = true, true
	)

	for _, p := range r.Components {
		switch c := catalog.Resolve(p.Name).(type) {
		case *BaseIngredient:
			kcal += c.ServingKcal() * p.Quantity
			carbs += c.ServingCarbs() * p.Quantity
			oz := c.ServingOz * p.Quantity
			totalOz += oz
			alcoholML += oz * OzToML * (c.ABVPct / 100.0)
			carbonation = carbonation || c.Carbonation
			caffeine = caffeine || c.Caffeine
			glutenFree = glutenFree && c.GlutenFree
			keto = keto && c.KetoFriendly
		case *Mixer:
			kcal += c.KcalPerOz * p.Quantity
			carbs += c.CarbsPerOz * p.Quantity
			totalOz += p.Quantity
			carbonation = carbonation || c.Carbonation
			caffeine = caffeine || c.Caffeine
		default:
			// 未知成分不計入
		}
	}

	var abv float64
	if totalOz > 0 {
		abv = alcoholML / (totalOz * OzToML) * 100.0
	}

	order := r.Order
	if order == "" {
		order = r.Name
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	return Profile{
		Name:        r.Name,
		Kcal:        int(math.RoundToEven(kcal)),
		CarbsG:      round1(carbs),
		ABVPct:      round1(abv),
		Order:       order,
		Tags:        tags,
		Carbonation: carbonation,
		Caffeine:    caffeine,
		GlutenFree:  glutenFree,
		Keto:        keto,
	}
}

// round1 取到小數一位，以浮點數實際值判斷，恰好一半時取偶數
func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

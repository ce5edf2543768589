package drink

// Portion 配方中的一個成分與用量
// 基酒以份數計，調和飲料以液量盎司計
type Portion struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// Recipe 固定組成的飲品配方
type Recipe struct {
	Name       string    `json:"name"`
	Components []Portion `json:"components"`
	Tags       []string  `json:"tags"`
	Order      string    `json:"order"`
}

// Library 預設調酒與無酒精飲品
type Library struct {
	Cocktails []Recipe
	Mocktails []Recipe

	mocktailNames map[string]struct{}
}

// NewLibrary 建立配方庫
func NewLibrary(cocktails, mocktails []Recipe) *Library {
	l := &Library{
		Cocktails:     cocktails,
		Mocktails:     mocktails,
		mocktailNames: make(map[string]struct{}, len(mocktails)),
	}
	for _, m := range mocktails {
		l.mocktailNames[m.Name] = struct{}{}
	}
	return l
}

// IsMocktail 名稱是否屬於無酒精飲品清單
func (l *Library) IsMocktail(name string) bool {
	_, ok := l.mocktailNames[name]
	return ok
}

// Stored 回傳所有儲存的配方（調酒在前）
func (l *Library) Stored() []Recipe {
	out := make([]Recipe, 0, len(l.Cocktails)+len(l.Mocktails))
	out = append(out, l.Cocktails...)
	return append(out, l.Mocktails...)
}

// DefaultLibrary 預設配方庫
func DefaultLibrary() *Library {
	return NewLibrary(presetCocktails(), mocktails())
}

func presetCocktails() []Recipe {
	return []Recipe{
		{
			Name:       "Vodka soda with lime",
			Components: []Portion{{"Vodka (1.5 oz)", 1}, {"soda water", 6}, {"lime juice", 0.25}},
			Tags:       []string{"lowest-cal", "easy-order", "airport"},
			Order:      "Vodka soda, tall glass, heavy ice, squeeze of fresh lime. No simple syrup.",
		},
		{
			Name:       "Tequila soda with lime",
			Components: []Portion{{"Tequila blanco (1.5 oz)", 1}, {"soda water", 6}, {"lime juice", 0.25}},
			Tags:       []string{"lowest-cal", "easy-order", "hotel"},
			Order:      "Tequila soda, tall, fresh lime. No sweetener.",
		},
		{
			Name:       "Gin and diet tonic",
			Components: []Portion{{"Gin (1.5 oz)", 1}, {"diet tonic", 6}},
			Tags:       []string{"low-cal", "diet-mixer"},
			Order:      "Gin with diet tonic, tall. Lime wedge.",
		},
		{
			Name:       "Whiskey neat",
			Components: []Portion{{"Whiskey/bourbon (1.5 oz)", 1}},
			Tags:       []string{"zero-carb", "fast"},
			Order:      "Whiskey neat, one and a half ounces.",
		},
		{
			Name:       "Skinny paloma",
			Components: []Portion{{"Tequila blanco (1.5 oz)", 1}, {"soda water", 4}, {"lime juice", 0.5}},
			Tags:       []string{"mexican", "restaurant"},
			Order:      "Tequila with soda and fresh lime in a salted glass. No grapefruit soda, no simple syrup.",
		},
		{
			Name:       "Skinny mule",
			Components: []Portion{{"Vodka (1.5 oz)", 1}, {"diet ginger beer", 6}, {"lime juice", 0.25}},
			Tags:       []string{"diet-mixer"},
			Order:      "Vodka with diet ginger beer, splash of fresh lime. Copper mug if available.",
		},
		{
			Name:       "Brut champagne (5 oz)",
			Components: []Portion{{"Brut champagne (5 oz)", 1}},
			Tags:       []string{"celebration", "moderate"},
			Order:      "A five ounce pour of brut champagne.",
		},
		{
			Name:       "Dry white wine (5 oz)",
			Components: []Portion{{"Dry white wine (5 oz)", 1}},
			Tags:       []string{"simple", "restaurant"},
			Order:      "Five ounces of your driest white wine.",
		},
		{
			Name:       "Hard seltzer (12 oz)",
			Components: []Portion{{"Hard seltzer (12 oz)", 1}},
			Tags:       []string{"grab-and-go"},
			Order:      "A twelve ounce hard seltzer.",
		},
	}
}

func mocktails() []Recipe {
	return []Recipe{
		{
			Name:       "Lime soda",
			Components: []Portion{{"soda water", 10}, {"lime juice", 0.5}},
			Tags:       []string{"zero-cal", "hydrate"},
			Order:      "Soda water with fresh lime in a tall glass.",
		},
		{
			Name:       "Diet ginger fizz",
			Components: []Portion{{"diet ginger beer", 8}, {"lime juice", 0.25}},
			Tags:       []string{"zero-cal", "diet-mixer"},
			Order:      "Diet ginger beer with a squeeze of lime.",
		},
	}
}

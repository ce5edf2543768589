package drink

import "strings"

const (
	CategoryAny      = "any"
	CategoryCocktail = "cocktail"
	CategoryMocktail = "mocktail"
)

var spiritNeedles = []string{"vodka", "tequila", "gin", "whiskey", "rum"}

// categoryMatcher 判斷配方是否屬於某一類別
type categoryMatcher func(g *Generator, r Recipe) bool

func nameMatcher(needles ...string) categoryMatcher {
	return func(_ *Generator, r Recipe) bool {
		return componentsContain(r, needles)
	}
}

// categoryRules 類別對應的判斷規則
var categoryRules = map[string]categoryMatcher{
	CategoryAny:             func(*Generator, Recipe) bool { return true },
	string(CategoryWine):    nameMatcher("wine", "champagne"),
	string(CategoryBeer):    nameMatcher("beer", "lager"),
	string(CategorySeltzer): nameMatcher("seltzer"),
	string(CategorySpirit):  nameMatcher(spiritNeedles...),
	CategoryCocktail:        (*Generator).isCocktail,
	CategoryMocktail: func(g *Generator, r Recipe) bool {
		return g.library.IsMocktail(r.Name)
	},
}

// Generator 依類別與基酒篩選候選配方
type Generator struct {
	catalog *Catalog
	library *Library
}

// NewGenerator 建立候選配方產生器
func NewGenerator(catalog *Catalog, library *Library) *Generator {
	return &Generator{catalog: catalog, library: library}
}

// Candidates 回傳符合任一類別且（若有指定）含指定基酒的配方
func (g *Generator) Candidates(categories, spirits []string) []Recipe {
	cats := normalize(categories)
	if len(cats) == 0 {
		cats = []string{CategoryAny}
	}
	needles := normalize(spirits)

	var recipes []Recipe
	if contains(cats, CategoryMocktail) {
		recipes = append(recipes, g.library.Mocktails...)
	}
	recipes = append(recipes, g.library.Cocktails...)
	recipes = append(recipes, g.synthetic()...)

	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if g.MatchesCategory(r, cats) && (len(needles) == 0 || componentsContain(r, needles)) {
			out = append(out, r)
		}
	}
	return out
}

// MatchesCategory 任一類別符合即成立，未知類別視為不符合
func (g *Generator) MatchesCategory(r Recipe, categories []string) bool {
	for _, cat := range categories {
		if match, ok := categoryRules[cat]; ok && match(g, r) {
			return true
		}
	}
	return false
}

// synthetic 由基酒產生純飲與單杯配方
func (g *Generator) synthetic() []Recipe {
	var neat, standalone []Recipe
	for _, b := range g.catalog.Bases() {
		switch b.Category {
		case CategorySpirit:
			label := strings.SplitN(b.Name, " (", 2)[0]
			neat = append(neat, Recipe{
				Name:       strings.Replace(b.Name, " (1.5 oz)", " neat", 1),
				Components: []Portion{{Name: b.Name, Quantity: 1}},
				Tags:       []string{"zero-carb", "simple"},
				Order:      label + " neat, one and a half ounces.",
			})
		case CategoryWine, CategorySeltzer, CategoryBeer:
			order := b.OrderScript
			if order == "" {
				order = b.Name
			}
			standalone = append(standalone, Recipe{
				Name:       b.Name,
				Components: []Portion{{Name: b.Name, Quantity: 1}},
				Tags:       []string{string(b.Category)},
				Order:      order,
			})
		}
	}
	return append(neat, standalone...)
}

// isCocktail 至少一種基酒加上至少一種調和飲料
func (g *Generator) isCocktail(r Recipe) bool {
	var hasBase, hasMixer bool
	for _, p := range r.Components {
		if _, ok := g.catalog.Base(p.Name); ok {
			hasBase = true
		}
		if _, ok := g.catalog.Mixer(p.Name); ok {
			hasMixer = true
		}
	}
	return hasBase && hasMixer
}

func componentsContain(r Recipe, needles []string) bool {
	for _, p := range r.Components {
		name := strings.ToLower(p.Name)
		for _, n := range needles {
			if strings.Contains(name, n) {
				return true
			}
		}
	}
	return false
}

func normalize(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

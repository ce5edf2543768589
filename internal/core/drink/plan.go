package drink

import (
	"errors"
	"math"
	"sort"
)

const (
	// shortlistSize 可行清單或備選清單保留的上限
	shortlistSize  = 5
	maxSuggestions = 5

	// FallbackMessage 無完全符合時的固定提示
	FallbackMessage = "No exact matches. Showing closest-fit picks based on your limits."

	pacingInstruction = "Sip slowly for 45–60 minutes, alternate with water (12 oz), add a pinch of salt if you sweat a lot."
)

// ErrNoCandidates 類別與基酒篩選後沒有任何配方
var ErrNoCandidates = errors.New("no drinks match the requested categories and spirits")

var recoveryChecklist = []string{
	"500–750 ml water before bed; electrolytes if you trained.",
	"Protein-forward breakfast (eggs/Greek yogurt); add fruit for potassium.",
	"Zone 2 walk 20–30 min.",
	"Avoid driving; never mix alcohol with sedatives.",
}

// PacingStep 每一杯的節奏建議
type PacingStep struct {
	Slot        int    `json:"slot"`
	Instruction string `json:"instruction"`
}

// Advice 備選模式下的建議
type Advice struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Plan 最終輸出的飲品計畫
type Plan struct {
	Picks        []Profile    `json:"picks"`
	Pacing       []PacingStep `json:"pacing"`
	Recovery     []string     `json:"recovery"`
	FallbackUsed bool         `json:"fallback_used"`
	Advice       *Advice      `json:"advice"`
}

// ScoredProfile 帶分數的配方摘要
type ScoredProfile struct {
	Profile
	Score float64 `json:"score"`
}

// Ranking 依分數排序的結果與可行子集（保持排序）
type Ranking struct {
	Scored   []ScoredProfile
	Feasible []ScoredProfile
}

// Engine 推薦引擎，只持有唯讀資料表，可同時被多個請求使用
type Engine struct {
	catalog   *Catalog
	library   *Library
	generator *Generator
}

// NewEngine 建立推薦引擎
func NewEngine(catalog *Catalog, library *Library) *Engine {
	return &Engine{
		catalog:   catalog,
		library:   library,
		generator: NewGenerator(catalog, library),
	}
}

// Catalog 回傳營養資料表
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Library 回傳配方庫
func (e *Engine) Library() *Library { return e.library }

// Rank 產生候選、計算摘要、評分並穩定排序
func (e *Engine) Rank(prefs Preferences) Ranking {
	candidates := e.generator.Candidates(prefs.Categories, prefs.Spirits)

	scored := make([]ScoredProfile, 0, len(candidates))
	for _, r := range candidates {
		p := BuildProfile(e.catalog, r)
		scored = append(scored, ScoredProfile{Profile: p, Score: Score(p, prefs)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	feasible := make([]ScoredProfile, 0, len(scored))
	for _, sp := range scored {
		if Feasible(sp.Profile, prefs) {
			feasible = append(feasible, sp)
		}
	}
	return Ranking{Scored: scored, Feasible: feasible}
}

// ComputePlan 唯一入口：偏好 → 計畫
func (e *Engine) ComputePlan(in PreferencesInput) (*Plan, error) {
	return e.PlanFor(in.Resolve())
}

// PlanFor 以已套用預設值的偏好計算計畫
func (e *Engine) PlanFor(prefs Preferences) (*Plan, error) {
	ranking := e.Rank(prefs)
	if len(ranking.Scored) == 0 {
		return nil, ErrNoCandidates
	}

	var (
		selected []ScoredProfile
		advice   *Advice
		fallback bool
	)
	if len(ranking.Feasible) > 0 {
		selected = head(ranking.Feasible, shortlistSize)
	} else {
		fallback = true
		selected = head(ranking.Scored, shortlistSize)
		advice = buildAdvice(prefs)
	}

	n := ClampDrinkCount(prefs.DrinkCount)
	picks := make([]Profile, 0, n)
	for _, sp := range head(selected, n) {
		picks = append(picks, sp.Profile)
	}

	pacing := make([]PacingStep, 0, n)
	for i := 0; i < n; i++ {
		pacing = append(pacing, PacingStep{Slot: i + 1, Instruction: pacingInstruction})
	}

	return &Plan{
		Picks:        picks,
		Pacing:       pacing,
		Recovery:     RecoveryChecklist(),
		FallbackUsed: fallback,
		Advice:       advice,
	}, nil
}

// Feasible 同時滿足所有硬性限制
func Feasible(p Profile, prefs Preferences) bool {
	if float64(p.Kcal) > math.Trunc(prefs.MaxKcal) || p.CarbsG > prefs.MaxCarbs {
		return false
	}
	if prefs.GlutenFreeOnly && !p.GlutenFree {
		return false
	}
	if prefs.KetoOnly && !p.Keto {
		return false
	}
	if !prefs.AllowCaffeine && p.Caffeine {
		return false
	}
	if !prefs.AllowCarbonation && p.Carbonation {
		return false
	}
	return true
}

// RecoveryChecklist 隔天恢復清單（副本）
func RecoveryChecklist() []string {
	return append([]string(nil), recoveryChecklist...)
}

// adviceRule 觸發條件與對應建議，依優先序排列
type adviceRule struct {
	when       func(Preferences) bool
	suggestion string
}

var adviceRules = []adviceRule{
	{
		when:       func(p Preferences) bool { return math.Trunc(p.MaxKcal) < 90 },
		suggestion: "Increase max calories to ≥ 90 kcal — most spirit + soda combos land 90–110 kcal.",
	},
	{
		when: func(p Preferences) bool {
			return p.MaxCarbs < 2 && (p.HasCategory(string(CategoryWine)) || p.HasCategory(string(CategorySeltzer)))
		},
		suggestion: "Allow up to 2–5 g carbs for dry wine or hard seltzer options.",
	},
	{
		when: func(p Preferences) bool {
			return !p.AllowCarbonation && (p.HasCategory(string(CategoryBeer)) || p.HasCategory(string(CategorySeltzer)))
		},
		suggestion: "Enable carbonation or include spirits to avoid beer/seltzer conflicts.",
	},
	{
		when:       func(p Preferences) bool { return p.GlutenFreeOnly && p.HasCategory(string(CategoryBeer)) },
		suggestion: "Gluten-free only with beer is restrictive — switch to spirits with soda or brut champagne.",
	},
	{
		when: func(p Preferences) bool {
			return p.KetoOnly && (p.HasCategory(string(CategoryBeer)) || p.HasCategory(string(CategoryWine)))
		},
		suggestion: "Keto + beer/wine is tough — prefer spirits with soda water.",
	},
}

func buildAdvice(prefs Preferences) *Advice {
	suggestions := make([]string, 0, len(adviceRules))
	for _, rule := range adviceRules {
		if rule.when(prefs) {
			suggestions = append(suggestions, rule.suggestion)
		}
	}
	return &Advice{Message: FallbackMessage, Suggestions: head(suggestions, maxSuggestions)}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

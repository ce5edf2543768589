package drink

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func newTestEngine() *Engine { return NewEngine(DefaultCatalog(), DefaultLibrary()) }

func names(ps []Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestComputePlanDefaults(t *testing.T) {
	plan, err := newTestEngine().ComputePlan(PreferencesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.FallbackUsed || plan.Advice != nil {
		t.Fatalf("expected feasible plan without advice")
	}
	if len(plan.Picks) != 1 || plan.Picks[0].Name != "Gin and diet tonic" {
		t.Fatalf("expected Gin and diet tonic as top pick, got %v", names(plan.Picks))
	}
	for _, p := range plan.Picks {
		if p.Kcal > 130 || p.CarbsG > 8.0 {
			t.Fatalf("default limits violated by %+v", p)
		}
	}
}

func TestComputePlanStableTieOrder(t *testing.T) {
	plan, err := newTestEngine().ComputePlan(PreferencesInput{DrinkCount: intPtr(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Gin and diet tonic", "Whiskey neat", "Vodka neat", "Tequila blanco neat"}
	if got := names(plan.Picks); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComputePlanFallback(t *testing.T) {
	plan, err := newTestEngine().ComputePlan(PreferencesInput{
		Categories: []string{"beer"},
		MaxKcal:    floatPtr(10),
		MaxCarbs:   floatPtr(0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.FallbackUsed {
		t.Fatalf("expected fallback")
	}
	if len(plan.Picks) == 0 || len(plan.Picks) > 5 {
		t.Fatalf("expected 1..5 picks, got %d", len(plan.Picks))
	}
	if plan.Picks[0].Name != "Skinny mule" {
		t.Fatalf("expected closest fit Skinny mule, got %s", plan.Picks[0].Name)
	}
	if plan.Advice == nil || plan.Advice.Message != FallbackMessage {
		t.Fatalf("expected fallback message, got %+v", plan.Advice)
	}
	want := []string{"Increase max calories to ≥ 90 kcal — most spirit + soda combos land 90–110 kcal."}
	if !reflect.DeepEqual(plan.Advice.Suggestions, want) {
		t.Fatalf("unexpected suggestions %v", plan.Advice.Suggestions)
	}
}

func TestAdviceRulesPriority(t *testing.T) {
	cases := []struct {
		name string
		in   PreferencesInput
		want []string
	}{
		{
			name: "beer_carbonation_gluten",
			in: PreferencesInput{
				Categories: []string{"beer"}, MaxKcal: floatPtr(60), MaxCarbs: floatPtr(0),
				AllowCarbonation: boolPtr(false), GlutenFreeOnly: boolPtr(true),
			},
			want: []string{
				"Increase max calories to ≥ 90 kcal — most spirit + soda combos land 90–110 kcal.",
				"Enable carbonation or include spirits to avoid beer/seltzer conflicts.",
				"Gluten-free only with beer is restrictive — switch to spirits with soda or brut champagne.",
			},
		},
		{
			name: "wine_keto_low_carb",
			in:   PreferencesInput{Categories: []string{"wine"}, MaxCarbs: floatPtr(1), KetoOnly: boolPtr(true)},
			want: []string{
				"Allow up to 2–5 g carbs for dry wine or hard seltzer options.",
				"Keto + beer/wine is tough — prefer spirits with soda water.",
			},
		},
		{
			name: "seltzer_no_carbonation",
			in:   PreferencesInput{Categories: []string{"seltzer"}, AllowCarbonation: boolPtr(false)},
			want: []string{"Enable carbonation or include spirits to avoid beer/seltzer conflicts."},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := newTestEngine().ComputePlan(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !plan.FallbackUsed || plan.Advice == nil {
				t.Fatalf("expected fallback with advice")
			}
			if !reflect.DeepEqual(plan.Advice.Suggestions, tc.want) {
				t.Fatalf("got %v, want %v", plan.Advice.Suggestions, tc.want)
			}
		})
	}
}

func TestFallbackSelectsTopFiveByScore(t *testing.T) {
	plan, err := newTestEngine().ComputePlan(PreferencesInput{
		Categories: []string{"wine"},
		MaxCarbs:   floatPtr(1),
		KetoOnly:   boolPtr(true),
		DrinkCount: intPtr(9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Brut champagne (5 oz)", "Brut champagne (5 oz)", "Dry white wine (5 oz)", "Dry white wine (5 oz)"}
	if got := names(plan.Picks); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSpiritFiltering(t *testing.T) {
	plan, err := newTestEngine().ComputePlan(PreferencesInput{
		Categories: []string{"spirit", "cocktail"},
		Spirits:    []string{"vodka"},
		DrinkCount: intPtr(4),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Picks) == 0 {
		t.Fatalf("expected picks")
	}
	for _, p := range plan.Picks {
		if !strings.Contains(strings.ToLower(p.Name), "vodka") && !strings.Contains(strings.ToLower(p.Order), "vodka") {
			t.Fatalf("non-vodka pick %q", p.Name)
		}
	}
}

func TestPacingAndRecovery(t *testing.T) {
	engine := newTestEngine()
	plan, err := engine.ComputePlan(PreferencesInput{DrinkCount: intPtr(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Pacing) != 3 {
		t.Fatalf("expected 3 pacing entries, got %d", len(plan.Pacing))
	}
	for i, step := range plan.Pacing {
		if step.Slot != i+1 || step.Instruction != pacingInstruction {
			t.Fatalf("unexpected pacing step %+v", step)
		}
	}
	if len(plan.Recovery) == 0 || !reflect.DeepEqual(plan.Recovery, RecoveryChecklist()) {
		t.Fatalf("unexpected recovery list %v", plan.Recovery)
	}

	plan.Recovery[0] = "mutated"
	again, _ := engine.ComputePlan(PreferencesInput{DrinkCount: intPtr(3)})
	if again.Recovery[0] == "mutated" {
		t.Fatalf("recovery checklist must not share backing storage between plans")
	}
}

func TestDrinkCountClamp(t *testing.T) {
	engine := newTestEngine()
	for _, tc := range []struct{ in, want int }{{-2, 1}, {0, 1}, {2, 2}, {4, 4}, {12, 4}} {
		plan, err := engine.ComputePlan(PreferencesInput{DrinkCount: intPtr(tc.in)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(plan.Pacing) != tc.want || len(plan.Picks) != tc.want {
			t.Fatalf("drink_count %d: expected %d slots, got picks=%d pacing=%d", tc.in, tc.want, len(plan.Picks), len(plan.Pacing))
		}
	}
}

func TestGlutenFreeFilter(t *testing.T) {
	plan, err := newTestEngine().ComputePlan(PreferencesInput{
		Categories:     []string{"beer", "spirit", "cocktail"},
		GlutenFreeOnly: boolPtr(true),
		DrinkCount:     intPtr(4),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range plan.Picks {
		if !p.GlutenFree {
			t.Fatalf("gluten pick %q", p.Name)
		}
	}
}

func TestMocktailABV(t *testing.T) {
	plan, err := newTestEngine().ComputePlan(PreferencesInput{
		Categories: []string{"mocktail"},
		MaxKcal:    floatPtr(50),
		DrinkCount: intPtr(4),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := names(plan.Picks); !reflect.DeepEqual(got, []string{"Diet ginger fizz", "Lime soda"}) {
		t.Fatalf("unexpected mocktail picks %v", got)
	}
	for _, p := range plan.Picks {
		if p.ABVPct >= 0.5 {
			t.Fatalf("mocktail %q has abv %.1f", p.Name, p.ABVPct)
		}
	}
}

func TestExplicitFalseOverridesDefault(t *testing.T) {
	plan, err := newTestEngine().ComputePlan(PreferencesInput{
		Categories:       []string{"seltzer", "wine"},
		AllowCarbonation: boolPtr(false),
		DrinkCount:       intPtr(4),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.FallbackUsed {
		t.Fatalf("still wines should be feasible")
	}
	for _, p := range plan.Picks {
		if p.Carbonation {
			t.Fatalf("carbonated pick %q", p.Name)
		}
	}
}

func TestFeasibleSetMonotonicInMaxKcal(t *testing.T) {
	engine := newTestEngine()
	limits := []float64{0, 50, 99, 100, 110, 130, 160, 500}
	for i := 1; i < len(limits); i++ {
		lo, hi := DefaultPreferences(), DefaultPreferences()
		lo.Categories = []string{CategoryAny, CategoryMocktail}
		hi.Categories = lo.Categories
		lo.MaxKcal, hi.MaxKcal = limits[i-1], limits[i]

		have := map[string]int{}
		for _, sp := range engine.Rank(hi).Feasible {
			have[sp.Name]++
		}
		for _, sp := range engine.Rank(lo).Feasible {
			if have[sp.Name] == 0 {
				t.Fatalf("%q feasible at %.0f kcal but not at %.0f", sp.Name, lo.MaxKcal, hi.MaxKcal)
			}
			have[sp.Name]--
		}
	}
}

func TestComputePlanIdempotentAndConcurrent(t *testing.T) {
	engine := newTestEngine()
	in := PreferencesInput{Categories: []string{"spirit", "wine"}, DrinkCount: intPtr(4), PrefCategory: "restaurant"}
	first, err := engine.ComputePlan(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]*Plan, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = engine.ComputePlan(in)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		if !reflect.DeepEqual(first, r) {
			t.Fatalf("expected identical plans")
		}
	}
}

func TestComputePlanNoCandidates(t *testing.T) {
	_, err := newTestEngine().ComputePlan(PreferencesInput{Categories: []string{"spirit"}, Spirits: []string{"mezcal"}})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestPreferencesResolve(t *testing.T) {
	p := PreferencesInput{Categories: []string{" Wine ", ""}, MaxCarbs: floatPtr(0), SugarFreeMixers: boolPtr(false)}.Resolve()
	if !reflect.DeepEqual(p.Categories, []string{"wine"}) {
		t.Fatalf("unexpected categories %v", p.Categories)
	}
	if p.MaxCarbs != 0 || p.MaxKcal != DefaultMaxKcal || p.SugarFreeMixers {
		t.Fatalf("unexpected overlay %+v", p)
	}
	if !p.AllowCaffeine || !p.AllowCarbonation || p.DrinkCount != 1 {
		t.Fatalf("defaults not applied %+v", p)
	}
}

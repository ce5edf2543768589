// drinkplan 從命令列呼叫執行中的飲品計畫服務。
//
//	drinkplan [flags] generate
//	drinkplan [flags] pdf <pdf_url|key>
//	drinkplan [flags] tips
//	drinkplan [flags] selftest
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"travel-drink-generator/internal/client"
	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/planner"
	"travel-drink-generator/internal/pkg/common"

	"github.com/spf13/pflag"
)

type options struct {
	server  string
	timeout time.Duration
	output  string

	categories    []string
	spirits       []string
	count         int
	maxKcal       float64
	maxCarbs      float64
	sugarFree     bool
	caffeine      bool
	carbonation   bool
	glutenFree    bool
	keto          bool
	prefCategory  string
	wantPDF       bool
	printJSONOnly bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("drinkplan", pflag.ContinueOnError)
	opts := options{}
	fs.StringVar(&opts.server, "server", envOr("DRINKPLAN_SERVER", "http://127.0.0.1:5000"), "base URL of the drink plan service")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	fs.StringVarP(&opts.output, "output", "o", "drink_plan.pdf", "file to write when downloading a PDF")
	fs.StringSliceVar(&opts.categories, "categories", nil, "drink categories (wine, beer, seltzer, spirit, cocktail, mocktail, any)")
	fs.StringSliceVar(&opts.spirits, "spirits", nil, "base spirits to require (vodka, tequila, gin, whiskey, rum)")
	fs.IntVar(&opts.count, "count", drink.DefaultDrinkCount, "number of drinks (1-4)")
	fs.Float64Var(&opts.maxKcal, "max-kcal", drink.DefaultMaxKcal, "max calories per drink")
	fs.Float64Var(&opts.maxCarbs, "max-carbs", drink.DefaultMaxCarbs, "max carbs per drink in grams")
	fs.BoolVar(&opts.sugarFree, "sugar-free-mixers", true, "prefer sugar-free mixers")
	fs.BoolVar(&opts.caffeine, "caffeine", true, "allow caffeinated mixers")
	fs.BoolVar(&opts.carbonation, "carbonation", true, "allow carbonated drinks")
	fs.BoolVar(&opts.glutenFree, "gluten-free", false, "only gluten-free drinks")
	fs.BoolVar(&opts.keto, "keto", false, "only keto-friendly drinks")
	fs.StringVar(&opts.prefCategory, "prefer", "", "category to favor when ranking")
	fs.BoolVar(&opts.wantPDF, "pdf", false, "render a PDF and download it to --output")
	fs.BoolVar(&opts.printJSONOnly, "json", false, "print raw JSON instead of a summary")

	if err := fs.Parse(args); err != nil {
		return err
	}

	command := "generate"
	rest := fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	c := client.New(opts.server)

	switch command {
	case "generate":
		return generate(ctx, c, fs, opts, stdout)
	case "pdf":
		if len(rest) != 1 {
			return errors.New("usage: drinkplan pdf <pdf_url|key>")
		}
		return download(ctx, c, rest[0], opts.output, stdout)
	case "tips":
		tips, err := c.HealthTips(ctx)
		if err != nil {
			return err
		}
		for _, tip := range tips {
			fmt.Fprintln(stdout, "- "+tip)
		}
		return nil
	case "selftest":
		report, err := c.SelfTest(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(stdout, report); err != nil {
			return err
		}
		if !report.OK() {
			return fmt.Errorf("%d self-test checks failed", len(report.Failed))
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// buildRequest 只送出命令列上有指定的欄位，其餘交給伺服器預設值
func buildRequest(fs *pflag.FlagSet, opts options) planner.Request {
	req := planner.Request{WantPDF: opts.wantPDF}
	in := &req.PreferencesInput
	in.Categories = opts.categories
	in.Spirits = opts.spirits
	in.PrefCategory = opts.prefCategory

	if fs.Changed("count") {
		in.DrinkCount = &opts.count
	}
	if fs.Changed("max-kcal") {
		in.MaxKcal = &opts.maxKcal
	}
	if fs.Changed("max-carbs") {
		in.MaxCarbs = &opts.maxCarbs
	}
	if fs.Changed("sugar-free-mixers") {
		in.SugarFreeMixers = &opts.sugarFree
	}
	if fs.Changed("caffeine") {
		in.AllowCaffeine = &opts.caffeine
	}
	if fs.Changed("carbonation") {
		in.AllowCarbonation = &opts.carbonation
	}
	if fs.Changed("gluten-free") {
		in.GlutenFreeOnly = &opts.glutenFree
	}
	if fs.Changed("keto") {
		in.KetoOnly = &opts.keto
	}
	return req
}

func generate(ctx context.Context, c *client.Client, fs *pflag.FlagSet, opts options, stdout io.Writer) error {
	plan, err := c.Generate(ctx, buildRequest(fs, opts))
	if err != nil {
		return err
	}

	if opts.printJSONOnly {
		if err := printJSON(stdout, plan); err != nil {
			return err
		}
	} else {
		printPlan(stdout, plan)
	}

	if opts.wantPDF && plan.PDFURL != nil {
		return download(ctx, c, *plan.PDFURL, opts.output, stdout)
	}
	return nil
}

func download(ctx context.Context, c *client.Client, ref, output string, stdout io.Writer) error {
	data, err := c.PDF(ctx, ref)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(stdout, "Saved PDF to %s (%d bytes)\n", output, len(data))
	return nil
}

func printPlan(w io.Writer, plan *client.PlanResponse) {
	if plan.FallbackUsed && plan.Advice != nil {
		fmt.Fprintln(w, plan.Advice.Message)
		for _, s := range plan.Advice.Suggestions {
			fmt.Fprintln(w, "  * "+s)
		}
		fmt.Fprintln(w)
	}

	for i, p := range plan.Picks {
		fmt.Fprintf(w, "Pick %d: %s\n", i+1, p.Name)
		fmt.Fprintf(w, "  %d kcal, %.1f g carbs, %.1f%% ABV\n", p.Kcal, p.CarbsG, p.ABVPct)
		fmt.Fprintf(w, "  Order: %s\n", p.Order)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pacing:")
	for _, step := range plan.Pacing {
		fmt.Fprintf(w, "  %d. %s\n", step.Slot, step.Instruction)
	}
	fmt.Fprintln(w, "Recovery:")
	for _, item := range plan.Recovery {
		fmt.Fprintln(w, "  - "+item)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := common.ToIndentedJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

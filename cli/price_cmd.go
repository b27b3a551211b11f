package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/panel-estimator/export"
	"github.com/warp/panel-estimator/factory"
	"github.com/warp/panel-estimator/pricing"
)

func newPriceCmd() *cobra.Command {
	var file string
	var round int32
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Run the pricing cascade on raw subtotals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrice(cmd.OutOrStdout(), file, round, asJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Pricing input JSON file (- for stdin)")
	cmd.Flags().Int32Var(&round, "round", export.DisplayPlaces, "Decimal places to display (negative for full precision)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the breakdown as JSON")
	return cmd
}

func runPrice(out io.Writer, file string, round int32, asJSON bool) error {
	data, err := readFile(file)
	if err != nil {
		return err
	}
	in, err := factory.ParseInput(data)
	if err != nil {
		return err
	}
	result, err := pricing.Compute(in)
	if err != nil {
		return err
	}
	if round >= 0 {
		result = result.Round(round)
	}

	if asJSON {
		return writeJSON(out, breakdownJSON(result))
	}
	printBreakdown(out, result)
	return nil
}

func newQuoteCmd() *cobra.Command {
	var file, profileFile, xlsx string
	var round int32

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a quote file, optionally applying a profile and exporting xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd.OutOrStdout(), file, profileFile, xlsx, round)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Quote JSON file (- for stdin)")
	cmd.Flags().StringVarP(&profileFile, "profile", "p", "", "Pricing profile JSON file applied over the quote's params")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Write the quote workbook to this path")
	cmd.Flags().Int32Var(&round, "round", export.DisplayPlaces, "Decimal places to display (negative for full precision)")
	return cmd
}

func runQuote(out io.Writer, file, profileFile, xlsx string, round int32) error {
	data, err := readFile(file)
	if err != nil {
		return err
	}
	q, err := factory.ParseQuote(data)
	if err != nil {
		return err
	}

	if profileFile != "" {
		raw, err := readFile(profileFile)
		if err != nil {
			return err
		}
		profile, err := factory.NewProfileFactory().ParseProfile(string(raw))
		if err != nil {
			return err
		}
		if err := profile.Apply(q); err != nil {
			return err
		}
	}

	result, err := q.Price()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, styleHeader.Render(q.ProjectName))
	fmt.Fprintf(out, "%s  %s\n", styleDim.Render("Client:"), q.ClientName)
	fmt.Fprintf(out, "%s  %s (%s)\n", styleDim.Render("Quote: "), q.ID, q.Status)
	if q.ProfileID != "" {
		fmt.Fprintf(out, "%s  %s\n", styleDim.Render("Profile:"), q.ProfileID)
	}
	fmt.Fprintln(out)

	display := result
	if round >= 0 {
		display = result.Round(round)
	}
	printBreakdown(out, display)

	if xlsx != "" {
		book, err := export.QuoteWorkbook(*q, result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsx, book, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", xlsx, err)
		}
		fmt.Fprintln(out, styleGreen.Render("Workbook written to "+xlsx))
	}
	return nil
}

func printBreakdown(out io.Writer, r pricing.Result) {
	lines := r.Lines()
	for i, line := range lines {
		label := fmt.Sprintf("%-24s", line.Label)
		value := fmt.Sprintf("%14s", line.Value.String())
		if i == len(lines)-1 {
			fmt.Fprintln(out, styleBold.Render(label+value))
			continue
		}
		fmt.Fprintln(out, label+value)
	}
	fmt.Fprintf(out, "%s %s%%\n", styleDim.Render("Gross margin"), r.GrossMarginPercent().StringFixed(2))
}

func breakdownJSON(r pricing.Result) map[string]string {
	return map[string]string{
		"subtotal":               r.Subtotal.String(),
		"margin_amount":          r.MarginAmount.String(),
		"after_margin":           r.AfterMargin.String(),
		"after_additional_costs": r.AfterAdditionalCosts.String(),
		"discount_amount":        r.DiscountAmount.String(),
		"after_discount":         r.AfterDiscount.String(),
		"tax_amount":             r.TaxAmount.String(),
		"final_value":            r.FinalValue.String(),
	}
}

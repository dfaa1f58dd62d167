package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/amarshop/internal/pricing"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/utils"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice [orderID]",
	Short: "Print the reconciled invoice of an order",
	Long: `Fetches an order from the backend, resolves each line's unit price
the same way the invoice page does and prints the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoice,
}

func runInvoice(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	api := services.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)

	order, err := api.GetOrder(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetch order %s: %w", args[0], err)
	}
	summary, err := pricing.NewReconciler(logger).Order(ctx, *order, pricing.NewProductCache(api))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Invoice #%s  %s\n", order.ShortID(), order.Status)
	fmt.Fprintf(out, "Bill to: %s, %s\n", order.Customer.Name, order.Customer.Phone)
	if addr := order.Customer.FullAddress(); addr != "" {
		fmt.Fprintf(out, "Address: %s\n", addr)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE\tTOTAL\tSOURCE")
	for _, lp := range summary.Lines {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			lp.Title, lp.Line.Quantity, utils.FormatPrice(lp.UnitPrice), utils.FormatPrice(lp.LineTotal), lp.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Subtotal: %s\n", utils.FormatPrice(summary.SubTotal))
	fmt.Fprintf(out, "Shipping: %s\n", utils.FormatPrice(summary.Shipping))
	fmt.Fprintf(out, "Total:    %s\n", utils.FormatPrice(summary.GrandTotal))

	official, err := services.NewInvoiceCache(api).Get(ctx, order.ID)
	switch {
	case err != nil:
		logger.Sugar().Warnf("official invoice lookup failed: %v", err)
	case official != nil:
		fmt.Fprintf(out, "Official invoice: %s %s\n", official.Number, official.URL)
	}
	return nil
}

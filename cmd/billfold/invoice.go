package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/invoice"
)

// NewInvoiceCmd creates the invoice subcommand group.
func NewInvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create, read, update or delete invoices",
	}

	cmd.AddCommand(newInvoiceCreateCmd())
	cmd.AddCommand(newInvoiceReadCmd())
	cmd.AddCommand(newInvoiceUpdateCmd())
	cmd.AddCommand(newInvoiceDeleteCmd())

	return cmd
}

// parseOrderItem parses an --item flag of the form "name:priceInCent:quantity".
func parseOrderItem(s string) (invoice.OrderItem, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return invoice.OrderItem{}, oops.Code("INVOICE_INVALID_INPUT").
			With("item", s).
			Errorf("item must be name:priceInCent:quantity")
	}

	price, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return invoice.OrderItem{}, oops.Code("INVOICE_INVALID_INPUT").
			With("item", s).
			Errorf("price must be an integer number of cents")
	}
	quantity, err := strconv.Atoi(parts[2])
	if err != nil {
		return invoice.OrderItem{}, oops.Code("INVOICE_INVALID_INPUT").
			With("item", s).
			Errorf("quantity must be an integer")
	}

	return invoice.OrderItem{
		Quantity: quantity,
		Item: invoice.Item{
			Name:        parts[0],
			PriceInCent: price,
		},
	}, nil
}

func newInvoiceCreateCmd() *cobra.Command {
	var (
		userID    string
		items     []string
		taxRate   float64
		extraInfo string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an invoice",
		Long: `Create an invoice for a user. Items are given as repeated --item
flags of the form name:priceInCent:quantity. The invoice number is
assigned automatically and the status starts as OPEN.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orderItems := make([]invoice.OrderItem, 0, len(items))
			for _, raw := range items {
				oi, err := parseOrderItem(raw)
				if err != nil {
					return err
				}
				orderItems = append(orderItems, oi)
			}

			return withApp(cmd, func(ctx context.Context, _ *config.Config, app *App) error {
				inv, err := app.Invoices.Create(ctx, invoice.NewInvoiceParams{
					UserID:    userID,
					Items:     orderItems,
					TaxRate:   taxRate,
					ExtraInfo: extraInfo,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, inv)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "ID of the invoiced user")
	cmd.Flags().StringArrayVar(&items, "item", nil, "invoice line as name:priceInCent:quantity (repeatable)")
	cmd.Flags().Float64Var(&taxRate, "tax-rate", 0, "tax rate (default 0.15)")
	cmd.Flags().StringVar(&extraInfo, "extra-info", "", "free-form note on the invoice")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

func newInvoiceReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Print an invoice as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, app *App) error {
				inv, err := app.Invoices.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, inv)
			})
		},
	}
}

func newInvoiceUpdateCmd() *cobra.Command {
	var (
		status    string
		extraInfo string
		taxRate   float64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an invoice",
		Long: `Update the status, extra info or tax rate of an invoice. Unset
flags leave the stored value untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, app *App) error {
				err := app.Invoices.Update(ctx, args[0], invoice.Update{
					Status:    invoice.Status(status),
					ExtraInfo: extraInfo,
					TaxRate:   taxRate,
				})
				if err != nil {
					return err
				}
				cmd.Println("updated")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "new status (OPEN or PAID)")
	cmd.Flags().StringVar(&extraInfo, "extra-info", "", "new free-form note")
	cmd.Flags().Float64Var(&taxRate, "tax-rate", 0, "new tax rate")

	return cmd
}

func newInvoiceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, _ *config.Config, app *App) error {
				if err := app.Invoices.Delete(ctx, args[0]); err != nil {
					return err
				}
				cmd.Println("deleted")
				return nil
			})
		},
	}
}

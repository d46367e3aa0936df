package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	regexflowclient "github.com/GregMSThompson/regexflow/internal/client/regexflow"
	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/internal/txview"
)

func smsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sms",
		Short: "Upload bank SMS",
	}
	parse := &cobra.Command{
		Use:   "parse",
		Short: "Parse one SMS into a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			text, _ := cmd.Flags().GetString("text")
			sender, _ := cmd.Flags().GetString("sender")
			if text == "" {
				return fmt.Errorf("--text is required")
			}
			res, err := c.ParseSms(commandContext(cmd), dto.SmsParseRequest{SmsText: text, SenderHeader: sender})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", res.ParseStatus)
			if res.ErrorMessage != "" {
				fmt.Fprintf(out, "Message: %s\n", res.ErrorMessage)
			}
			if res.Transaction != nil {
				printTransactions(out, []*models.Transaction{res.Transaction})
			}
			return nil
		},
	}
	parse.Flags().String("text", "", "SMS body")
	parse.Flags().String("sender", "", "sender header, e.g. VM-HDFCBK")
	cmd.AddCommand(parse)
	return cmd
}

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Browse your transactions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List a page of transactions, narrowed locally by tab, dates and search",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")
			res, err := c.ListTransactions(commandContext(cmd), page, size)
			if err != nil {
				return err
			}
			return showPage(cmd, res)
		},
	}
	addViewFlags(list)
	list.Flags().Int("page", 0, "page number")
	list.Flags().Int("size", dto.DefaultPageSize, "page size")

	filter := &cobra.Command{
		Use:   "filter",
		Short: "Query transactions with the server-side advanced filter",
		Long:  "Runs the advanced filter on the server. Results always start from page 0 unless --page is given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			f, err := advancedFilter(cmd)
			if err != nil {
				return err
			}
			res, err := c.FilterTransactions(commandContext(cmd), f)
			if err != nil {
				return err
			}
			return showPage(cmd, res)
		},
	}
	addViewFlags(filter)
	filter.Flags().String("bank", "", "bank name")
	filter.Flags().String("type", "", "CREDIT or DEBIT")
	filter.Flags().String("min", "", "minimum amount")
	filter.Flags().String("max", "", "maximum amount")
	filter.Flags().String("start", "", "start date YYYY-MM-DD")
	filter.Flags().String("end", "", "end date YYYY-MM-DD")
	filter.Flags().Int("page", 0, "page number")
	filter.Flags().Int("size", dto.DefaultPageSize, "page size")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			tx, err := c.GetTransaction(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		},
	}

	cmd.AddCommand(list, filter, show)
	return cmd
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("tab", "all", "all, income or expenses")
	cmd.Flags().String("from", "", "show from this date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "show up to and including this date (YYYY-MM-DD)")
	cmd.Flags().String("search", "", "search merchant, type and bank")
}

func viewFilter(cmd *cobra.Command) (txview.Filter, error) {
	var (
		f   txview.Filter
		err error
	)
	tab, _ := cmd.Flags().GetString("tab")
	if f.Tab, err = txview.ParseTab(tab); err != nil {
		return f, err
	}
	from, _ := cmd.Flags().GetString("from")
	if f.From, err = txview.ParseDay(from); err != nil {
		return f, err
	}
	to, _ := cmd.Flags().GetString("to")
	if f.To, err = txview.ParseDay(to); err != nil {
		return f, err
	}
	f.Search, _ = cmd.Flags().GetString("search")
	return f, nil
}

func advancedFilter(cmd *cobra.Command) (regexflowclient.TransactionFilter, error) {
	var f regexflowclient.TransactionFilter
	f.BankName, _ = cmd.Flags().GetString("bank")
	typ, _ := cmd.Flags().GetString("type")
	f.Type = models.TransactionType(typ)
	f.StartDate, _ = cmd.Flags().GetString("start")
	f.EndDate, _ = cmd.Flags().GetString("end")
	f.Page, _ = cmd.Flags().GetInt("page")
	f.Size, _ = cmd.Flags().GetInt("size")
	for _, b := range []struct {
		flag string
		dst  **decimal.Decimal
	}{{"min", &f.MinAmount}, {"max", &f.MaxAmount}} {
		raw, _ := cmd.Flags().GetString(b.flag)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, fmt.Errorf("--%s must be a number", b.flag)
		}
		*b.dst = &d
	}
	return f, nil
}

func showPage(cmd *cobra.Command, page dto.TransactionPage) error {
	f, err := viewFilter(cmd)
	if err != nil {
		return err
	}
	txs := txview.Apply(page.Content, f)
	out := cmd.OutOrStdout()
	printTransactions(out, txs)

	s := txview.Summarize(txs)
	fmt.Fprintf(out, "\nIncome %s  Expense %s  Saving %s\n", s.Income.StringFixed(2), s.Expense.StringFixed(2), s.Saving.StringFixed(2))
	fmt.Fprintf(out, "Page %d of %d (%d total)\n", page.Page+1, max(page.TotalPages, 1), page.TotalElements)
	return nil
}

func printTransactions(w io.Writer, txs []*models.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tBANK\tMERCHANT\tCATEGORY")
	for _, tx := range txs {
		sign := "-"
		if tx.Type == models.TxCredit {
			sign = "+"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%s\t%s\t%s\t%s\n",
			tx.Date, tx.Type, sign, decimal.NewFromFloat(tx.Amount).StringFixed(2), tx.BankName, tx.MerchantOrPayee, txview.Category(tx))
	}
	_ = tw.Flush()
}

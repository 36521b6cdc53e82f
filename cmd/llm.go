package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the recorded model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.FailedOnly, _ = cmd.Flags().GetBool("failed")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			opts.From = time.Now().Add(-since)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().QueryLLMEvents(ctx, opts)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No model calls recorded.")
			return nil
		}
		printEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

func printEvents(out io.Writer, events []store.LLMRequestEvent) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tPURPOSE\tMODEL\tIN\tOUT\tMS\tSTATUS")
	for _, e := range events {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, e.Timestamp.Local().Format(timeLayout), truncate(e.Purpose, 20), truncate(e.Model, 32),
			e.InputTokens, e.OutputTokens, e.LatencyMs, status)
	}
	tw.Flush()
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and answer of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("event id must be a number, got %q", args[0])
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		e, err := st.EventRepo().GetLLMEvent(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("no model call with id %d", id)
		}
		printEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

func printEvent(out io.Writer, e *store.LLMRequestEvent) {
	tw := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Call:\t#%d at %s\n", e.ID, e.Timestamp.Local().Format(timeLayout))
	fmt.Fprintf(tw, "Model:\t%s (%s)\n", e.Model, e.Provider)
	fmt.Fprintf(tw, "Purpose:\t%s\n", e.Purpose)
	fmt.Fprintf(tw, "Tokens:\t%d in, %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(tw, "Latency:\t%dms\n", e.LatencyMs)
	if e.Success {
		fmt.Fprintln(tw, "Status:\tok")
	} else {
		fmt.Fprintf(tw, "Status:\tfailed: %s\n", e.ErrorMessage)
	}
	tw.Flush()

	body := func(title, text string) {
		if text == "" {
			text = "(not captured)\n"
		}
		fmt.Fprintf(out, "\n== %s %s\n%s", title, strings.Repeat("=", 56-len(title)), text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(out)
		}
	}
	body("REQUEST", e.RequestBody)
	body("RESPONSE", e.ResponseBody)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		byPurpose, err := st.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return err
		}
		if len(byPurpose) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No model usage recorded yet.")
			return nil
		}
		byModel, err := st.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return err
		}

		printUsageByPurpose(cmd.OutOrStdout(), byPurpose)
		fmt.Fprintln(cmd.OutOrStdout())
		printCostByModel(cmd.OutOrStdout(), byModel)
		return nil
	},
}

func printUsageByPurpose(out io.Writer, usage []store.LLMUsage) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PURPOSE\tCALLS\tINPUT\tOUTPUT\tAVG MS\t")

	var total store.LLMUsage
	for _, u := range usage {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		total.Calls += u.Calls
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
	}
	fmt.Fprintf(tw, "total\t%d\t%d\t%d\t\t\n", total.Calls, total.InputTokens, total.OutputTokens)
	tw.Flush()
}

// printCostByModel prices each model's usage. Models missing from the
// price table show "?" and make the total a lower bound.
func printCostByModel(out io.Writer, usage []store.LLMUsage) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MODEL\tCALLS\tINPUT\tOUTPUT\tCOST (USD)\t")

	var sum float64
	var unpriced []string
	for _, u := range usage {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			sum += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n", truncate(u.Model, 40), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}

	total := formatCost(sum)
	if len(unpriced) > 0 {
		total = ">= " + total
	}
	fmt.Fprintf(tw, "total\t\t\t\t%s\t\n", total)
	tw.Flush()

	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nNo price known for: %s\n", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Maximum number of calls to show (0 for all)")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose, e.g. lesson-reading")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")
	llmListCmd.Flags().Duration("since", 0, "Only calls newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

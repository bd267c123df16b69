package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpggio/casedeck/internal/domain/batch"
	"github.com/rpggio/casedeck/internal/domain/testcase"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		ids       []string
		tcg       []string
		priority  string
		sectionID string
		moveTo    string
		doDelete  bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Apply one mutation to a set of selected test cases",
		Example: `  casectl batch --id r1 --id r2 --priority High
  casectl batch --id r1 --section "" --tcg TCG-12,TCG-13
  casectl batch --id r1 --move-to set-9
  casectl batch --id r1 --delete --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entities, err := a.load(ctx)
			if err != nil {
				return err
			}
			if err := a.connect(ctx); err != nil {
				return err
			}

			state := a.newState(entities)
			state.Select(ids...)

			mut := batch.Mutation{Delete: doDelete}
			if len(tcg) > 0 {
				refs := splitTokens(tcg)
				mut.TCGRefs = &refs
			}
			if cmd.Flags().Changed("priority") {
				p := testcase.Priority(priority)
				if !p.Valid() {
					return fmt.Errorf("invalid priority %q", priority)
				}
				mut.Priority = &p
			}
			if cmd.Flags().Changed("section") {
				mut.SectionID = &sectionID
			}
			if cmd.Flags().Changed("move-to") {
				mut.TargetContainerID = &moveTo
			}

			confirmer := &promptConfirmer{
				in:        cmd.InOrStdin(),
				out:       cmd.OutOrStdout(),
				assumeYes: a.assumeYes,
			}
			report, err := a.batchService(confirmer).Apply(ctx, state, mut)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if report.State == batch.StateFailed {
				return fmt.Errorf("no field group was applied")
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&ids, "id", nil, "record id to include (repeatable)")
	cmd.Flags().StringSliceVar(&tcg, "tcg", nil, "replace TCG references")
	cmd.Flags().StringVar(&priority, "priority", "", "set priority (High/Medium/Low)")
	cmd.Flags().StringVar(&sectionID, "section", "", "move to section id (empty unassigns)")
	cmd.Flags().StringVar(&moveTo, "move-to", "", "move to another test case set")
	cmd.Flags().BoolVar(&doDelete, "delete", false, "delete the selected test cases")
	return cmd
}

func printReport(out io.Writer, report *batch.Report) {
	for _, result := range report.Results {
		if result.OK() {
			fmt.Fprintf(out, "%s: ok (%d/%d)\n", result.Group,
				result.Response.SuccessCount, result.Response.ProcessedCount)
			continue
		}
		if result.Err != nil {
			fmt.Fprintf(out, "%s: failed: %v\n", result.Group, result.Err)
			continue
		}
		fmt.Fprintf(out, "%s: rejected: %s\n", result.Group,
			strings.Join(result.Response.ErrorMessages, "; "))
	}
}

func splitTokens(values []string) []string {
	var out []string
	for _, v := range values {
		for _, token := range strings.Split(v, ",") {
			if token = strings.TrimSpace(token); token != "" {
				out = append(out, token)
			}
		}
	}
	return out
}

// promptConfirmer answers impact confirmations on the terminal.
type promptConfirmer struct {
	in        io.Reader
	out       io.Writer
	assumeYes bool
}

func (c *promptConfirmer) Confirm(ctx context.Context, summary string) (bool, error) {
	fmt.Fprintln(c.out, summary)
	if c.assumeYes {
		fmt.Fprintln(c.out, "confirmed (--yes)")
		return true, nil
	}
	fmt.Fprint(c.out, "[y/N] ")
	reader := bufio.NewReader(c.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpggio/casedeck/internal/domain/section"
	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/listview"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the team's test cases and refresh the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			entities, err := a.client.List(ctx, a.team, a.container)
			if err != nil {
				return err
			}
			a.manager.Set(a.team, entities)
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d test case(s) for team %s\n", len(entities), a.team)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		query       string
		text        string
		tcg         string
		priority    string
		sortField   string
		sortDesc    bool
		saveFilters bool
		showHidden  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the grouped, filtered test case list",
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			state := a.newState(entities)

			if cmd.Flags().Changed("query") || cmd.Flags().Changed("text") ||
				cmd.Flags().Changed("tcg") || cmd.Flags().Changed("priority") {
				state.Filters = testcase.FilterState{
					Query:    query,
					Text:     text,
					TCG:      tcg,
					Priority: testcase.Priority(priority),
				}
				if saveFilters {
					a.manager.SaveFilters(a.team, state.Filters)
				}
			}
			order := testcase.Ascending
			if sortDesc {
				order = testcase.Descending
			}
			state.Sort = testcase.SortState{Field: testcase.SortField(sortField), Order: order}

			tree := sectionTree(entities)
			rows := listview.NewBuilder(a.logger).Build(state, entities, tree)
			printRows(cmd, rows, showHidden)
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "match number or TCG token")
	cmd.Flags().StringVar(&text, "text", "", "match title or body text")
	cmd.Flags().StringVar(&tcg, "tcg", "", "match TCG tokens only")
	cmd.Flags().StringVar(&priority, "priority", "", "exact priority (High/Medium/Low)")
	cmd.Flags().StringVar(&sortField, "sort", string(testcase.SortByNumber), "sort field (number|title|tcg|priority|created|updated)")
	cmd.Flags().BoolVar(&sortDesc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&saveFilters, "save-filters", false, "persist the given filters for this team")
	cmd.Flags().BoolVar(&showHidden, "all", false, "include rows hidden by collapse state")
	return cmd
}

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop the team's cached list, lookaside entries and filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.manager.Invalidate(a.team)
			a.manager.ClearFilters(a.team)
			fmt.Fprintf(cmd.OutOrStdout(), "cache cleared for team %s\n", a.team)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the team's list cache is fresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			entities := a.manager.Get(a.team)
			if entities == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "team %s: cache miss (empty or expired)\n", a.team)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "team %s: %d test case(s) cached\n", a.team, len(entities))
			return nil
		},
	})
	return cmd
}

// sectionTree derives a flat tree from the section ids present in the
// data. The CLI has no section metadata endpoint; names fall back to
// the ids and the grouper fills in the rest.
func sectionTree(entities []testcase.Entity) *section.Tree {
	seen := make(map[string]bool)
	var nodes []section.Node
	for _, e := range entities {
		if e.SectionID == nil || seen[*e.SectionID] {
			continue
		}
		seen[*e.SectionID] = true
		nodes = append(nodes, section.Node{ID: *e.SectionID, Name: *e.SectionID})
	}
	return section.NewTree(nodes)
}

func printRows(cmd *cobra.Command, rows []listview.Row, showHidden bool) {
	out := cmd.OutOrStdout()
	for _, r := range rows {
		if !r.Visible && !showHidden {
			continue
		}
		indent := strings.Repeat("  ", r.Level-1)
		if r.Kind == listview.RowGroup {
			fmt.Fprintf(out, "%s[%s] (%d)\n", indent, r.Group.Name, len(r.Group.Entities))
			continue
		}
		line := fmt.Sprintf("%s%s  %s", indent, r.Entity.Number, r.Entity.Title)
		if r.Entity.Priority != "" {
			line += fmt.Sprintf("  (%s)", r.Entity.Priority)
		}
		fmt.Fprintln(out, line)
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpggio/casedeck/internal/domain/testcase"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		number   string
		title    string
		priority string
		section  string
		tcg      []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a test case, rejecting duplicate numbers before any network call",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			existing, err := a.load(ctx)
			if err != nil {
				return err
			}

			entity := testcase.Entity{
				// Provisional id; the server's assignment wins on Create.
				RecordID:  uuid.NewString(),
				Number:    number,
				Title:     title,
				Priority:  testcase.Priority(priority),
				TCGRefs:   splitTokens(tcg),
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if section != "" {
				entity.SectionID = &section
			}
			if err := testcase.ValidateNew(entity, existing); err != nil {
				return err
			}

			if err := a.connect(ctx); err != nil {
				return err
			}
			created, err := a.client.Create(ctx, a.team, &entity)
			if err != nil {
				return err
			}

			a.manager.Set(a.team, append(existing, *created))
			a.manager.Broadcast(a.team, *created, nil)
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", created.Number, created.RecordID)
			return nil
		},
	}
	cmd.Flags().StringVar(&number, "number", "", "unique test case number (required)")
	cmd.Flags().StringVar(&title, "title", "", "title (required)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (High/Medium/Low)")
	cmd.Flags().StringVar(&section, "section", "", "section id")
	cmd.Flags().StringSliceVar(&tcg, "tcg", nil, "TCG reference tokens")
	return cmd
}

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"
)

func newSummaryCommand(a *app) *cobra.Command {
	var month string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show monthly cost, rebate income and net",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.ledger.Snapshot()
			asOf := s.CurrentDate
			if month != "" {
				if !ledger.ValidMonth(month) {
					return fmt.Errorf("invalid month %q, want YYYY-MM", month)
				}
				asOf = month
			}
			out := cmd.OutOrStdout()

			if pretty {
				rendered, err := renderMarkdown(summaryMarkdown(s, asOf))
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, rendered)
				return err
			}

			fmt.Fprintf(out, "月份: %s\n", asOf)
			writeTotals(out, ledger.ComputeTotals(s, asOf))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "evaluate at this month instead of the ledger's (YYYY-MM)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "render a formatted report")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cards and items with their ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeList(cmd.OutOrStdout(), a.ledger.Snapshot())
		},
	}
}

func newPresetsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in and saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\t名称\t月支\t会员卖出\t时长")
			for _, p := range ledger.AllPresets(a.ledger.Snapshot()) {
				dur := strconv.FormatFloat(p.Duration, 'g', -1, 64)
				if p.Duration == ledger.Unlimited {
					dur = "长期"
				}
				fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\n", p.ID, p.Name, p.Cost, p.Vip, dur)
			}
			return tw.Flush()
		},
	}
}

func newCardCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Add, remove and rename cards",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add",
		Short: "Add a main card with a default plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.ledger.AddMainCard()
			c := s.Cards[len(s.Cards)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", c.ID, c.Name)
			return nil
		},
	})

	var subID string
	rm := &cobra.Command{
		Use:   "rm <mainID>",
		Short: "Remove a main card, or one of its sub-cards with --sub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if subID != "" {
				a.ledger.DeleteCard(ledger.ScopeSub, args[0], subID)
			} else {
				a.ledger.DeleteCard(ledger.ScopeMain, args[0], "")
			}
			return nil
		},
	}
	rm.Flags().StringVar(&subID, "sub", "", "sub-card id under mainID")
	cmd.AddCommand(rm)

	var isSub bool
	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.ledger.RenameCard(args[0], isSub, args[1])
			return nil
		},
	}
	rename.Flags().BoolVar(&isSub, "sub", false, "id is a sub-card")
	cmd.AddCommand(rename)

	cmd.AddCommand(&cobra.Command{
		Use:   "add-sub <mainID>",
		Short: fmt.Sprintf("Add a sub-card (at most %d per main card)", ledger.MaxSubCards),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			before := a.ledger.Snapshot()
			after := a.ledger.AddSubCard(args[0])
			if countSubCards(after) == countSubCards(before) {
				return fmt.Errorf("no sub-card added: unknown card %s or already %d sub-cards", args[0], ledger.MaxSubCards)
			}
			return nil
		},
	})

	return cmd
}

func countSubCards(s ledger.Snapshot) int {
	n := 0
	for _, c := range s.Cards {
		n += len(c.SubCards)
	}
	return n
}

func newItemCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Add, remove and edit items",
	}

	var subOf string
	add := &cobra.Command{
		Use:   "add <parentID>",
		Short: "Add an item to a main card, or to a sub-card with --sub-of",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.ledger.AddItem(args[0], subOf != "", subOf)
			return nil
		},
	}
	add.Flags().StringVar(&subOf, "sub-of", "", "main card id when parentID is a sub-card")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <itemID>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.ledger.DeleteItem(args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <itemID> <field> <value>",
		Short: "Edit an item field (title, subtitle, startMonth, duration, cost, vipPrice)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := parseField(args[1])
			if err != nil {
				return err
			}
			if _, ok := a.ledger.Snapshot().FindItem(args[0]); !ok {
				return fmt.Errorf("unknown item %s", args[0])
			}
			a.ledger.UpdateItem(args[0], field, args[2])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "apply <itemID> <presetID>",
		Short: "Copy a preset onto an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := ledger.FindPreset(args[1], ledger.AllPresets(a.ledger.Snapshot())); !ok {
				return fmt.Errorf("unknown preset %s", args[1])
			}
			a.ledger.ApplyPreset(args[0], args[1], nil)
			return nil
		},
	})

	return cmd
}

func parseField(name string) (ledger.Field, error) {
	switch f := ledger.Field(name); f {
	case ledger.FieldTitle, ledger.FieldSubtitle, ledger.FieldStartMonth,
		ledger.FieldDuration, ledger.FieldCost, ledger.FieldVipPrice:
		return f, nil
	}
	return "", fmt.Errorf("unknown field %q", name)
}

func newPresetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved presets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "save <name> <title> <cost> <vip> <duration>",
		Short: "Save a custom preset",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("cost: %w", err)
			}
			vip, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("vip: %w", err)
			}
			dur, err := strconv.ParseFloat(args[4], 64)
			if err != nil {
				return fmt.Errorf("duration: %w", err)
			}
			s := a.ledger.AddCustomPreset(ledger.Preset{Name: args[0], Title: args[1], Cost: cost, Vip: vip, Duration: dur})
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", s.CustomPresets[len(s.CustomPresets)-1].ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a custom preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.ledger.DeleteCustomPreset(args[0])
			return nil
		},
	})

	return cmd
}

func newMonthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "month <YYYY-MM>",
		Short: "Set the ledger's current month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ledger.ValidMonth(args[0]) {
				return fmt.Errorf("invalid month %q, want YYYY-MM", args[0])
			}
			a.ledger.SetCurrentDate(args[0])
			return nil
		},
	}
}

func newVipCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vip <price>",
		Short: "Set the default rebate for new items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.ledger.SetGlobalVipPrice(args[0])
			return nil
		},
	}
}

func newResetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the ledger and restore defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.ledger.ResetData()
			return nil
		},
	}
}

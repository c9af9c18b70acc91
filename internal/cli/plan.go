package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/editor"
	"github.com/kirinyoku/seatplan/internal/geometry"
	"github.com/kirinyoku/seatplan/internal/planner"
)

// errNotConfirmed makes the process exit non-zero after the affected
// guests were listed.
var errNotConfirmed = errors.New("not applied: confirmation required")

func (c *CLI) planCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Edit the local floor plan",
	}

	cmd.AddCommand(c.planInitCommand())
	cmd.AddCommand(c.planShowCommand())
	cmd.AddCommand(c.planTablesCommand())
	cmd.AddCommand(c.planModeCommand())
	cmd.AddCommand(c.tableCommand())
	cmd.AddCommand(c.guestCommand())
	cmd.AddCommand(c.chairCommand())
	cmd.AddCommand(c.planShareCommand())
	cmd.AddCommand(c.planFetchCommand())

	return cmd
}

// withSession opens the plan, runs fn and reports confirmation and
// placement errors in a readable form.
func (c *CLI) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *editor.Session) error) error {
	ctx := cmd.Context()
	s, _, err := c.openSession(ctx)
	if err != nil {
		return err
	}

	err = fn(ctx, s)
	if ce, ok := planner.NeedsConfirmation(err); ok {
		printConfirmation(cmd.ErrOrStderr(), ce, s.Guests())
		return errNotConfirmed
	}
	var pe planner.PlacementError
	if errors.As(err, &pe) {
		printPlacement(cmd.ErrOrStderr(), pe)
	}
	return err
}

func (c *CLI) planInitCommand() *cobra.Command {
	var (
		tables int
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Replace the plan with the default layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				e := planner.New(nil)
				e.CreateDefaultLayout(tables, domain.ParseMode(mode))
				if err := s.Load(ctx, e.Snapshot()); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "default layout with %d tables", len(s.Tables()))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&tables, "tables", planner.DefaultTableCount, "number of tables (4-16)")
	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeLess), "seating mode: less or more")
	return cmd
}

func (c *CLI) planShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print tables, guests and seat counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			renderPlan(cmd.OutOrStdout(), s.Mode(), s.Tables(), s.Guests(), s.Summary())
			return nil
		},
	}
}

func (c *CLI) planTablesCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "tables N",
		Short: "Set the number of tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid table count %q", args[0])
			}
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				if err := s.SetTableCount(ctx, n, yes); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "%d tables", len(s.Tables()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "unseat guests of removed tables")
	return cmd
}

func (c *CLI) planModeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "mode less|more",
		Short:     "Set the seating mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ModeLess), string(domain.ModeMore)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				if err := s.SetMode(ctx, domain.ParseMode(args[0])); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "mode %s, %d seats", s.Mode(), s.Summary().TotalSeats)
				return nil
			})
		},
	}
}

func (c *CLI) planShareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Save the plan on the server and print its link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			id, url, err := s.Share(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "shared as %s", styleNumber.Render(id))
			fmt.Fprintln(cmd.OutOrStdout(), styleLink.Render(url))
			return nil
		},
	}
}

func (c *CLI) planFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch ID",
		Short: "Replace the local plan with a shared one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.planID = args[0]
			s, _, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if s.Source() != editor.SourceRemote {
				return fmt.Errorf("plan %s could not be loaded from the server", args[0])
			}
			// Open does not write; store the fetched plan as the local copy.
			if err := s.Load(cmd.Context(), s.Snapshot()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "fetched plan %s with %d tables", args[0], len(s.Tables()))
			return nil
		},
	}
}

// =============================================================================
// Tables
// =============================================================================

func (c *CLI) tableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Add, edit, move or delete tables",
	}

	cmd.AddCommand(c.tableAddCommand())
	cmd.AddCommand(c.tableSetCommand())
	cmd.AddCommand(c.tableMoveCommand())
	cmd.AddCommand(c.tableDeleteCommand())
	return cmd
}

func (c *CLI) tableAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Add a table at the next free spot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				tb, err := s.AddTable(ctx)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "added %s at %.2f, %.2f", tb.ID, tb.X, tb.Y)
				return nil
			})
		},
	}
}

func (c *CLI) tableSetCommand() *cobra.Command {
	var (
		rotation    float64
		head        bool
		seats       int
		description string
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "set ID",
		Short: "Change rotation, head flag, head seats or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u planner.TableUpdate
			flags := cmd.Flags()
			if flags.Changed("rotation") {
				u.Rotation = &rotation
			}
			if flags.Changed("head") {
				u.IsHead = &head
			}
			if flags.Changed("seats") {
				u.HeadSeatCount = &seats
			}
			if flags.Changed("description") {
				u.Description = &description
			}

			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				tb, err := s.UpdateTable(ctx, args[0], u, yes)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "%s: %d seats", tb.Label(), len(tb.Chairs))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&rotation, "rotation", 0, "rotation in degrees (0 or 90)")
	cmd.Flags().BoolVar(&head, "head", false, "mark as head table")
	cmd.Flags().IntVar(&seats, "seats", 0, "head table seat count (2-4)")
	cmd.Flags().StringVar(&description, "description", "", "table description")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "unseat guests of removed seats")
	return cmd
}

func (c *CLI) tableMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move ID X Y",
		Short: "Drag a table so its centre lands near X, Y",
		Long:  `Drag a table the way the planner page does: the move snaps to 25 cm, is validated against the hall, pillars and other tables, and joins neighbouring tables it ends up next to.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, errX := strconv.ParseFloat(args[1], 64)
			y, errY := strconv.ParseFloat(args[2], 64)
			if errX != nil || errY != nil {
				return fmt.Errorf("invalid position %s, %s", args[1], args[2])
			}

			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				tb, err := findTable(s, args[0])
				if err != nil {
					return err
				}
				if err := s.BeginDrag([]string{tb.ID}, geometry.Point{X: tb.X, Y: tb.Y}); err != nil {
					return err
				}
				v, err := s.UpdateDrag(geometry.Point{X: x, Y: y})
				if err != nil {
					_ = s.CancelDrag()
					return err
				}
				if !v.Valid {
					_ = s.CancelDrag()
					return v.Err()
				}
				if err := s.CommitDrag(ctx); err != nil {
					return err
				}

				moved, _ := findTable(s, tb.ID)
				printSuccess(cmd.OutOrStdout(), "%s at %.2f, %.2f", moved.ID, moved.X, moved.Y)
				return nil
			})
		},
	}
}

func (c *CLI) tableDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				if err := s.DeleteTable(ctx, args[0], yes); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "deleted %s, %d tables left", args[0], len(s.Tables()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "unseat the table's guests")
	return cmd
}

func findTable(s *editor.Session, id string) (domain.Table, error) {
	for _, tb := range s.Tables() {
		if tb.ID == id {
			return tb, nil
		}
	}
	return domain.Table{}, fmt.Errorf("%w: %s", planner.ErrTableNotFound, id)
}

// =============================================================================
// Guests and chairs
// =============================================================================

func (c *CLI) guestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Manage the guest list and seating",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a guest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				g, err := s.AddGuest(ctx, args[0])
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "added %s (%s)", g.Name, g.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove ID",
		Short: "Remove a guest and free their chair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				if err := s.RemoveGuest(ctx, args[0]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "removed %s", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "assign GUEST CHAIR",
		Short: "Seat a guest by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				if err := s.AssignGuest(ctx, args[0], args[1]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "%s seated at %s", args[0], args[1])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seat NAME CHAIR",
		Short: "Seat a guest by name, adding them if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				g, err := s.AssignGuestByName(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if g.ID == "" {
					printSuccess(cmd.OutOrStdout(), "%s cleared", args[1])
					return nil
				}
				printSuccess(cmd.OutOrStdout(), "%s seated at %s", g.Name, args[1])
				return nil
			})
		},
	})

	return cmd
}

func (c *CLI) chairCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chair",
		Short: "Chair operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear CHAIR",
		Short: "Unseat whoever sits on a chair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s *editor.Session) error {
				if err := s.ClearChair(ctx, args[0]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "%s cleared", args[0])
				return nil
			})
		},
	})

	return cmd
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rushteam/upsell/assistant"
	"github.com/rushteam/upsell/catalog"
	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/recommend"
)

type chatOptions struct {
	catalogFile string
	bookingID   string
	step        string
}

func newChatCmd(root *rootOptions) *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive upgrade conversation for a booking",
		Long: `chat reads customer messages from stdin, one per line.
Commands: /step vehicle|protection|addons switches the step, /reset forgets the profile, /quit exits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var cat core.Catalog
			if opts.catalogFile != "" {
				s, err := catalog.LoadSnapshot(opts.catalogFile)
				if err != nil {
					return err
				}
				cat = s
			} else {
				if opts.bookingID == "" {
					return fmt.Errorf("either --catalog or --booking is required")
				}
				cat = catalog.NewHTTPClient(root.cfg.Catalog.BaseURL, root.cfg.Catalog.Timeout)
			}

			a, err := newApp(ctx, root.cfg, cat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			session := opts.bookingID
			if session == "" {
				session = uuid.NewString()
			}
			c := &chatLoop{
				engine:  a.engine,
				session: session,
				booking: opts.bookingID,
				step:    assistant.ParseStep(opts.step),
				out:     cmd.OutOrStdout(),
			}
			return c.run(cmd, cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&opts.catalogFile, "catalog", "", "catalog snapshot JSON file")
	cmd.Flags().StringVar(&opts.bookingID, "booking", "", "booking id")
	cmd.Flags().StringVar(&opts.step, "step", string(assistant.StepVehicle), "initial step: vehicle, protection or addons")
	return cmd
}

type chatLoop struct {
	engine  *assistant.Engine
	session string
	booking string
	step    assistant.Step
	out     io.Writer
}

func (c *chatLoop) run(cmd *cobra.Command, in io.Reader) error {
	ctx := cmd.Context()
	fmt.Fprintf(c.out, "session %s, step %s\n", c.session, c.step)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(c.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case strings.HasPrefix(line, "/step"):
			c.step = assistant.ParseStep(strings.TrimSpace(strings.TrimPrefix(line, "/step")))
			fmt.Fprintf(c.out, "step %s\n", c.step)
			continue
		case line == "/reset":
			if err := c.engine.Reset(ctx, c.session); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "profile cleared")
			continue
		}

		res, err := c.engine.Turn(ctx, assistant.TurnRequest{
			SessionID: c.session,
			BookingID: c.booking,
			Message:   line,
			Step:      string(c.step),
		})
		if err != nil {
			return err
		}
		c.print(res)
	}
}

func (c *chatLoop) print(res *assistant.TurnResult) {
	fmt.Fprintln(c.out, res.Answer)
	switch res.Step {
	case assistant.StepProtection:
		if len(res.Protections) > 0 {
			fmt.Fprintln(c.out, recommend.SummarizeRecommendations(res.Protections))
		}
	case assistant.StepAddons:
		if len(res.Addons) > 0 {
			fmt.Fprintln(c.out, recommend.SummarizeRecommendations(res.Addons))
		}
	default:
		for i, card := range res.Cars {
			fmt.Fprintf(c.out, "  %d. %s\n", i+1, card.Reason)
		}
	}
}

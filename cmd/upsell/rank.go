package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/upsell/assistant"
	"github.com/rushteam/upsell/catalog"
	"github.com/rushteam/upsell/core"
)

type rankOptions struct {
	catalogFile string
	bookingID   string
	message     string
	k           int
	useLLM      bool
}

func newRankCmd(root *rootOptions) *cobra.Command {
	opts := &rankOptions{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank upgrade deals for one customer message",
		Example: `  upsell rank --catalog snapshot.json --message "we are 5 people with lots of luggage"
  upsell rank --booking 1234 --message "business trip" --llm`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.catalogFile == "" && opts.bookingID == "" {
				return fmt.Errorf("either --catalog or --booking is required")
			}
			ctx := cmd.Context()

			var cat core.Catalog
			if opts.catalogFile != "" {
				s, err := catalog.LoadSnapshot(opts.catalogFile)
				if err != nil {
					return err
				}
				cat = s
			} else {
				cat = catalog.NewHTTPClient(root.cfg.Catalog.BaseURL, root.cfg.Catalog.Timeout)
			}

			a, err := newApp(ctx, root.cfg, cat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			deals, err := cat.Deals(ctx, opts.bookingID)
			if err != nil {
				return err
			}
			k := opts.k
			if k <= 0 {
				k = root.cfg.Ranking.K
			}
			session := opts.bookingID
			if session == "" {
				session = "offline"
			}
			res, err := a.engine.UpdateAndRank(ctx, assistant.UpdateRequest{
				SessionID: session,
				Utterance: opts.message,
				Deals:     deals,
				K:         k,
				UseLLM:    opts.useLLM || root.cfg.Ranking.UseLLM,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(struct {
				Cars    any           `json:"cars"`
				Profile *core.Profile `json:"profile"`
			}{res.Cards, res.Profile}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.catalogFile, "catalog", "", "catalog snapshot JSON file")
	cmd.Flags().StringVar(&opts.bookingID, "booking", "", "booking id (fetched from the catalog service when --catalog is empty)")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "customer message")
	cmd.Flags().IntVarP(&opts.k, "k", "k", 0, "number of deals to return (default from config)")
	cmd.Flags().BoolVar(&opts.useLLM, "llm", false, "allow LLM reranking")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newContextCmd(opts *cliOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show the network context document",
		RunE: func(c *cobra.Command, _ []string) error {
			client := opts.client()
			if refresh {
				if err := client.InvalidateContext(c.Context()); err != nil {
					return err
				}
			}
			doc, err := client.Context(c.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(doc)
			}
			fmt.Printf("fingerprint=%s\n", doc.Fingerprint())
			fmt.Printf("main_site=%d total_sites=%d sampled=%d\n",
				doc.Network.MainSiteID, doc.Network.TotalSites, len(doc.Network.Sites))
			for _, site := range doc.Network.Sites {
				fmt.Printf("%d\t%s\t%s\n", site.ID, site.Name, site.URL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "invalidate the cached document before reading")
	return cmd
}

func newAskCmd(opts *cliOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask the assistant with injected site context",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			answer, err := opts.client().Ask(c.Context(), args[0], dryRun)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(answer)
			}
			if answer.DryRun {
				fmt.Printf("dry run: %d composed messages\n", len(answer.Request))
				for _, msg := range answer.Request {
					fmt.Printf("--- %s\n%s\n", msg.Role, msg.Content)
				}
				return nil
			}
			fmt.Println(answer.Reply)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compose the request without calling the model")
	return cmd
}

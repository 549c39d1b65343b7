package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newSitesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List and manage sites",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all sites",
		RunE: func(c *cobra.Command, _ []string) error {
			sites, err := opts.client().Sites(c.Context())
			if err != nil {
				return err
			}
			return printSites(sites, opts.jsonOutput)
		},
	}

	var name, url string
	var public bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a site",
		RunE: func(c *cobra.Command, _ []string) error {
			site, err := opts.client().CreateSite(c.Context(), map[string]any{
				"name":   name,
				"url":    url,
				"public": public,
			})
			if err != nil {
				return err
			}
			return writeJSON(site)
		},
	}
	create.Flags().StringVar(&name, "name", "", "site name")
	create.Flags().StringVar(&url, "url", "", "site URL")
	create.Flags().BoolVar(&public, "public", true, "site is public")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("url")

	remove := &cobra.Command{
		Use:   "delete <site-id>",
		Short: "Mark a site deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			return opts.client().DeleteSite(c.Context(), id)
		},
	}

	var optionSite int64
	option := &cobra.Command{
		Use:   "option <key> <value>",
		Short: "Set a site option",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return opts.client().SetSiteOption(c.Context(), optionSite, args[0], args[1])
		},
	}
	option.Flags().Int64Var(&optionSite, "site", 1, "site id")

	cmd.AddCommand(list, create, remove, option)
	return cmd
}

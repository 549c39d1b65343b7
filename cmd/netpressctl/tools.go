package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"netpress/internal/domain"
)

func newToolsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List and invoke agent tools",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered tools with the registry ETag",
		RunE: func(c *cobra.Command, _ []string) error {
			tools, err := opts.client().Tools(c.Context())
			if err != nil {
				return err
			}
			return printToolList(tools, opts.jsonOutput)
		},
	}

	var args []string
	var paramsJSON string
	call := &cobra.Command{
		Use:   "call <name>",
		Short: "Invoke a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, posArgs []string) error {
			params, err := buildToolParams(paramsJSON, args)
			if err != nil {
				return err
			}
			if _, ok := params["job_id"]; !ok {
				params["job_id"] = opts.effectiveJobID()
			}
			result, err := opts.client().InvokeTool(c.Context(), posArgs[0], params)
			if err != nil {
				return err
			}
			return printToolResult(result, opts.jsonOutput)
		},
	}
	call.Flags().StringArrayVar(&args, "arg", nil, "tool argument as key=value (repeatable; value parsed as JSON when possible)")
	call.Flags().StringVar(&paramsJSON, "params-json", "", "tool arguments as a JSON object")

	cmd.AddCommand(list, call)
	return cmd
}

// buildToolParams merges --params-json with --arg pairs; pairs win. Values
// parse as JSON first so booleans, numbers, and arrays come through typed.
func buildToolParams(paramsJSON string, pairs []string) (domain.Params, error) {
	params := domain.Params{}
	if strings.TrimSpace(paramsJSON) != "" {
		if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
			return nil, fmt.Errorf("parse --params-json: %w", err)
		}
	}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --arg %q (want key=value)", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		params[strings.TrimSpace(key)] = value
	}
	return params, nil
}

func newSearchCmd(opts *cliOptions) *cobra.Command {
	var siteIDs []int64
	var postTypes []string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search posts across the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			params := domain.Params{"query": args[0], "job_id": opts.effectiveJobID()}
			if len(siteIDs) > 0 {
				ids := make([]any, 0, len(siteIDs))
				for _, id := range siteIDs {
					ids = append(ids, id)
				}
				params["site_ids"] = ids
			}
			if len(postTypes) > 0 {
				params["post_types"] = postTypes
			}
			if limit > 0 {
				params["per_site_limit"] = limit
			}
			result, err := opts.client().InvokeTool(c.Context(), "search_posts", params)
			if err != nil {
				return err
			}
			return printToolResult(result, opts.jsonOutput)
		},
	}
	cmd.Flags().Int64SliceVar(&siteIDs, "site-id", nil, "restrict to site id (repeatable)")
	cmd.Flags().StringSliceVar(&postTypes, "post-type", nil, "restrict to post type (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "per-site result limit")
	return cmd
}

func newReadCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <url>",
		Short: "Read a post by its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			result, err := opts.client().InvokeTool(c.Context(), "read_post", domain.Params{
				"url":    args[0],
				"job_id": opts.effectiveJobID(),
			})
			if err != nil {
				return err
			}
			return printToolResult(result, opts.jsonOutput)
		},
	}
}

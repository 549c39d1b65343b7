package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newPostsCmd(opts *cliOptions) *cobra.Command {
	var siteID int64

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List and manage a site's posts",
	}
	cmd.PersistentFlags().Int64Var(&siteID, "site", 1, "site id")

	list := &cobra.Command{
		Use:   "list",
		Short: "List a site's posts",
		RunE: func(c *cobra.Command, _ []string) error {
			posts, err := opts.client().Posts(c.Context(), siteID)
			if err != nil {
				return err
			}
			return printPosts(posts, opts.jsonOutput)
		},
	}

	var title, url, content, status, postType, author string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		RunE: func(c *cobra.Command, _ []string) error {
			payload := map[string]any{
				"title": title,
				"url":   url,
			}
			if content != "" {
				payload["content"] = content
			}
			if status != "" {
				payload["status"] = status
			}
			if postType != "" {
				payload["type"] = postType
			}
			if author != "" {
				payload["author"] = author
			}
			post, err := opts.client().CreatePost(c.Context(), siteID, payload)
			if err != nil {
				return err
			}
			return writeJSON(post)
		},
	}
	create.Flags().StringVar(&title, "title", "", "post title")
	create.Flags().StringVar(&url, "url", "", "post permalink")
	create.Flags().StringVar(&content, "content", "", "post HTML content")
	create.Flags().StringVar(&status, "status", "", "post status (defaults to publish)")
	create.Flags().StringVar(&postType, "type", "", "post type (defaults to post)")
	create.Flags().StringVar(&author, "author", "", "post author")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("url")

	remove := &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			return opts.client().DeletePost(c.Context(), siteID, id)
		},
	}

	var termIDs []int64
	setTerms := &cobra.Command{
		Use:   "set-terms <post-id>",
		Short: "Replace a post's term assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			return opts.client().SetPostTerms(c.Context(), siteID, id, termIDs)
		},
	}
	setTerms.Flags().Int64SliceVar(&termIDs, "term", nil, "term id (repeatable)")

	cmd.AddCommand(list, create, remove, setTerms)
	return cmd
}

func newTermsCmd(opts *cliOptions) *cobra.Command {
	var siteID int64
	var taxonomy string

	cmd := &cobra.Command{
		Use:   "terms",
		Short: "List and manage a site's taxonomy terms",
	}
	cmd.PersistentFlags().Int64Var(&siteID, "site", 1, "site id")

	list := &cobra.Command{
		Use:   "list",
		Short: "List a site's terms",
		RunE: func(c *cobra.Command, _ []string) error {
			terms, err := opts.client().Terms(c.Context(), siteID, taxonomy)
			if err != nil {
				return err
			}
			return printTerms(terms, opts.jsonOutput)
		},
	}
	list.Flags().StringVar(&taxonomy, "taxonomy", "", "filter by taxonomy")

	var name, slug string
	var createTaxonomy string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a term",
		RunE: func(c *cobra.Command, _ []string) error {
			term, err := opts.client().CreateTerm(c.Context(), siteID, createTaxonomy, name, slug)
			if err != nil {
				return err
			}
			return writeJSON(term)
		},
	}
	create.Flags().StringVar(&createTaxonomy, "taxonomy", "category", "taxonomy name")
	create.Flags().StringVar(&name, "name", "", "term name")
	create.Flags().StringVar(&slug, "slug", "", "term slug (derived from name when empty)")
	_ = create.MarkFlagRequired("name")

	remove := &cobra.Command{
		Use:   "delete <term-id>",
		Short: "Delete a term",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			return opts.client().DeleteTerm(c.Context(), siteID, id)
		},
	}

	cmd.AddCommand(list, create, remove)
	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"netpress/internal/infra/adminapi"
)

// seedFile is a declarative content fixture: sites with their options,
// terms, and posts. YAML and TOML are both accepted, keyed by extension.
type seedFile struct {
	Sites []seedSite `yaml:"sites" toml:"sites"`
}

type seedSite struct {
	Name    string            `yaml:"name" toml:"name"`
	URL     string            `yaml:"url" toml:"url"`
	Public  *bool             `yaml:"public" toml:"public"`
	Options map[string]string `yaml:"options" toml:"options"`
	Terms   []seedTerm        `yaml:"terms" toml:"terms"`
	Posts   []seedPost        `yaml:"posts" toml:"posts"`
}

type seedTerm struct {
	Taxonomy string `yaml:"taxonomy" toml:"taxonomy"`
	Name     string `yaml:"name" toml:"name"`
	Slug     string `yaml:"slug" toml:"slug"`
}

type seedPost struct {
	Title   string   `yaml:"title" toml:"title"`
	URL     string   `yaml:"url" toml:"url"`
	Content string   `yaml:"content" toml:"content"`
	Excerpt string   `yaml:"excerpt" toml:"excerpt"`
	Type    string   `yaml:"type" toml:"type"`
	Status  string   `yaml:"status" toml:"status"`
	Author  string   `yaml:"author" toml:"author"`
	Terms   []string `yaml:"terms" toml:"terms"`
}

func parseSeedFile(path string) (seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, err
	}

	var seed seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &seed)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &seed)
	default:
		return seedFile{}, fmt.Errorf("unsupported seed format %q (want .yaml or .toml)", filepath.Ext(path))
	}
	if err != nil {
		return seedFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(seed.Sites) == 0 {
		return seedFile{}, fmt.Errorf("%s defines no sites", path)
	}
	return seed, nil
}

func newSeedCmd(opts *cliOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create sites, terms, and posts from a fixture file",
		RunE: func(c *cobra.Command, _ []string) error {
			seed, err := parseSeedFile(file)
			if err != nil {
				return err
			}
			return applySeed(c.Context(), opts.client(), seed)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "fixture file (.yaml or .toml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func applySeed(ctx context.Context, client *adminapi.Client, seed seedFile) error {
	for _, s := range seed.Sites {
		public := true
		if s.Public != nil {
			public = *s.Public
		}
		site, err := client.CreateSite(ctx, map[string]any{
			"name":   s.Name,
			"url":    s.URL,
			"public": public,
		})
		if err != nil {
			return fmt.Errorf("create site %q: %w", s.Name, err)
		}
		fmt.Printf("site %d\t%s\n", site.ID, site.Name)

		for key, value := range s.Options {
			if err := client.SetSiteOption(ctx, site.ID, key, value); err != nil {
				return fmt.Errorf("site %q option %s: %w", s.Name, key, err)
			}
		}

		termIDs := make(map[string]int64, len(s.Terms))
		for _, t := range s.Terms {
			taxonomy := t.Taxonomy
			if taxonomy == "" {
				taxonomy = "category"
			}
			term, err := client.CreateTerm(ctx, site.ID, taxonomy, t.Name, t.Slug)
			if err != nil {
				return fmt.Errorf("site %q term %q: %w", s.Name, t.Name, err)
			}
			termIDs[t.Name] = term.ID
		}

		for _, p := range s.Posts {
			payload := map[string]any{
				"title": p.Title,
				"url":   p.URL,
			}
			if p.Content != "" {
				payload["content"] = p.Content
			}
			if p.Excerpt != "" {
				payload["excerpt"] = p.Excerpt
			}
			if p.Type != "" {
				payload["type"] = p.Type
			}
			if p.Status != "" {
				payload["status"] = p.Status
			}
			if p.Author != "" {
				payload["author"] = p.Author
			}
			post, err := client.CreatePost(ctx, site.ID, payload)
			if err != nil {
				return fmt.Errorf("site %q post %q: %w", s.Name, p.Title, err)
			}

			if len(p.Terms) > 0 {
				ids := make([]int64, 0, len(p.Terms))
				for _, name := range p.Terms {
					id, ok := termIDs[name]
					if !ok {
						return fmt.Errorf("site %q post %q references undefined term %q", s.Name, p.Title, name)
					}
					ids = append(ids, id)
				}
				if err := client.SetPostTerms(ctx, site.ID, post.ID, ids); err != nil {
					return fmt.Errorf("site %q post %q terms: %w", s.Name, p.Title, err)
				}
			}
			fmt.Printf("post %d\t%s\n", post.ID, post.Title)
		}
	}
	return nil
}

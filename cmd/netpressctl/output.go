package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"netpress/internal/domain"
	"netpress/internal/infra/adminapi"
)

func writeJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printSites(sites []domain.Site, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(map[string]any{"total": len(sites), "sites": sites})
	}
	fmt.Printf("sites=%d\n", len(sites))
	for _, site := range sites {
		flags := make([]string, 0, 3)
		if site.Public {
			flags = append(flags, "public")
		}
		if site.Archived {
			flags = append(flags, "archived")
		}
		if site.Deleted {
			flags = append(flags, "deleted")
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", site.ID, site.Name, site.URL, strings.Join(flags, ","))
	}
	return nil
}

func printPosts(posts []domain.Post, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(map[string]any{"total": len(posts), "posts": posts})
	}
	fmt.Printf("posts=%d\n", len(posts))
	for _, post := range posts {
		fmt.Printf("%d\t%s\t%s\t%s\n", post.ID, post.Status, post.Type, post.Title)
	}
	return nil
}

func printTerms(terms []domain.Term, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(map[string]any{"total": len(terms), "terms": terms})
	}
	fmt.Printf("terms=%d\n", len(terms))
	for _, term := range terms {
		fmt.Printf("%d\t%s\t%s\n", term.ID, term.Taxonomy, term.Name)
	}
	return nil
}

func printToolList(list adminapi.ToolList, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(list)
	}
	fmt.Printf("etag=%s tools=%d\n", list.ETag, list.Total)
	for _, tool := range list.Tools {
		fmt.Printf("%s\t%s\n", tool.Name, tool.Description)
	}
	return nil
}

// printToolResult renders a tool outcome and signals failure through the
// exit code, matching the tool contract: a failed call is data, not an error.
func printToolResult(result domain.ToolResult, jsonOutput bool) error {
	if jsonOutput {
		if err := writeJSON(result); err != nil {
			return err
		}
	} else if result.Success {
		data, err := json.MarshalIndent(result.Data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("tool=%s error=%s\n", result.ToolName, result.Error)
	}
	if !result.Success {
		return exitSilent(1)
	}
	return nil
}

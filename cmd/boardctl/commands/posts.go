package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var jsonOutput bool

type postJSON struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Created  time.Time `json:"created"`
	AuthorID int64     `json:"author_id"`
	Author   string    `json:"author"`
}

var listPostsCmd = &cobra.Command{
	Use:   "list-posts",
	Short: "List every post with its author",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(ctx context.Context, admin adminAPI) error {
			rows, err := admin.ListPosts(ctx)
			if err != nil {
				return err
			}

			if jsonOutput {
				out := make([]postJSON, 0, len(rows))
				for _, r := range rows {
					out = append(out, postJSON{
						ID: r.ID, Title: r.Title, Content: r.Content,
						Created: r.Created, AuthorID: r.AuthorID, Author: r.AuthorName,
					})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCREATED")
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Title, r.AuthorName, r.Created.UTC().Format(time.RFC3339))
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(listPostsCmd)

	listPostsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

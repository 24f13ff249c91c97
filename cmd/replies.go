/*
Copyright © 2026 Benoit Gagnon <bgagnon.dev@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bgagnon/translien/internal/store"
)

var repliesDBPath string

var repliesCmd = &cobra.Command{
	Use:   "replies",
	Short: "Inspect the reply journal",
	Long:  `List the replies the bot has posted, from the SQLite reply journal.`,
}

var repliesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all journaled replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(repliesDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		replies, err := db.ListReplies(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list replies: %w", err)
		}

		if len(replies) == 0 {
			fmt.Println("No replies in journal.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SUBMISSION\tLANG\tTARGET\tPOSTED\tURL")
		for _, r := range replies {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.SubmissionID, r.DetectedLang, r.TargetLang,
				r.PostedAt.Format("2006-01-02 15:04"), r.URL)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(repliesCmd)

	repliesCmd.PersistentFlags().StringVar(&repliesDBPath, "db", "replies.db", "Reply journal path")

	repliesCmd.AddCommand(repliesListCmd)
}

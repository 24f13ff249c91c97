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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgagnon/translien/internal/whitelist"
)

var whitelistPath string

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage the domain whitelist",
	Long:  `List, add, and remove domains the bot is allowed to reply on.`,
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		wl, err := whitelist.Load(whitelistPath)
		if err != nil {
			return fmt.Errorf("failed to load whitelist: %w", err)
		}

		domains := wl.Domains()
		if len(domains) == 0 {
			fmt.Println("Whitelist is empty.")
			return nil
		}
		for _, d := range domains {
			fmt.Println(d)
		}
		return nil
	},
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add <domain-or-url>...",
	Short: "Add domains to the whitelist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wl, err := whitelist.Load(whitelistPath)
		if err != nil {
			return fmt.Errorf("failed to load whitelist: %w", err)
		}

		for _, arg := range args {
			domain := whitelist.Normalize(arg)
			if domain == "" {
				return fmt.Errorf("cannot derive a domain from %q", arg)
			}
			wl.Add(arg)
			fmt.Printf("Added: %s\n", domain)
		}
		return wl.Save()
	},
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "remove <domain-or-url>...",
	Short: "Remove domains from the whitelist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wl, err := whitelist.Load(whitelistPath)
		if err != nil {
			return fmt.Errorf("failed to load whitelist: %w", err)
		}

		for _, arg := range args {
			wl.Remove(arg)
			fmt.Printf("Removed: %s\n", whitelist.Normalize(arg))
		}
		return wl.Save()
	},
}

func init() {
	rootCmd.AddCommand(whitelistCmd)

	whitelistCmd.PersistentFlags().StringVar(&whitelistPath, "file", "whitelist.json", "Whitelist file path")

	whitelistCmd.AddCommand(whitelistListCmd)
	whitelistCmd.AddCommand(whitelistAddCmd)
	whitelistCmd.AddCommand(whitelistRemoveCmd)
}

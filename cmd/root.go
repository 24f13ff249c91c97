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
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "translien",
	Short: "Reddit translated-link bot",
	Long: `A Reddit bot that watches a community for link submissions, detects the
language of the linked page, and replies with links to a translated
version of the page when the page is in one of the configured languages.

Community members can extend the domain whitelist by mentioning the bot
on a submission with the word "whitelist".

Use "translien run --help" for runtime options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (config may also come from TRANSLIEN_* env vars)")
}

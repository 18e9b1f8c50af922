package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and print the project table",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("config:        %s\n", configPath())
	fmt.Printf("spool dir:     %s\n", cfg.Settings.SpoolDir)
	fmt.Printf("mode:          %s\n", cfg.Settings.Mode)
	fmt.Printf("notifications: %s\n", cfg.Settings.Notifications)
	if cfg.Settings.MailTo != "" {
		fmt.Printf("mailto:        %s\n", cfg.Settings.MailTo)
	}

	projects := make([]string, 0, len(cfg.Projects))
	for name := range cfg.Projects {
		projects = append(projects, name)
	}
	sort.Strings(projects)

	for _, name := range projects {
		fmt.Printf("\n%s:\n", name)
		targets, _ := cfg.Targets(name)
		keys := make([]string, 0, len(targets))
		for key := range targets {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("  %-24s %s\n", key, targets[key])
		}
	}

	return nil
}

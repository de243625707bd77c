package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	groupID    string
	sourceID   string
	targetID   string
	targetName string
	targetKind string
	dryRun     bool
	season     string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(metricsCmd)

	mergeCmd.Flags().StringVar(&groupID, "group", "", "Group ID (required)")
	mergeCmd.Flags().StringVar(&sourceID, "source", "", "Guest player ID to merge away (required)")
	mergeCmd.Flags().StringVar(&targetID, "target", "", "Target player ID (required)")
	mergeCmd.Flags().StringVar(&targetName, "target-name", "", "Display name of the target")
	mergeCmd.Flags().StringVar(&targetKind, "target-kind", "user", "Target kind: user or guest")
	mergeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	mergeCmd.MarkFlagRequired("group")
	mergeCmd.MarkFlagRequired("source")
	mergeCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(mergeCmd)

	dedupCmd.Flags().StringVar(&groupID, "group", "", "Group ID (required)")
	dedupCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	dedupCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(dedupCmd)

	leaderboardCmd.Flags().StringVar(&groupID, "group", "", "Group ID (required)")
	leaderboardCmd.Flags().StringVar(&season, "season", "", "Season ID, defaults to all-time")
	leaderboardCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(leaderboardCmd)

	matchesCmd.Flags().StringVar(&groupID, "group", "", "Group ID (required)")
	matchesCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(matchesCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Get the persistent operational counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/counters")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge a guest identity into a user or another guest",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/groups/merge"
		if dryRun {
			path += "?dry_run=true"
		}
		return performPostRequest(path, map[string]string{
			"groupId":    groupID,
			"sourceId":   sourceID,
			"targetId":   targetID,
			"targetName": targetName,
			"targetKind": targetKind,
		})
	},
}

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Collapse duplicate guest players in a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/groups/guests/dedup"
		if dryRun {
			path += "?dry_run=true"
		}
		return performPostRequest(path, map[string]string{"groupId": groupID})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard of a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("groupId", groupID)
		if season != "" {
			params.Set("season", season)
		}
		return performGetRequest("/leaderboard?" + params.Encode())
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the matches of a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("groupId", groupID)
		return performGetRequest("/matches?" + params.Encode())
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, body any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

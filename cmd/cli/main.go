// The cli tool talks to a running finance-rag API server. Every command
// prints the server's JSON response, pretty-printed, so output can be piped
// into jq or saved as fixtures.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-rag/internal/archive"
)

var serverURL string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "finrag",
		Short:         "Client for the finance-rag API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", envOr("FINRAG_SERVER", "http://localhost:8085"), "Base URL of the API server")

	root.AddCommand(
		newStoreCmd(),
		newSearchCmd(),
		newSummaryCmd(),
		newRecordsCmd(),
		newArchivedCmd(),
		newJobsCmd(),
		newHealthCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newStoreCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Store an account record from a JSON file (or stdin with -)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				payload []byte
				err     error
			)
			if file == "-" || file == "" {
				payload, err = io.ReadAll(os.Stdin)
			} else {
				payload, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("reading record: %w", err)
			}
			return postJSON("/store-financial-data", payload)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the record JSON (defaults to stdin)")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		nResults   int
		dateFilter string
		minAmount  float64
		maxAmount  float64
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored financial data by natural-language query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{"query": args[0]}
			if nResults > 0 {
				body["n_results"] = nResults
			}
			if dateFilter != "" {
				body["date_filter"] = dateFilter
			}
			amount := map[string]float64{}
			if cmd.Flags().Changed("min-amount") {
				amount["min"] = minAmount
			}
			if cmd.Flags().Changed("max-amount") {
				amount["max"] = maxAmount
			}
			if len(amount) > 0 {
				body["amount_filter"] = amount
			}
			payload, err := json.Marshal(body)
			if err != nil {
				return err
			}
			return postJSON("/search-financial", payload)
		},
	}
	cmd.Flags().IntVarP(&nResults, "results", "n", 0, "Number of results to return")
	cmd.Flags().StringVar(&dateFilter, "date", "", `Date filter: "2024-01-15" or "2024-01-01 to 2024-01-31"`)
	cmd.Flags().Float64Var(&minAmount, "min-amount", 0, "Minimum transaction magnitude")
	cmd.Flags().Float64Var(&maxAmount, "max-amount", 0, "Maximum transaction magnitude")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var (
		accountID    string
		analysisType string
		days         int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Generate a financial summary across stored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{}
			if accountID != "" {
				body["account_id"] = accountID
			}
			if analysisType != "" {
				body["analysis_type"] = analysisType
			}
			if days > 0 {
				body["date_range_days"] = days
			}
			payload, err := json.Marshal(body)
			if err != nil {
				return err
			}
			return postJSON("/financial-summary", payload)
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "Restrict the summary to one account")
	cmd.Flags().StringVar(&analysisType, "type", "", "Analysis type: comprehensive, spending, income or trends")
	cmd.Flags().IntVar(&days, "days", 0, "Look-back window in days")
	return cmd
}

func newRecordsCmd() *cobra.Command {
	var (
		includeDocuments bool
		includeMetadata  bool
		includeOriginal  bool
		limit            int
		accountID        string
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List stored records with cross-account aggregation",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if includeDocuments {
				params.Set("include_documents", "true")
			}
			if includeMetadata {
				params.Set("include_metadata", "true")
			}
			if includeOriginal {
				params.Set("include_original_data", "true")
			}
			if limit > 0 {
				params.Set("limit", strconv.Itoa(limit))
			}
			if accountID != "" {
				params.Set("account_id_filter", accountID)
			}
			path := "/all-records"
			if encoded := params.Encode(); encoded != "" {
				path += "?" + encoded
			}
			return getJSON(path)
		},
	}
	cmd.Flags().BoolVar(&includeDocuments, "documents", false, "Include narrative documents")
	cmd.Flags().BoolVar(&includeMetadata, "metadata", false, "Include derived metadata")
	cmd.Flags().BoolVar(&includeOriginal, "original", false, "Include the original record payloads")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to return")
	cmd.Flags().StringVar(&accountID, "account", "", "Filter by account id")
	return cmd
}

func newArchivedCmd() *cobra.Command {
	var (
		project string
		dataset string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "archived",
		Short: "List recently archived documents straight from BigQuery",
		RunE: func(cmd *cobra.Command, args []string) error {
			if project == "" {
				return fmt.Errorf("--project is required (or set FINRAG_GCP_PROJECT)")
			}
			ctx := cmd.Context()
			writer, err := archive.NewBigQueryWriter(ctx, project, dataset)
			if err != nil {
				return err
			}
			defer writer.Close()

			rows, err := writer.RecentDocuments(ctx, limit)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", envOr("FINRAG_GCP_PROJECT", ""), "GCP project holding the archive dataset")
	cmd.Flags().StringVar(&dataset, "dataset", envOr("FINRAG_ARCHIVE_DATASET", "finrag"), "BigQuery dataset name")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum documents to list")
	return cmd
}

func newJobsCmd() *cobra.Command {
	var (
		status    string
		accountID string
	)

	cmd := &cobra.Command{
		Use:   "jobs [job-id]",
		Short: "List ingest jobs, or show one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return getJSON("/jobs/" + url.PathEscape(args[0]))
			}
			params := url.Values{}
			if status != "" {
				params.Set("status", status)
			}
			if accountID != "" {
				params.Set("account_id", accountID)
			}
			path := "/jobs"
			if encoded := params.Encode(); encoded != "" {
				path += "?" + encoded
			}
			return getJSON(path)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by job status")
	cmd.Flags().StringVar(&accountID, "account", "", "Filter by account id")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/health")
		},
	}
}

var httpClient = &http.Client{Timeout: 60 * time.Second}

func postJSON(path string, payload []byte) error {
	resp, err := httpClient.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	return printResponse(resp)
}

func getJSON(path string) error {
	resp, err := httpClient.Get(serverURL + path)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		// Not JSON; print as-is.
		fmt.Println(string(body))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

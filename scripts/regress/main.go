// Command regress drives a saved regression run through the ownertrace API
// and prints a per-case report. Useful after a county site changes its markup
// and the locators have been updated.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL  = flag.String("api-url", "http://localhost:8080", "Ownertrace API base URL")
	apiKey  = flag.String("api-key", "", "API key for authenticated requests")
	caseIDs = flag.String("cases", "", "Comma-separated case ids (empty = all saved cases)")
	poll    = flag.Duration("poll", 3*time.Second, "Polling interval while the run is processing")
	output  = flag.String("output", "regress-results.json", "JSON output file path")
)

// --- Request / Response types (mirrors models package) ---

type runRequest struct {
	CaseIDs []string `json:"case_ids,omitempty"`
}

type runAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

type runStatus struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Result    *batchResult `json:"result,omitempty"`
}

type batchResult struct {
	Total           int          `json:"total"`
	Passed          int          `json:"passed"`
	Failed          int          `json:"failed"`
	Results         []testResult `json:"results"`
	TotalDurationMs int64        `json:"total_duration_ms"`
}

type testResult struct {
	TestCaseID string       `json:"test_case_id"`
	Passed     bool         `json:"passed"`
	Error      *errorDetail `json:"error,omitempty"`
	Assertions []assertion  `json:"assertions"`
	DurationMs int64        `json:"duration_ms"`
}

type assertion struct {
	Field      string  `json:"field"`
	Expected   string  `json:"expected"`
	Actual     string  `json:"actual"`
	Passed     bool    `json:"passed"`
	Similarity float64 `json:"similarity"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Ownertrace Regression Run ===")
	fmt.Printf("API URL:  %s\n", *apiURL)
	fmt.Printf("Output:   %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure ownertrace is running\n")
		os.Exit(1)
	}

	accepted, err := startRun(parseCaseIDs(*caseIDs))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: start run: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Run %s started (%d cases)\n", accepted.ID, accepted.Total)

	status, err := waitForRun(accepted.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: poll run: %v\n", err)
		os.Exit(1)
	}

	printTable(status.Result)

	if err := writeJSON(*output, status); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)

	if status.Result != nil && status.Result.Failed > 0 {
		os.Exit(1)
	}
}

func parseCaseIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func startRun(ids []string) (*runAccepted, error) {
	bodyBytes, err := json.Marshal(runRequest{CaseIDs: ids})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/tests/run", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		var detail map[string]any
		json.NewDecoder(resp.Body).Decode(&detail)
		return nil, fmt.Errorf("status %d: %v", resp.StatusCode, detail)
	}

	var accepted runAccepted
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

func waitForRun(id string) (*runStatus, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	for {
		req, err := http.NewRequest("GET", *apiURL+"/api/v1/tests/run/"+id, nil)
		if err != nil {
			return nil, err
		}
		if *apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+*apiKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		var status runStatus
		err = json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		if status.Status == "completed" {
			return &status, nil
		}

		fmt.Printf("  %d/%d cases done ...\n", status.Completed, status.Total)
		time.Sleep(*poll)
	}
}

func printTable(result *batchResult) {
	if result == nil {
		fmt.Println("no results")
		return
	}

	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Case\tStatus\tOwner Sim\tAddress Sim\tDuration\tError\n")
	fmt.Fprintf(w, "────\t──────\t─────────\t───────────\t────────\t─────\n")

	for _, r := range result.Results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		errKind := ""
		if r.Error != nil {
			errKind = r.Error.Kind
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\t%s\n",
			r.TestCaseID,
			status,
			similarityFor(r.Assertions, "owner_name"),
			similarityFor(r.Assertions, "mailing_address"),
			r.DurationMs,
			errKind,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
	fmt.Printf("Total: %d  Passed: %d  Failed: %d  (%dms)\n",
		result.Total, result.Passed, result.Failed, result.TotalDurationMs)
}

func similarityFor(assertions []assertion, field string) string {
	for _, a := range assertions {
		if a.Field == field {
			return fmt.Sprintf("%.2f", a.Similarity)
		}
	}
	return "-"
}

func writeJSON(path string, status *runStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

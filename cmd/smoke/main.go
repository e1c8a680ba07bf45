package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"ai-chatbot/internal/client/session"
	"ai-chatbot/internal/client/transport"
	"ai-chatbot/internal/constant"
	"ai-chatbot/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	pass = color.New(color.FgGreen, color.Bold).SprintFunc()
	fail = color.New(color.FgRed, color.Bold).SprintFunc()
	info = color.New(color.FgCyan).SprintFunc()
)

type check struct {
	name string
	run  func(ctx context.Context, baseURL string) error
}

func main() {
	var (
		server       string
		timeout      time.Duration
		skipGenerate bool
	)

	cmd := &cobra.Command{
		Use:          "smoke",
		Short:        "End-to-end checks against a running relay",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := []check{
				{"GET /ping reports ok", checkPing},
				{"POST /chat rejects an empty turn", checkEmptyTurn},
				{"POST /chat rejects an unknown role", checkUnknownRole},
			}
			if !skipGenerate {
				checks = append(checks, check{"POST /chat relays a reply", checkReply})
			}
			return runChecks(cmd.Context(), strings.TrimRight(server, "/"), timeout, checks)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:5000", "relay base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "per-check timeout")
	cmd.Flags().BoolVar(&skipGenerate, "skip-generate", false, "skip the check that calls the generation API")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runChecks(ctx context.Context, baseURL string, timeout time.Duration, checks []check) error {
	fmt.Printf("Smoke testing %s\n\n", info(baseURL))

	failed := 0
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		err := c.run(checkCtx, baseURL)
		cancel()

		if err != nil {
			failed++
			fmt.Printf("%s %s: %v\n", fail("FAIL"), c.name, err)
			continue
		}
		fmt.Printf("%s %s (%s)\n", pass("PASS"), c.name, time.Since(start).Round(time.Millisecond))
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	fmt.Println(pass("all checks passed"))
	return nil
}

func checkPing(ctx context.Context, baseURL string) error {
	res, err := transport.New(baseURL).Ping(ctx)
	if err != nil {
		return err
	}
	if res.Status != constant.PingStatusOK {
		return fmt.Errorf("status %q", res.Status)
	}
	return nil
}

func checkEmptyTurn(ctx context.Context, baseURL string) error {
	return expectRejected(ctx, baseURL, `{}`, constant.ErrMessageOrFileRequired)
}

func checkUnknownRole(ctx context.Context, baseURL string) error {
	return expectRejected(ctx, baseURL,
		`{"message":"hi","history":[{"role":"narrator","text":"x"}]}`,
		"History[0].Role must be one of [user assistant bot], got \"narrator\"")
}

func checkReply(ctx context.Context, baseURL string) error {
	store := session.NewStore()
	client := transport.New(baseURL)

	if err := client.SendTurn(ctx, store, "My name is Ada. Reply with one word: ok.", nil); err != nil {
		return err
	}
	if err := client.SendTurn(ctx, store, "What is my name? Reply with the name only.", nil); err != nil {
		return err
	}

	turns := store.Snapshot().Turns
	reply := turns[len(turns)-1].Text
	if !strings.Contains(strings.ToLower(reply), "ada") {
		return fmt.Errorf("history was not used, reply %q", reply)
	}
	return nil
}

func expectRejected(ctx context.Context, baseURL, body, wantError string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat", bytes.NewBufferString(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("status %d, body %s", resp.StatusCode, raw)
	}

	var errBody dto.ErrorResponse
	if err := json.Unmarshal(raw, &errBody); err != nil {
		return fmt.Errorf("decode error body: %w", err)
	}
	if errBody.Error != wantError {
		return fmt.Errorf("error %q, want %q", errBody.Error, wantError)
	}
	return nil
}

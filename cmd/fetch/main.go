package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"stockfolio/internal/config"
	"stockfolio/internal/httpx"
	"stockfolio/internal/logger"
	"stockfolio/internal/quote"
	"stockfolio/internal/quote/yahoo"
)

// fetch is a one-shot quote lookup for debugging: it prints the
// normalized mapping (or the raw upstream payload with -raw) for a CSV
// of symbols and exits.
func main() {
	var symbolsCSV string
	var timeout int
	var configPath string
	var raw bool

	flag.StringVar(&symbolsCSV, "symbols", getenv("SYMBOLS", "AAPL"), "comma-separated ticker symbols")
	flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.BoolVar(&raw, "raw", false, "print the raw upstream payload instead of the normalized mapping")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if timeout <= 0 {
		timeout = cfg.Server.RequestTimeoutSec
	}

	symbols := splitCSV(symbolsCSV)
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "no symbols provided")
		os.Exit(1)
	}

	httpClient := httpx.New(time.Duration(timeout) * time.Second)
	httpClient.UserAgent = cfg.Yahoo.UserAgent

	client := yahoo.New(
		yahoo.WithBaseURL(cfg.Yahoo.Endpoint),
		yahoo.WithHTTPClient(httpClient),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if raw {
		b, err := client.FetchRaw(ctx, quote.CleanSymbols(symbols))
		if err != nil {
			fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
		return
	}

	log := logger.New(logger.Config{Level: "warn"})
	res, err := quote.NewNormalizer(client, log).Lookup(ctx, symbols)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup: %v\n", err)
		os.Exit(1)
	}

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

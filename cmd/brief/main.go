// Command brief runs one query through the pipeline and prints the
// result, for local use without the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kirillkom/market-brief-agent/internal/bootstrap"
	"github.com/kirillkom/market-brief-agent/internal/config"
	"github.com/kirillkom/market-brief-agent/internal/core/usecase"
	"github.com/kirillkom/market-brief-agent/internal/observability/logging"
)

func main() {
	asJSON := flag.Bool("json", false, "print the full brief as JSON")
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: brief [-json] <query>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("brief-cli", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, nil)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	brief, err := app.Briefs.ProcessQuery(ctx, query)
	if err != nil {
		log.Fatalf("brief error: %v", err)
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(brief); err != nil {
			log.Fatalf("encode brief: %v", err)
		}
		return
	}

	fmt.Println(brief.Narrative)
	fmt.Println()
	fmt.Print(usecase.InvestmentInsights(brief.Risk))
	if brief.VoiceArtifact != "" {
		fmt.Printf("\nVoice brief saved as %s\n", brief.VoiceArtifact)
	}
}

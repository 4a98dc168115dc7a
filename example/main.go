package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/versionboard"
	"github.com/jpalmerr/versionboard/internal/fetch"
)

const mockBase = "http://localhost:9999"

func main() {
	// start mock server (see mock_server.go)
	go StartMockDocsServer(":9999")
	time.Sleep(100 * time.Millisecond)

	docs := versionboard.DocumentationIndex{
		"kubernetes": mockBase + "/eks/kubernetes-versions.html",
		"redis":      "https://docs.aws.amazon.com/AmazonElastiCache/latest/red-ug/supported-engine-versions.html",
		"memcached":  "https://docs.aws.amazon.com/AmazonElastiCache/latest/mem-ug/supported-engine-versions-mc.html",
	}

	// two services share one API source: it is fetched once per run
	lexical := versionboard.WithOrdering(versionboard.OrderLexicalDescending)
	catalog, err := versionboard.NewCatalog(docs,
		versionboard.MustServiceDescriptor("Amazon ElastiCache redis",
			versionboard.APISource("cache-engine-versions"),
			versionboard.EngineVersions("redis"),
			versionboard.WithEngineKey("redis"), lexical,
		),
		versionboard.MustServiceDescriptor("Amazon ElastiCache memcached",
			versionboard.APISource("cache-engine-versions"),
			versionboard.EngineVersions("memcached"),
			versionboard.WithEngineKey("memcached"), lexical,
		),
		versionboard.MustServiceDescriptor("Amazon EKS",
			versionboard.HTMLSource("eks-page", docs["kubernetes"]),
			versionboard.ItemizedList(),
			versionboard.WithEngineKey("kubernetes"),
		),
	)
	if err != nil {
		slog.Error("failed to create catalog", "error", err)
		os.Exit(1)
	}

	client := fetch.NewClient(5 * time.Second)
	defer client.Close()

	// the mock API answers plain JSON over HTTP instead of an AWS SDK call
	api := versionboard.SourceFunc(func(ctx context.Context, ref versionboard.SourceRef) (versionboard.RawPayload, error) {
		resp := client.Get(ctx, mockBase+"/api/"+ref.ID)
		if resp.Error != nil {
			return versionboard.RawPayload{}, resp.Error
		}
		if resp.StatusCode != http.StatusOK {
			return versionboard.RawPayload{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return versionboard.StructuredPayload(resp.Body), nil
	})

	agg, err := versionboard.NewAggregator(catalog,
		versionboard.RoutedSource{API: api, HTML: fetch.NewHTMLSource(client)},
		versionboard.WithMaxConcurrency(2),
		versionboard.WithEngineOrdering(versionboard.OrderSemanticDescending),
		versionboard.WithTitle("versionboard demo"),
	)
	if err != nil {
		slog.Error("failed to create aggregator", "error", err)
		os.Exit(1)
	}

	board, err := versionboard.NewBoard(agg,
		versionboard.WithPort(8080),
		versionboard.WithInterval(30*time.Second),
		versionboard.WithReportCallback(func(r *versionboard.Report) {
			slog.Info("report ready", "rows", len(r.Rows), "services", len(r.Services()))
		}),
	)
	if err != nil {
		slog.Error("failed to create board", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  versionboard demo")
	fmt.Println()
	fmt.Println("  Open http://localhost:8080 in your browser")
	fmt.Println("  A new EKS release is published every minute; the page")
	fmt.Println("  is regenerated every 30 seconds.")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := board.Start(ctx); err != nil {
		slog.Error("versionboard error", "error", err)
		os.Exit(1)
	}
}

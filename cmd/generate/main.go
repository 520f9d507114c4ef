package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/raushankrgupta/product-page-generator/bootstrap"
	"github.com/raushankrgupta/product-page-generator/config"
	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/utils"
)

func main() {
	var (
		mode    = flag.String("mode", "url", "input mode: url, title or manual")
		url     = flag.String("url", "", "product page URL (mode url)")
		title   = flag.String("title", "", "product title (modes title and manual)")
		notes   = flag.String("notes", "", "additional details (mode manual)")
		lang    = flag.String("lang", "", "output language code, defaults to DEFAULT_LANGUAGE")
		doPush  = flag.Bool("publish", false, "push the result to Shopify as a draft")
		verbose = flag.Bool("v", false, "log at debug level")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	logger := utils.NewLogger(utils.LoggerOptions{Level: level, Format: cfg.LogFormat, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close(context.Background())

	req := models.GenerationRequest{
		Mode:     models.GenerationMode(*mode),
		URL:      *url,
		Title:    *title,
		Notes:    *notes,
		Language: *lang,
	}

	record, err := app.Generator.Generate(ctx, req, func(m string) {
		fmt.Fprintln(os.Stderr, m)
	})
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	b, _ := json.MarshalIndent(record, "", "  ")
	fmt.Println(string(b))

	if !*doPush {
		return
	}
	app.Session.Put(record)
	res, err := app.Session.Publish(ctx, record.ID)
	if err != nil {
		log.Fatalf("Publish failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", res.Message, res.AdminURL)
}

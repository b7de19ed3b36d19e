// Command generate-local calls the lead provider directly for a quick
// smoke test without the API, auth, or a database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/HimangshuPronoy/LeadGen/app"
	"github.com/HimangshuPronoy/LeadGen/app/config"
	"github.com/HimangshuPronoy/LeadGen/app/models"
)

func main() {
	query := flag.String("query", "b2b saas companies", "search query")
	industry := flag.String("industry", "", "industry filter")
	location := flag.String("location", "", "location filter")
	count := flag.Int("count", 6, "number of leads to request")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	gen := app.NewOpenRouterGenerator(cfg.Generator)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	leads, err := gen.Generate(ctx, models.GenerateLeadsRequest{
		Query:     *query,
		Industry:  *industry,
		Location:  *location,
		LeadCount: *count,
	})
	if err != nil {
		log.Fatalf("generate failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(leads); err != nil {
		log.Fatalf("encode failed: %v", err)
	}
}

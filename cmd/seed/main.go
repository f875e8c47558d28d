// Command seed loads the starter categories and articles into the configured
// database. Existing slugs are left alone.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content"
	contentrepo "github.com/ovaphlow/pitchfork/service-blog-go/internal/content/repo"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	lg, err := utilities.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	if !cfg.UsesDatabase() {
		sugar.Fatal("seeding needs a database; set STORE_DRIVER to postgres or sqlite")
	}
	newID, err := utilities.NewIDGenerator(cfg.IDs.Strategy, cfg.IDs.SnowflakeNode)
	if err != nil {
		sugar.Fatalw("id generator", "error", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		sugar.Fatalw("db connect", "error", err)
	}
	defer db.Close()

	ctx := context.Background()
	store := contentrepo.NewSQLStore(db, newID)
	if err := store.EnsureTables(ctx); err != nil {
		sugar.Fatalw("ensure tables", "error", err)
	}
	res, err := content.NewService(store, sugar).Seed(ctx)
	if err != nil {
		sugar.Fatalw("seed", "error", err)
	}
	fmt.Printf("created %d categories and %d articles\n", res.Categories, res.Articles)
}

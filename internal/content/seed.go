package content

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
)

//go:embed seed.json
var seedJSON []byte

type seedArticle struct {
	entity.ArticleInput
	Category string `json:"category"`
}

type seedData struct {
	Categories []entity.CategoryInput `json:"categories"`
	Articles   []seedArticle          `json:"articles"`
}

// SeedResult counts the rows a Seed run inserted.
type SeedResult struct {
	Categories int
	Articles   int
}

// Seed inserts the starter categories and articles. Rows whose slug already
// exists are skipped, so running it twice is harmless.
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	var data seedData
	if err := json.Unmarshal(seedJSON, &data); err != nil {
		return SeedResult{}, fmt.Errorf("decode seed data: %w", err)
	}

	var res SeedResult
	catIDs := map[string]string{}
	for _, in := range data.Categories {
		c, err := s.store.GetCategoryBySlug(ctx, in.Slug)
		if err != nil {
			return res, err
		}
		if c == nil {
			if c, err = s.CreateCategory(ctx, in); err != nil {
				return res, fmt.Errorf("seed category %s: %w", in.Slug, err)
			}
			res.Categories++
		}
		catIDs[c.Slug] = c.ID
	}

	for _, sa := range data.Articles {
		existing, err := s.store.GetArticleBySlug(ctx, sa.Slug)
		if err != nil {
			return res, err
		}
		if existing != nil {
			continue
		}
		in := sa.ArticleInput
		if id, ok := catIDs[sa.Category]; ok {
			in.CategoryID = &id
		}
		if _, err := s.CreateArticle(ctx, in); err != nil {
			return res, fmt.Errorf("seed article %s: %w", sa.Slug, err)
		}
		res.Articles++
	}
	s.logger.Infow("seed complete", "categories", res.Categories, "articles", res.Articles)
	return res, nil
}

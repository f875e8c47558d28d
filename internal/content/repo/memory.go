package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

// MemoryStore keeps content in process memory. It enforces the same slug
// uniqueness and category reference rules as the relational schema. Data is
// lost on restart; use it for development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	newID      utilities.IDGenerator
	now        func() time.Time
	seq        int64
	categories map[string]entity.Category
	catOrder   []string
	articles   map[string]memArticle
}

type memArticle struct {
	entity.Article
	seq int64
}

func NewMemoryStore(newID utilities.IDGenerator) *MemoryStore {
	if newID == nil {
		newID = utilities.NewKSUID
	}
	return &MemoryStore{
		newID:      newID,
		now:        time.Now,
		categories: map[string]entity.Category{},
		articles:   map[string]memArticle{},
	}
}

func (s *MemoryStore) EnsureTables(context.Context) error { return nil }
func (s *MemoryStore) Ping(context.Context) error         { return nil }

func (s *MemoryStore) GetCategory(_ context.Context, id string) (*entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemoryStore) GetCategoryBySlug(_ context.Context, slug string) (*entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.catOrder {
		if c := s.categories[id]; c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListCategories(context.Context) ([]entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Category, 0, len(s.catOrder))
	for _, id := range s.catOrder {
		out = append(out, s.categories[id])
	}
	return out, nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, in entity.CategoryInput) (*entity.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Slug == in.Slug {
			return nil, errCategorySlugTaken(nil)
		}
	}
	c := entity.Category{
		ID:          s.newID(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Icon:        in.Icon,
	}
	s.categories[c.ID] = c
	s.catOrder = append(s.catOrder, c.ID)
	return &c, nil
}

func (s *MemoryStore) CountArticlesByCategory(context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for _, a := range s.articles {
		if a.CategoryID != nil {
			counts[*a.CategoryID]++
		}
	}
	return counts, nil
}

func (s *MemoryStore) GetArticle(_ context.Context, id string) (*entity.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	return &a.Article, nil
}

func (s *MemoryStore) GetArticleBySlug(_ context.Context, slug string) (*entity.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.articles {
		if a.Slug == slug {
			art := a.Article
			return &art, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListArticles(context.Context) ([]entity.Article, error) {
	return s.listWhere(func(entity.Article) bool { return true }), nil
}

func (s *MemoryStore) ListArticlesByCategory(_ context.Context, categoryID string) ([]entity.Article, error) {
	return s.listWhere(func(a entity.Article) bool {
		return a.CategoryID != nil && *a.CategoryID == categoryID
	}), nil
}

func (s *MemoryStore) listWhere(keep func(entity.Article) bool) []entity.Article {
	s.mu.RLock()
	rows := make([]memArticle, 0, len(s.articles))
	for _, a := range s.articles {
		if keep(a.Article) {
			rows = append(rows, a)
		}
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Published.Equal(rows[j].Published) {
			return rows[i].Published.After(rows[j].Published)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]entity.Article, len(rows))
	for i, r := range rows {
		out[i] = r.Article
	}
	return out
}

func (s *MemoryStore) CreateArticle(_ context.Context, in entity.ArticleInput) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugTaken(in.Slug, "") {
		return nil, errArticleSlugTaken(nil)
	}
	if in.CategoryID != nil {
		if _, ok := s.categories[*in.CategoryID]; !ok {
			return nil, errUnknownCategory(nil)
		}
	}
	s.seq++
	a := entity.NewArticle(s.newID(), in, s.now())
	s.articles[a.ID] = memArticle{Article: a, seq: s.seq}
	return &a, nil
}

func (s *MemoryStore) UpdateArticle(_ context.Context, id string, p entity.ArticlePatch) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	if p.Slug.Present() && s.slugTaken(p.Slug.Value, id) {
		return nil, errArticleSlugTaken(nil)
	}
	if p.CategoryID.Present() {
		if _, ok := s.categories[p.CategoryID.Value]; !ok {
			return nil, errUnknownCategory(nil)
		}
	}
	row.Apply(p, s.now())
	s.articles[id] = row
	out := row.Article
	return &out, nil
}

func (s *MemoryStore) DeleteArticle(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return false, nil
	}
	delete(s.articles, id)
	return true, nil
}

// slugTaken must be called with mu held.
func (s *MemoryStore) slugTaken(slug, exceptID string) bool {
	for id, a := range s.articles {
		if id != exceptID && a.Slug == slug {
			return true
		}
	}
	return false
}

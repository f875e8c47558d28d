package entity

import "time"

// Article is a published post. Published doubles as the sort key; UpdatedAt
// is refreshed on every mutation.
type Article struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Slug       string    `json:"slug" db:"slug"`
	Excerpt    *string   `json:"excerpt" db:"excerpt"`
	Content    string    `json:"content" db:"content"`
	Thumbnail  *string   `json:"thumbnail" db:"thumbnail"`
	CategoryID *string   `json:"categoryId" db:"category_id"`
	ReadTime   *int      `json:"readTime" db:"read_time"`
	Published  time.Time `json:"published" db:"published"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// ArticleInput is the payload accepted when creating an article.
type ArticleInput struct {
	Title      string  `json:"title" validate:"required"`
	Slug       string  `json:"slug" validate:"required,slug"`
	Excerpt    *string `json:"excerpt"`
	Content    string  `json:"content" validate:"required"`
	Thumbnail  *string `json:"thumbnail"`
	CategoryID *string `json:"categoryId"`
	ReadTime   *int    `json:"readTime" validate:"omitempty,gt=0"`
}

// ArticlePatch is a partial update. Absent fields keep their stored value;
// null clears nullable fields.
type ArticlePatch struct {
	Title      Optional[string] `json:"title"`
	Slug       Optional[string] `json:"slug" validate:"omitempty,slug"`
	Excerpt    Optional[string] `json:"excerpt"`
	Content    Optional[string] `json:"content"`
	Thumbnail  Optional[string] `json:"thumbnail"`
	CategoryID Optional[string] `json:"categoryId"`
	ReadTime   Optional[int]    `json:"readTime" validate:"omitempty,gt=0"`
}

// NewArticle builds a stored article from input, stamping both timestamps
// with now.
func NewArticle(id string, in ArticleInput, now time.Time) Article {
	now = Timestamp(now)
	return Article{
		ID:         id,
		Title:      in.Title,
		Slug:       in.Slug,
		Excerpt:    in.Excerpt,
		Content:    in.Content,
		Thumbnail:  in.Thumbnail,
		CategoryID: in.CategoryID,
		ReadTime:   in.ReadTime,
		Published:  now,
		UpdatedAt:  now,
	}
}

// Apply merges p over a field by field and advances UpdatedAt.
func (a *Article) Apply(p ArticlePatch, now time.Time) {
	if p.Title.Present() {
		a.Title = p.Title.Value
	}
	if p.Slug.Present() {
		a.Slug = p.Slug.Value
	}
	if p.Content.Present() {
		a.Content = p.Content.Value
	}
	if p.Excerpt.Set {
		a.Excerpt = p.Excerpt.Ptr()
	}
	if p.Thumbnail.Set {
		a.Thumbnail = p.Thumbnail.Ptr()
	}
	if p.CategoryID.Set {
		a.CategoryID = p.CategoryID.Ptr()
	}
	if p.ReadTime.Set {
		a.ReadTime = p.ReadTime.Ptr()
	}
	a.UpdatedAt = NextUpdate(a.UpdatedAt, now)
}

// Timestamp normalizes t to UTC at microsecond precision, the resolution
// the relational stores keep.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NextUpdate returns now normalized, or one microsecond past prev when the
// clock has not moved past it, so UpdatedAt strictly increases.
func NextUpdate(prev, now time.Time) time.Time {
	now = Timestamp(now)
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

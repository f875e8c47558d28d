package entity

// Category groups articles. Slug is unique and URL-safe.
type Category struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Slug        string  `json:"slug" db:"slug"`
	Description *string `json:"description" db:"description"`
	Icon        *string `json:"icon" db:"icon"`
}

// CategoryInput is the payload accepted when creating a category.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required"`
	Slug        string  `json:"slug" validate:"required,slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// CategoryWithCount is a category annotated with the number of articles
// referencing it at query time.
type CategoryWithCount struct {
	Category
	ArticleCount int `json:"articleCount"`
}

// CategoryDetail is a category together with its articles, newest first.
type CategoryDetail struct {
	Category
	Articles []Article `json:"articles"`
}

package main

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const DefaultGenre = "No genre"

// Book represents a book entity.
type Book struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Genre     string `json:"genre" gorm:"size:120"`
	Author    string `json:"author" gorm:"not null"`
	Image     string `json:"image" gorm:"not null"`
	Title     string `json:"title" gorm:"not null"`
	Subtitle  string `json:"subtitle" gorm:"not null"`
	Publisher string `json:"publisher" gorm:"not null"`
	Year      string `json:"year" gorm:"size:60;not null"`
	Pages     int    `json:"pages" gorm:"not null"`
	ISBN      string `json:"isbn" gorm:"column:isbn;size:32;not null;index"`
}

func (Book) TableName() string {
	return "books"
}

// BookPayload is the client view of a book. Pointer members
// distinguish a missing or null value from an empty one.
type BookPayload struct {
	ID        int64   `json:"id"`
	Genre     *string `json:"genre"`
	Author    *string `json:"author"`
	Image     *string `json:"image"`
	Title     *string `json:"title"`
	Subtitle  *string `json:"subtitle"`
	Publisher *string `json:"publisher"`
	Year      *string `json:"year"`
	Pages     *int    `json:"pages"`
	ISBN      *string `json:"isbn"`
}

// Validate ensures every mandatory member was provided. Genre is optional.
func (p BookPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Author, validation.NotNil.Error("author is required")),
		validation.Field(&p.Image, validation.NotNil.Error("image is required")),
		validation.Field(&p.Title, validation.NotNil.Error("title is required")),
		validation.Field(&p.Subtitle, validation.NotNil.Error("subtitle is required")),
		validation.Field(&p.Publisher, validation.NotNil.Error("publisher is required")),
		validation.Field(&p.Year, validation.NotNil.Error("year is required")),
		validation.Field(&p.Pages, validation.NotNil.Error("pages is required"), validation.Min(0)),
		validation.Field(&p.ISBN, validation.NotNil.Error("isbn is required")),
	)
}

// Book validates the payload and converts it into a Book.
func (p BookPayload) Book() (Book, error) {
	if err := p.Validate(); err != nil {
		return Book{}, err
	}
	return Book{
		ID:        p.ID,
		Genre:     valueOf(p.Genre),
		Author:    *p.Author,
		Image:     *p.Image,
		Title:     *p.Title,
		Subtitle:  *p.Subtitle,
		Publisher: *p.Publisher,
		Year:      *p.Year,
		Pages:     *p.Pages,
		ISBN:      *p.ISBN,
	}, nil
}

// BookFilter selects books by exact column match. A nil member is ignored.
type BookFilter struct {
	Genre     *string
	Author    *string
	Image     *string
	Title     *string
	Subtitle  *string
	Publisher *string
	Year      *string
	Pages     *int
	ISBN      *string
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	Add(ctx context.Context, book Book) (Book, error)
	GetOne(ctx context.Context, id int64) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, book Book) (Book, error)
	Delete(ctx context.Context, id int64) error
	GetByAuthor(ctx context.Context, author string) ([]Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	FindByPublisherGenreYear(ctx context.Context, filter BookFilter) ([]Book, error)
	FindAllByFilter(ctx context.Context, filter BookFilter, page Page) ([]Book, int64, error)
}

func valueOf[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

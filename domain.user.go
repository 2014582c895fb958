package main

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// User represents a library member and the books of its collection.
type User struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	UserName  string `json:"userName" gorm:"column:user_name;size:80;not null;uniqueIndex"`
	Name      string `json:"name" gorm:"not null"`
	BirthDate Date   `json:"birthDate" gorm:"not null"`
	Password  string `json:"-" gorm:"size:72"`
	Books     []Book `json:"books" gorm:"many2many:users_books"`
}

func (User) TableName() string {
	return "users"
}

// HasBook reports whether a book with the given id is in the collection.
func (u *User) HasBook(bookID int64) bool {
	for _, b := range u.Books {
		if b.ID == bookID {
			return true
		}
	}
	return false
}

// AddBook appends the book to the collection. Books are unique by id.
func (u *User) AddBook(book Book) error {
	if u.HasBook(book.ID) {
		return ErrBookAlreadyOwned
	}
	u.Books = append(u.Books, book)
	return nil
}

// RemoveBook drops the book from the collection. It reports
// whether the book was present. Removing an absent book is a no-op.
func (u *User) RemoveBook(bookID int64) bool {
	for i, b := range u.Books {
		if b.ID == bookID {
			u.Books = append(u.Books[:i], u.Books[i+1:]...)
			return true
		}
	}
	return false
}

// UserPayload is the client view of a user. Nil members are
// left untouched during partial updates.
type UserPayload struct {
	ID        int64   `json:"id"`
	UserName  *string `json:"userName"`
	Name      *string `json:"name"`
	BirthDate *Date   `json:"birthDate"`
	Password  *string `json:"password"`
}

// Validate ensures a creation payload carries all mandatory members.
func (p UserPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.UserName, validation.NotNil.Error("userName is required")),
		validation.Field(&p.Name, validation.NotNil.Error("name is required")),
		validation.Field(&p.BirthDate, validation.NotNil.Error("birthDate is required")),
	)
}

// Merge applies the provided members of the payload onto the user.
func (p UserPayload) Merge(user *User) {
	if p.UserName != nil {
		user.UserName = *p.UserName
	}
	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.BirthDate != nil {
		user.BirthDate = *p.BirthDate
	}
}

// UserFilter selects users by exact column match. A nil member is ignored.
type UserFilter struct {
	ID        *int64
	UserName  *string
	Name      *string
	BirthDate *Date
}

// UserStorage defines possible operations on user entity.
type UserStorage interface {
	Add(ctx context.Context, user User) (User, error)
	GetOne(ctx context.Context, id int64) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error
	GetByUserName(ctx context.Context, userName string) (User, error)
	FindByBirthDateAndName(ctx context.Context, from, to Date, name string) ([]User, error)
	FindAllByFilter(ctx context.Context, filter UserFilter, page Page) ([]User, int64, error)
	GetOwners(ctx context.Context, bookID int64) ([]User, error)
}

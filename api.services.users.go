package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type UserServiceProvider interface {
	Add(ctx context.Context, payload UserPayload) (User, error)
	GetOne(ctx context.Context, id int64) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int64, payload UserPayload) (User, error)
	UpdatePassword(ctx context.Context, id int64, password string) (User, error)
	Delete(ctx context.Context, id int64) error
	AddBook(ctx context.Context, userID, bookID int64) (User, error)
	RemoveBook(ctx context.Context, userID, bookID int64) (User, error)
	FindByBirthDateAndName(ctx context.Context, from, to Date, name string) ([]User, error)
	FindAllByFilter(ctx context.Context, filter UserFilter, page Page) ([]User, Metadata, error)
}

type UserService struct {
	logger  *zap.Logger
	storage UserStorage
	books   BookStorage
	hasher  PasswordHasher
}

func NewUserService(logger *zap.Logger, storage UserStorage, books BookStorage, hasher PasswordHasher) UserServiceProvider {
	return &UserService{
		logger:  logger,
		storage: storage,
		books:   books,
		hasher:  hasher,
	}
}

// Add creates a user from a complete payload. A provided password is stored hashed.
func (us *UserService) Add(ctx context.Context, payload UserPayload) (User, error) {
	if err := payload.Validate(); err != nil {
		return User{}, err
	}
	user := User{}
	payload.Merge(&user)
	if payload.Password != nil && *payload.Password != "" {
		hash, err := us.hasher.Encode(*payload.Password)
		if err != nil {
			return user, err
		}
		user.Password = hash
	}
	return us.storage.Add(ctx, user)
}

func (us *UserService) GetOne(ctx context.Context, id int64) (User, error) {
	return us.storage.GetOne(ctx, id)
}

func (us *UserService) GetAll(ctx context.Context) ([]User, error) {
	return us.storage.GetAll(ctx)
}

// Update merges the provided members onto the stored user. Its collection is kept.
func (us *UserService) Update(ctx context.Context, id int64, payload UserPayload) (User, error) {
	if payload.ID != id {
		return User{}, ErrIDMismatch
	}
	user, err := us.storage.GetOne(ctx, id)
	if err != nil {
		return user, err
	}
	payload.Merge(&user)
	if payload.Password != nil && *payload.Password != "" {
		if user.Password, err = us.hasher.Encode(*payload.Password); err != nil {
			return user, err
		}
	}
	return us.storage.Update(ctx, user)
}

// UpdatePassword stores the hash of the new password.
func (us *UserService) UpdatePassword(ctx context.Context, id int64, password string) (User, error) {
	if password == "" {
		return User{}, ErrMissingPassword
	}
	user, err := us.storage.GetOne(ctx, id)
	if err != nil {
		return user, err
	}
	if user.Password, err = us.hasher.Encode(password); err != nil {
		return user, err
	}
	return us.storage.Update(ctx, user)
}

func (us *UserService) Delete(ctx context.Context, id int64) error {
	return us.storage.Delete(ctx, id)
}

// AddBook appends an existing book to the user collection.
func (us *UserService) AddBook(ctx context.Context, userID, bookID int64) (User, error) {
	user, err := us.storage.GetOne(ctx, userID)
	if err != nil {
		return user, err
	}
	book, err := us.books.GetOne(ctx, bookID)
	if err != nil {
		return user, err
	}
	if err = user.AddBook(book); err != nil {
		return user, fmt.Errorf("book %d: %w", bookID, err)
	}
	return us.storage.Update(ctx, user)
}

// RemoveBook detaches the book from the user collection. Removing a
// book absent from the collection leaves the user unchanged.
func (us *UserService) RemoveBook(ctx context.Context, userID, bookID int64) (User, error) {
	user, err := us.storage.GetOne(ctx, userID)
	if err != nil {
		return user, err
	}
	if _, err = us.books.GetOne(ctx, bookID); err != nil {
		return user, err
	}
	if !user.RemoveBook(bookID) {
		return user, nil
	}
	return us.storage.Update(ctx, user)
}

func (us *UserService) FindByBirthDateAndName(ctx context.Context, from, to Date, name string) ([]User, error) {
	return us.storage.FindByBirthDateAndName(ctx, from, to, name)
}

func (us *UserService) FindAllByFilter(ctx context.Context, filter UserFilter, page Page) ([]User, Metadata, error) {
	users, total, err := us.storage.FindAllByFilter(ctx, filter, page)
	if err != nil {
		return nil, Metadata{}, err
	}
	return users, CalculateMetadata(total, page), nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormUserStorage struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewGormUserStorage provides an instance of relational user storage.
func NewGormUserStorage(logger *zap.Logger, db *gorm.DB) UserStorage {
	return &gormUserStorage{
		logger: logger,
		db:     db,
	}
}

// preloadBooks loads each user collection ordered by book id.
func preloadBooks(db *gorm.DB) *gorm.DB {
	return db.Preload("Books", func(db *gorm.DB) *gorm.DB {
		return db.Order("books.id")
	})
}

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUserName
	}
	return err
}

// Add inserts a new user record with an empty collection.
func (us *gormUserStorage) Add(ctx context.Context, user User) (User, error) {
	user.ID = 0
	user.Books = []Book{}
	if err := us.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		return user, fmt.Errorf("failed to insert user: %w", translateDuplicate(err))
	}
	return user, nil
}

// GetOne retrieves a user and its collection based on its ID.
func (us *gormUserStorage) GetOne(ctx context.Context, id int64) (User, error) {
	var user User
	err := preloadBooks(us.db.WithContext(ctx)).First(&user, id).Error
	return user, translateNotFound(err, ErrUserNotFound)
}

func (us *gormUserStorage) GetAll(ctx context.Context) ([]User, error) {
	users := []User{}
	err := preloadBooks(us.db.WithContext(ctx)).Order("id").Find(&users).Error
	return users, err
}

// Update saves the user columns and replaces its collection in one transaction.
func (us *gormUserStorage) Update(ctx context.Context, user User) (User, error) {
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&user).Error; err != nil {
			return translateDuplicate(err)
		}
		books := tx.Model(&user).Association("Books")
		if len(user.Books) == 0 {
			return books.Clear()
		}
		return books.Replace(user.Books)
	})
	if err != nil {
		return user, fmt.Errorf("failed to update user: %w", err)
	}
	return us.GetOne(ctx, user.ID)
}

// Delete removes the user and its collection links.
func (us *gormUserStorage) Delete(ctx context.Context, id int64) error {
	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+UsersBooksTable+" WHERE user_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to clear user collection: %w", err)
		}
		result := tx.Delete(&User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (us *gormUserStorage) GetByUserName(ctx context.Context, userName string) (User, error) {
	var user User
	err := preloadBooks(us.db.WithContext(ctx)).Where("user_name = ?", userName).First(&user).Error
	return user, translateNotFound(err, ErrUserNotFound)
}

// FindByBirthDateAndName returns users born within the inclusive range whose
// name contains the fragment regardless of case. An empty fragment matches all.
func (us *gormUserStorage) FindByBirthDateAndName(ctx context.Context, from, to Date, name string) ([]User, error) {
	users := []User{}
	query := preloadBooks(us.db.WithContext(ctx)).Where("birth_date BETWEEN ? AND ?", from, to)
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	err := query.Order("id").Find(&users).Error
	return users, err
}

// FindAllByFilter returns the requested page of users matching every
// provided member of the filter along with the total number of matches.
func (us *gormUserStorage) FindAllByFilter(ctx context.Context, filter UserFilter, page Page) ([]User, int64, error) {
	query := us.db.WithContext(ctx).Model(&User{})
	query = whereIfSet(query, "id = ?", filter.ID)
	query = whereIfSet(query, "user_name = ?", filter.UserName)
	query = whereIfSet(query, "name = ?", filter.Name)
	query = whereIfSet(query, "birth_date = ?", filter.BirthDate)
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := []User{}
	err := preloadBooks(query).Order("id").Offset(page.Offset()).Limit(page.Size).Find(&users).Error
	return users, total, err
}

// GetOwners returns every user whose collection holds the book.
func (us *gormUserStorage) GetOwners(ctx context.Context, bookID int64) ([]User, error) {
	users := []User{}
	err := preloadBooks(us.db.WithContext(ctx)).
		Joins("JOIN "+UsersBooksTable+" ON "+UsersBooksTable+".user_id = users.id").
		Where(UsersBooksTable+".book_id = ?", bookID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

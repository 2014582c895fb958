package main

import (
	"context"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBookStorage struct {
	AddFunc                      func(ctx context.Context, book Book) (Book, error)
	GetOneFunc                   func(ctx context.Context, id int64) (Book, error)
	GetAllFunc                   func(ctx context.Context) ([]Book, error)
	UpdateFunc                   func(ctx context.Context, book Book) (Book, error)
	DeleteFunc                   func(ctx context.Context, id int64) error
	GetByAuthorFunc              func(ctx context.Context, author string) ([]Book, error)
	GetByISBNFunc                func(ctx context.Context, isbn string) (Book, error)
	FindByPublisherGenreYearFunc func(ctx context.Context, filter BookFilter) ([]Book, error)
	FindAllByFilterFunc          func(ctx context.Context, filter BookFilter, page Page) ([]Book, int64, error)
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Add(ctx context.Context, book Book) (Book, error) {
	return m.AddFunc(ctx, book)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetOne(ctx context.Context, id int64) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// GetAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	return m.GetAllFunc(ctx)
}

// Update mocks the behavior of updating a book by the repository.
func (m *MockBookStorage) Update(ctx context.Context, book Book) (Book, error) {
	return m.UpdateFunc(ctx, book)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *MockBookStorage) GetByAuthor(ctx context.Context, author string) ([]Book, error) {
	return m.GetByAuthorFunc(ctx, author)
}

func (m *MockBookStorage) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return m.GetByISBNFunc(ctx, isbn)
}

func (m *MockBookStorage) FindByPublisherGenreYear(ctx context.Context, filter BookFilter) ([]Book, error) {
	return m.FindByPublisherGenreYearFunc(ctx, filter)
}

func (m *MockBookStorage) FindAllByFilter(ctx context.Context, filter BookFilter, page Page) ([]Book, int64, error) {
	return m.FindAllByFilterFunc(ctx, filter, page)
}

type MockUserStorage struct {
	AddFunc                    func(ctx context.Context, user User) (User, error)
	GetOneFunc                 func(ctx context.Context, id int64) (User, error)
	GetAllFunc                 func(ctx context.Context) ([]User, error)
	UpdateFunc                 func(ctx context.Context, user User) (User, error)
	DeleteFunc                 func(ctx context.Context, id int64) error
	GetByUserNameFunc          func(ctx context.Context, userName string) (User, error)
	FindByBirthDateAndNameFunc func(ctx context.Context, from, to Date, name string) ([]User, error)
	FindAllByFilterFunc        func(ctx context.Context, filter UserFilter, page Page) ([]User, int64, error)
	GetOwnersFunc              func(ctx context.Context, bookID int64) ([]User, error)
}

func (m *MockUserStorage) Add(ctx context.Context, user User) (User, error) {
	return m.AddFunc(ctx, user)
}

func (m *MockUserStorage) GetOne(ctx context.Context, id int64) (User, error) {
	return m.GetOneFunc(ctx, id)
}

func (m *MockUserStorage) GetAll(ctx context.Context) ([]User, error) {
	return m.GetAllFunc(ctx)
}

func (m *MockUserStorage) Update(ctx context.Context, user User) (User, error) {
	return m.UpdateFunc(ctx, user)
}

func (m *MockUserStorage) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *MockUserStorage) GetByUserName(ctx context.Context, userName string) (User, error) {
	return m.GetByUserNameFunc(ctx, userName)
}

func (m *MockUserStorage) FindByBirthDateAndName(ctx context.Context, from, to Date, name string) ([]User, error) {
	return m.FindByBirthDateAndNameFunc(ctx, from, to, name)
}

func (m *MockUserStorage) FindAllByFilter(ctx context.Context, filter UserFilter, page Page) ([]User, int64, error) {
	return m.FindAllByFilterFunc(ctx, filter, page)
}

func (m *MockUserStorage) GetOwners(ctx context.Context, bookID int64) ([]User, error) {
	return m.GetOwnersFunc(ctx, bookID)
}

// MockQueuer records the pushed books per queue.
type MockQueuer struct {
	PushFunc func(ctx context.Context, qid string, book Book) error
	PopFunc  func(ctx context.Context, qids ...string) (string, Book, error)
}

func (m *MockQueuer) Push(ctx context.Context, qid string, book Book) error {
	return m.PushFunc(ctx, qid, book)
}

func (m *MockQueuer) Pop(ctx context.Context, qids ...string) (string, Book, error) {
	return m.PopFunc(ctx, qids...)
}

type MockCatalogClient struct {
	LookupFunc func(ctx context.Context, isbn string) (Book, error)
}

func (m *MockCatalogClient) Lookup(ctx context.Context, isbn string) (Book, error) {
	return m.LookupFunc(ctx, isbn)
}

type MockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, userName, password string) (Principal, error)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, userName, password string) (Principal, error) {
	return m.AuthenticateFunc(ctx, userName, password)
}

// MockCatalogMirror is an in-memory CatalogMirror.
type MockCatalogMirror struct {
	books map[int64]Book
}

func NewMockCatalogMirror() *MockCatalogMirror {
	return &MockCatalogMirror{books: map[int64]Book{}}
}

func (m *MockCatalogMirror) Put(_ context.Context, book Book) error {
	m.books[book.ID] = book
	return nil
}

func (m *MockCatalogMirror) Remove(_ context.Context, id int64) error {
	delete(m.books, id)
	return nil
}

func (m *MockCatalogMirror) GetOne(_ context.Context, id int64) (Book, error) {
	book, ok := m.books[id]
	if !ok {
		return book, ErrBookNotFound
	}
	return book, nil
}

func (m *MockCatalogMirror) GetAll(_ context.Context) ([]Book, error) {
	books := []Book{}
	for _, b := range m.books {
		books = append(books, b)
	}
	return books, nil
}

// MockPasswordHasher stores passwords with a visible prefix.
type MockPasswordHasher struct{}

func (MockPasswordHasher) Encode(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (MockPasswordHasher) Matches(plain, hash string) bool {
	return hash == "hashed:"+plain
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newUserTestStores returns a user storage holding jane (id 7, owning book 1)
// and a book storage knowing books 1 and 2.
func newUserTestStores(updated *[]User) (*MockUserStorage, *MockBookStorage) {
	users := &MockUserStorage{
		AddFunc: func(ctx context.Context, user User) (User, error) {
			if user.UserName == "taken" {
				return user, ErrDuplicateUserName
			}
			user.ID = 7
			user.Books = []Book{}
			*updated = append(*updated, user)
			return user, nil
		},
		GetOneFunc: func(ctx context.Context, id int64) (User, error) {
			if id != 7 {
				return User{}, ErrUserNotFound
			}
			return User{ID: 7, UserName: "jane", Name: "Jane", BirthDate: NewDate(1990, time.March, 7), Books: []Book{{ID: 1}}}, nil
		},
		UpdateFunc: func(ctx context.Context, user User) (User, error) {
			*updated = append(*updated, user)
			return user, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			if id != 7 {
				return ErrUserNotFound
			}
			return nil
		},
	}
	books := &MockBookStorage{
		GetOneFunc: func(ctx context.Context, id int64) (Book, error) {
			if id == 1 || id == 2 {
				return Book{ID: id}, nil
			}
			return Book{}, ErrBookNotFound
		},
	}
	return users, books
}

func TestCreateUserHandler(t *testing.T) {
	var saved []User
	users, books := newUserTestStores(&saved)
	api := newTestAPIHandler(&Services{Users: NewUserService(zap.NewNop(), users, books, MockPasswordHasher{})})

	create := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
		return serve(api.CreateUser, req, httprouter.Params{})
	}

	t.Run("should pass: valid payload", func(t *testing.T) {
		res := create(`{"userName":"jane","name":"Jane","birthDate":"1990-03-07","password":"pwd"}`)
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		m := decodeResponse(t, res)
		data := m["data"].(map[string]interface{})
		assert.Equal(t, float64(7), data["id"])
		assert.Equal(t, "1990-03-07", data["birthDate"])
		assert.NotContains(t, data, "password")
		assert.Equal(t, []interface{}{}, data["books"])

		require.Len(t, saved, 1)
		assert.Equal(t, "hashed:pwd", saved[0].Password)
	})

	t.Run("should fail: missing birth date", func(t *testing.T) {
		res := create(`{"userName":"jane","name":"Jane"}`)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		m := decodeResponse(t, res)
		assert.Contains(t, m["data"], "birthDate")
	})

	t.Run("should fail: malformed birth date", func(t *testing.T) {
		res := create(`{"userName":"jane","name":"Jane","birthDate":"07/03/1990"}`)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("should fail: duplicate username", func(t *testing.T) {
		res := create(`{"userName":"taken","name":"Jane","birthDate":"1990-03-07"}`)
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})
}

func TestUpdateUserHandlers(t *testing.T) {
	var saved []User
	users, books := newUserTestStores(&saved)
	api := newTestAPIHandler(&Services{Users: NewUserService(zap.NewNop(), users, books, MockPasswordHasher{})})
	ps := httprouter.Params{{Key: "id", Value: "7"}}

	t.Run("should pass: partial update keeps collection", func(t *testing.T) {
		saved = nil
		req := httptest.NewRequest(http.MethodPut, "/api/users/7", bytes.NewBufferString(`{"id":7,"name":"Jane Doe"}`))
		res := serve(api.UpdateUser, req, ps)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.Len(t, saved, 1)
		assert.Equal(t, "Jane Doe", saved[0].Name)
		assert.Equal(t, "jane", saved[0].UserName)
		assert.Len(t, saved[0].Books, 1)
	})

	t.Run("should fail: ids mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/users/7", bytes.NewBufferString(`{"id":8,"name":"Jane Doe"}`))
		res := serve(api.UpdateUser, req, ps)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("should fail: unknown user", func(t *testing.T) {
		saved = nil
		req := httptest.NewRequest(http.MethodPut, "/api/users/8", bytes.NewBufferString(`{"id":8,"name":"Jane Doe"}`))
		res := serve(api.UpdateUser, req, httprouter.Params{{Key: "id", Value: "8"}})
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		m := decodeResponse(t, res)
		assert.Equal(t, ErrUserNotFound.Error(), m["data"])
		assert.Empty(t, saved)
	})

	t.Run("should pass: password header", func(t *testing.T) {
		saved = nil
		req := httptest.NewRequest(http.MethodPut, "/api/users/7/password", nil)
		req.Header.Set(PasswordHeader, "n3w")
		res := serve(api.UpdateUserPassword, req, ps)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.Len(t, saved, 1)
		assert.Equal(t, "hashed:n3w", saved[0].Password)
	})

	t.Run("should fail: missing password header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/users/7/password", nil)
		res := serve(api.UpdateUserPassword, req, ps)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		m := decodeResponse(t, res)
		assert.Equal(t, ErrMissingPassword.Error(), m["data"])
	})

	t.Run("should fail: unknown user password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/users/8/password", nil)
		req.Header.Set(PasswordHeader, "n3w")
		res := serve(api.UpdateUserPassword, req, httprouter.Params{{Key: "id", Value: "8"}})
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	var saved []User
	users, books := newUserTestStores(&saved)
	api := newTestAPIHandler(&Services{Users: NewUserService(zap.NewNop(), users, books, MockPasswordHasher{})})

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"should pass: existing user", "7", http.StatusOK},
		{"should fail: unknown user", "8", http.StatusNotFound},
		{"should fail: invalid id", "x", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/users/"+tc.id, nil)
			res := serve(api.DeleteUser, req, httprouter.Params{{Key: "id", Value: tc.id}})
			assert.Equal(t, tc.status, res.StatusCode)
			m := decodeResponse(t, res)
			if tc.status == http.StatusOK {
				assert.Equal(t, float64(7), m["data"].(map[string]interface{})["id"])
			}
		})
	}
}

func TestUserCollectionHandlers(t *testing.T) {
	var saved []User
	users, books := newUserTestStores(&saved)
	api := newTestAPIHandler(&Services{Users: NewUserService(zap.NewNop(), users, books, MockPasswordHasher{})})

	call := func(h httprouter.Handle, method, userID, bookID string) *http.Response {
		req := httptest.NewRequest(method, "/api/users/"+userID+"/books/"+bookID, nil)
		return serve(h, req, httprouter.Params{{Key: "id", Value: userID}, {Key: "bookId", Value: bookID}})
	}

	testCases := []struct {
		name    string
		handler httprouter.Handle
		method  string
		userID  string
		bookID  string
		status  int
		updates int
	}{
		{"add new book", api.AddUserBook, http.MethodPost, "7", "2", http.StatusOK, 1},
		{"add owned book", api.AddUserBook, http.MethodPost, "7", "1", http.StatusBadRequest, 0},
		{"add unknown book", api.AddUserBook, http.MethodPost, "7", "3", http.StatusNotFound, 0},
		{"add to unknown user", api.AddUserBook, http.MethodPost, "8", "1", http.StatusNotFound, 0},
		{"add with invalid id", api.AddUserBook, http.MethodPost, "7", "x", http.StatusBadRequest, 0},
		{"remove owned book", api.RemoveUserBook, http.MethodDelete, "7", "1", http.StatusOK, 1},
		{"remove absent book", api.RemoveUserBook, http.MethodDelete, "7", "2", http.StatusOK, 0},
		{"remove unknown book", api.RemoveUserBook, http.MethodDelete, "7", "3", http.StatusNotFound, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			saved = nil
			res := call(tc.handler, tc.method, tc.userID, tc.bookID)
			assert.Equal(t, tc.status, res.StatusCode)
			assert.Len(t, saved, tc.updates)
			m := decodeResponse(t, res)
			if tc.status == http.StatusOK {
				data := m["data"].(map[string]interface{})
				assert.Equal(t, float64(7), data["id"])
			}
		})
	}
}

func TestUserLookupHandlers(t *testing.T) {
	var gotFrom, gotTo Date
	var gotName string
	var gotFilter UserFilter
	users := &MockUserStorage{
		GetOneFunc: func(ctx context.Context, id int64) (User, error) {
			return User{ID: id, UserName: "jane"}, nil
		},
		FindByBirthDateAndNameFunc: func(ctx context.Context, from, to Date, name string) ([]User, error) {
			gotFrom, gotTo, gotName = from, to, name
			return []User{{ID: 7}}, nil
		},
		FindAllByFilterFunc: func(ctx context.Context, filter UserFilter, page Page) ([]User, int64, error) {
			gotFilter = filter
			return []User{{ID: 7}}, 1, nil
		},
	}
	api := newTestAPIHandler(&Services{Users: NewUserService(zap.NewNop(), users, nil, MockPasswordHasher{})})

	t.Run("authenticated username", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/username", nil)
		req = req.WithContext(context.WithValue(req.Context(), PrincipalContextKey, Principal{UserID: 7, UserName: "jane"}))
		res := serve(api.UserLookup, req, httprouter.Params{{Key: "id", Value: UserByUserNamePath}})
		assert.Equal(t, http.StatusOK, res.StatusCode)
		m := decodeResponse(t, res)
		assert.Equal(t, "jane", m["data"])
	})

	t.Run("anonymous username", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/username", nil)
		res := serve(api.UserLookup, req, httprouter.Params{{Key: "id", Value: UserByUserNamePath}})
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("birth date and name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/find_by_birth_date_and_name?startDate=1980-01-01&endDate=1999-12-31&name=ja", nil)
		res := serve(api.UserLookup, req, httprouter.Params{{Key: "id", Value: FindUsersByBirthDateAndNamePath}})
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, NewDate(1980, time.January, 1), gotFrom)
		assert.Equal(t, NewDate(1999, time.December, 31), gotTo)
		assert.Equal(t, "ja", gotName)
	})

	t.Run("birth date without bounds", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/find_by_birth_date_and_name?endDate=1999-12-31", nil)
		res := serve(api.UserLookup, req, httprouter.Params{{Key: "id", Value: FindUsersByBirthDateAndNamePath}})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("single user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
		res := serve(api.UserLookup, req, httprouter.Params{{Key: "id", Value: "7"}})
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("paged users", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users?size=5&birthDate=1990-03-07", nil)
		res := serve(api.GetAllUsers, req, nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.NotNil(t, gotFilter.BirthDate)
		assert.Equal(t, NewDate(1990, time.March, 7), *gotFilter.BirthDate)
		assert.Nil(t, gotFilter.UserName)
		assert.Nil(t, gotFilter.ID)
	})

	t.Run("paged users by id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users?page=1&id=7", nil)
		res := serve(api.GetAllUsers, req, nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.NotNil(t, gotFilter.ID)
		assert.Equal(t, int64(7), *gotFilter.ID)
	})

	t.Run("paged users with invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users?page=1&id=abc", nil)
		res := serve(api.GetAllUsers, req, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("paged users with malformed birth date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users?size=5&birthDate=yesterday", nil)
		res := serve(api.GetAllUsers, req, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	UserByUserNamePath              = "username"
	FindUsersByBirthDateAndNamePath = "find_by_birth_date_and_name"
	PasswordHeader                  = "Password"
)

// UserLookup serves GET /api/users/:id. The fixed segments `username` and
// `find_by_birth_date_and_name` share this position with the user id.
func (api *APIHandler) UserLookup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch ps.ByName("id") {
	case UserByUserNamePath:
		api.GetAuthenticatedUserName(w, r, ps)
	case FindUsersByBirthDateAndNamePath:
		api.FindUsersByBirthDateAndName(w, r, ps)
	default:
		api.GetOneUser(w, r, ps)
	}
}

func (api *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload UserPayload
	if err := DecodeRequestBody(r, &payload); err != nil {
		api.sendError(w, r, "failed to create the user", err)
		return
	}
	user, err := api.userService.Add(r.Context(), payload)
	if err != nil {
		api.sendError(w, r, "failed to create the user", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create user", zap.Int64("user.id", user.ID))
	api.sendResponse(w, r, http.StatusCreated, "User created successfully.", nil, user)
}

// GetAllUsers lists every user. The `page` or `size` query parameters switch
// to the paginated listing filtered by userName, name or birthDate.
func (api *APIHandler) GetAllUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	if IsPageRequested(q) {
		api.findAllUsersByFilter(w, r)
		return
	}

	users, err := api.userService.GetAll(r.Context())
	if err != nil {
		api.sendError(w, r, "failed to get all users", err)
		return
	}
	total := len(users)
	api.sendResponse(w, r, http.StatusOK, "All users fetched successfully.", &total, users)
}

func (api *APIHandler) findAllUsersByFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := QueryPage(q)
	if err != nil {
		api.sendError(w, r, "failed to filter users", err)
		return
	}
	id, err := QueryID(q, "id")
	if err != nil {
		api.sendError(w, r, "failed to filter users", err)
		return
	}
	birthDate, err := QueryDate(q, "birthDate")
	if err != nil {
		api.sendError(w, r, "failed to filter users", err)
		return
	}
	filter := UserFilter{
		ID:        id,
		UserName:  QueryString(q, "userName"),
		Name:      QueryString(q, "name"),
		BirthDate: birthDate,
	}

	users, metadata, err := api.userService.FindAllByFilter(r.Context(), filter, page)
	if err != nil {
		api.sendError(w, r, "failed to filter users", err)
		return
	}
	total := len(users)
	api.sendResponse(w, r, http.StatusOK, "Users page fetched successfully.", &total, PagedData{Items: users, Metadata: metadata})
}

func (api *APIHandler) GetOneUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "user id provided is not valid", err)
		return
	}
	user, err := api.userService.GetOne(r.Context(), id)
	if err != nil {
		api.sendError(w, r, "failed to get the user", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "User fetched successfully.", nil, user)
}

// GetAuthenticatedUserName returns the username of the authenticated caller.
func (api *APIHandler) GetAuthenticatedUserName(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := GetPrincipalFromContext(r.Context())
	if !ok {
		api.sendError(w, r, "failed to get the authenticated user", ErrBadCredentials)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Authenticated user fetched successfully.", nil, principal.UserName)
}

// FindUsersByBirthDateAndName expects the inclusive `startDate` and `endDate`
// bounds and an optional case insensitive `name` fragment.
func (api *APIHandler) FindUsersByBirthDateAndName(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	from, err := ParseDate(q.Get("startDate"))
	if err != nil {
		api.sendError(w, r, "failed to find users", err)
		return
	}
	to, err := ParseDate(q.Get("endDate"))
	if err != nil {
		api.sendError(w, r, "failed to find users", err)
		return
	}
	users, err := api.userService.FindByBirthDateAndName(r.Context(), from, to, q.Get("name"))
	if err != nil {
		api.sendError(w, r, "failed to find users", err)
		return
	}
	total := len(users)
	api.sendResponse(w, r, http.StatusOK, "Users fetched successfully.", &total, users)
}

// UpdateUser applies the provided members of the payload. The payload id must
// match the path id.
func (api *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "user id provided is not valid", err)
		return
	}
	var payload UserPayload
	if err = DecodeRequestBody(r, &payload); err != nil {
		api.sendError(w, r, "failed to update the user", err)
		return
	}
	user, err := api.userService.Update(r.Context(), id, payload)
	if err != nil {
		api.sendError(w, r, "failed to update the user", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "User updated successfully.", nil, user)
}

// UpdateUserPassword reads the new password from the `Password` header.
func (api *APIHandler) UpdateUserPassword(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "user id provided is not valid", err)
		return
	}
	user, err := api.userService.UpdatePassword(r.Context(), id, r.Header.Get(PasswordHeader))
	if err != nil {
		api.sendError(w, r, "failed to update the user password", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update user password", zap.Int64("user.id", user.ID))
	api.sendResponse(w, r, http.StatusOK, "User password updated successfully.", nil, user)
}

func (api *APIHandler) DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "user id provided is not valid", err)
		return
	}
	if err = api.userService.Delete(r.Context(), id); err != nil {
		api.sendError(w, r, "failed to delete the user", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "User deleted successfully.", nil, User{ID: id, Books: []Book{}})
}

// parseUserBookIDs extracts the user and book identifiers of a collection route.
func parseUserBookIDs(ps httprouter.Params) (int64, int64, error) {
	userID, err := ParseID(ps.ByName("id"))
	if err != nil {
		return 0, 0, err
	}
	bookID, err := ParseID(ps.ByName("bookId"))
	if err != nil {
		return 0, 0, err
	}
	return userID, bookID, nil
}

func (api *APIHandler) AddUserBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, bookID, err := parseUserBookIDs(ps)
	if err != nil {
		api.sendError(w, r, "ids provided are not valid", err)
		return
	}
	user, err := api.userService.AddBook(r.Context(), userID, bookID)
	if err != nil {
		api.sendError(w, r, "failed to add the book to the user collection", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Book added to the collection successfully.", nil, user)
}

func (api *APIHandler) RemoveUserBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, bookID, err := parseUserBookIDs(ps)
	if err != nil {
		api.sendError(w, r, "ids provided are not valid", err)
		return
	}
	user, err := api.userService.RemoveBook(r.Context(), userID, bookID)
	if err != nil {
		api.sendError(w, r, "failed to remove the book from the user collection", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Book removed from the collection successfully.", nil, user)
}

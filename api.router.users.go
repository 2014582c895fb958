package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupUserRoutes injects user related api endpoints. Only the creation
// is reachable without authentication.
func (api *APIHandler) SetupUserRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.POST("/api/users", m.public(api.CreateUser))
	router.GET("/api/users", m.secured(api.GetAllUsers))
	router.GET("/api/users/:id", m.secured(api.UserLookup))
	router.PUT("/api/users/:id", m.secured(api.UpdateUser))
	router.DELETE("/api/users/:id", m.secured(api.DeleteUser))
	router.PUT("/api/users/:id/password", m.secured(api.UpdateUserPassword))
	router.POST("/api/users/:id/books/:bookId", m.secured(api.AddUserBook))
	router.DELETE("/api/users/:id/books/:bookId", m.secured(api.RemoveUserBook))
	return router
}

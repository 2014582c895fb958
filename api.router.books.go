package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects book related api endpoints. Only the creation
// is reachable without authentication.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.POST("/api/books", m.public(api.CreateBook))
	router.GET("/api/books", m.secured(api.GetAllBooks))
	router.GET("/api/books/:id", m.secured(api.BookLookup))
	router.PUT("/api/books/:id", m.secured(api.UpdateBook))
	router.DELETE("/api/books/:id", m.secured(api.DeleteBook))
	router.GET("/api/books/:id/:value", m.secured(api.BookSubLookup))
	return router
}

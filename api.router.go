package main

import (
	_ "github.com/jeamon/books-library/docs"
	"github.com/julienschmidt/httprouter"
	httpswagger "github.com/swaggo/http-swagger/v2"
)

// MiddlewareMap contains the middlewares chains to use for
// public-facing, authenticated and ops requests.
type MiddlewareMap struct {
	public  func(httprouter.Handle) httprouter.Handle
	secured func(httprouter.Handle) httprouter.Handle
	ops     func(httprouter.Handle) httprouter.Handle
}

// SetupRoutes injects books, users and ops related endpoints if required.
func (api *APIHandler) SetupRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.NotFound = api.NotFound()
	router.GET("/", m.ops(api.Index))
	router.GET("/status", m.ops(api.Status))
	api.SetupBookRoutes(router, m)
	api.SetupUserRoutes(router, m)
	if api.config.OpsEndpointsEnable {
		api.SetupOpsRoutes(router, m)
	}
	router.GET("/swagger/*any", m.ops(api.OpsHandlerWrapper(httpswagger.WrapHandler)))
	return router
}

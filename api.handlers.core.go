package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	mu      sync.RWMutex
	message string
	started time.Time
}

// Enable switches the maintenance mode on with the reason shown to clients.
func (m *Maintenance) Enable(message string, started time.Time) {
	m.mu.Lock()
	m.message, m.started = message, started
	m.mu.Unlock()
	m.enabled.Store(true)
}

// Disable switches the maintenance mode off and clears its details.
func (m *Maintenance) Disable() {
	m.enabled.Store(false)
	m.mu.Lock()
	m.message, m.started = "", time.Time{}
	m.mu.Unlock()
}

// Details returns the reason and the activation time of the maintenance mode.
func (m *Maintenance) Details() (string, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.message, m.started
}

// Services groups the business components exposed by the api.
type Services struct {
	Books  BookServiceProvider
	Users  UserServiceProvider
	Auth   Authenticator
	Mirror CatalogMirror
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger      *zap.Logger
	config      *Config
	stats       *Statistics
	mode        *Maintenance
	clock       Clocker
	idsHandler  UIDHandler
	bookService BookServiceProvider
	userService UserServiceProvider
	auth        Authenticator
	mirror      CatalogMirror
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(logger *zap.Logger, config *Config, stats *Statistics, clock Clocker, idsHandler UIDHandler, services *Services) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	if services == nil {
		services = &Services{}
	}
	return &APIHandler{
		logger:      logger,
		config:      config,
		stats:       stats,
		mode:        m,
		clock:       clock,
		idsHandler:  idsHandler,
		bookService: services.Books,
		userService: services.Users,
		auth:        services.Auth,
		mirror:      services.Mirror,
	}
}

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"requestid": requestID,
			"status":    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
			"message":   "Hello. Books library api is available. Enjoy :)",
		},
	); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// NotFound answers requests on unknown routes with a json message.
func (api *APIHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
		if requestID == "" {
			requestID = api.idsHandler.Generate(RequestIDPrefix)
		}
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(
			map[string]string{
				"requestid": requestID,
				"message":   "route does not exist",
				"path":      r.Method + " " + r.URL.Path,
			},
		); err != nil {
			api.logger.Error("failed to send not found response", zap.String("request.id", requestID), zap.Error(err))
		}
	})
}

// sendError logs the failure then sends the error envelope whose
// status is derived from the error.
func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, message string, err error) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	logger := api.GetLoggerFromContext(r.Context())
	status := StatusFromError(err)
	logger.Error(message, zap.String("request.id", requestID), zap.Int("response.status", status), zap.Error(err))

	var data interface{} = err.Error()
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		data = verrs
	}
	errResp := NewAPIError(requestID, status, message, data)
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// sendResponse sends the success envelope.
func (api *APIHandler) sendResponse(w http.ResponseWriter, r *http.Request, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := GenericResponse(requestID, status, message, total, data)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type ContextKey string

const (
	RequestIDPrefix         string     = "r"
	RequestIDHeader         string     = "X-Request-ID"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
)

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(RequestNumberContextKey).(uint64); ok {
		return val
	}
	return 0
}

// DecodeRequestBody reads the json content of a creation or update request.
func DecodeRequestBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, ErrInvalidDate) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// ParseID converts a path segment into a record identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// QueryString returns a pointer to the query parameter value or nil when
// the parameter is absent. An empty value is still a provided value.
func QueryString(q url.Values, key string) *string {
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	return &v
}

// QueryInt behaves like QueryString for integer parameters.
func QueryInt(q url.Values, key string) (*int, error) {
	if !q.Has(key) {
		return nil, nil
	}
	v, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidPayload, key)
	}
	return &v, nil
}

// QueryID behaves like QueryString for record identifiers.
func QueryID(q url.Values, key string) (*int64, error) {
	if !q.Has(key) {
		return nil, nil
	}
	id, err := ParseID(q.Get(key))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// QueryDate behaves like QueryString for YYYY-MM-DD parameters.
func QueryDate(q url.Values, key string) (*Date, error) {
	if !q.Has(key) {
		return nil, nil
	}
	d, err := ParseDate(q.Get(key))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// IsPageRequested reports whether the caller asked for a paginated listing.
func IsPageRequested(q url.Values) bool {
	return q.Has("page") || q.Has("size")
}

// QueryPage builds the requested page. Missing values take the defaults.
func QueryPage(q url.Values) (Page, error) {
	number, size := 1, DefaultPageSize
	var err error
	if q.Has("page") {
		if number, err = strconv.Atoi(q.Get("page")); err != nil {
			return Page{}, fmt.Errorf("%w: page must be an integer", ErrInvalidPayload)
		}
	}
	if q.Has("size") {
		if size, err = strconv.Atoi(q.Get("size")); err != nil {
			return Page{}, fmt.Errorf("%w: size must be an integer", ErrInvalidPayload)
		}
	}
	return NewPage(number, size), nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	for _, ip := range strings.Split(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	if net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

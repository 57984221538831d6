// Package router wires handlers onto a shared gin engine under a versioned
// API prefix.
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that register their own routes.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router owns the versioned API group and the registered handlers.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// Option customizes a Router.
type Option func(*Router)

// WithAPIVersion overrides the default "v1" API version segment.
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a router on top of an existing gin engine.
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use queues middleware applied to the API group ahead of all routes.
// Call before Setup.
func (r *Router) Use(middleware ...gin.HandlerFunc) {
	r.middleware = append(r.middleware, middleware...)
}

// Register queues a handler for route registration. Call before Setup.
func (r *Router) Register(registrars ...RouteRegistrar) {
	r.registrars = append(r.registrars, registrars...)
}

// BasePath returns the versioned API prefix, e.g. "/api/v1".
func (r *Router) BasePath() string {
	return fmt.Sprintf("/api/%s", r.apiVersion)
}

// Setup creates the versioned group and registers all queued handlers.
// It returns the group so callers can attach extra routes.
func (r *Router) Setup() *gin.RouterGroup {
	api := r.engine.Group(r.BasePath())
	api.Use(r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return api
}

package router

import (
	"net/http"
	"path"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts domain groups under the versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithMiddleware runs the handlers on every route of the API group
func WithMiddleware(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, handlers...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// RouteInfo describes a registered route and the roles allowed to call it.
// Nil roles means any authenticated caller.
type RouteInfo struct {
	Method string
	Path   string
	Roles  []identity.Role
}

// DomainGroup collects the routes of one resource family. Reads are open to
// every authenticated role; writes are gated by the group's write roles unless
// a route names its own.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	writeRoles []identity.Role
	routes     []routeDefinition
	subgroups  []*DomainGroup
}

type routeDefinition struct {
	method  string
	path    string
	roles   []identity.Role
	handler gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Writes sets the roles allowed on POST, PUT, PATCH and DELETE routes
func (dg *DomainGroup) Writes(roles ...identity.Role) *DomainGroup {
	dg.writeRoles = roles
	return dg
}

// GET registers a read route
func (dg *DomainGroup) GET(path string, handler gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, nil, handler)
}

// POST registers a write route gated by the group's write roles
func (dg *DomainGroup) POST(path string, handler gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, dg.writeRoles, handler)
}

// PUT registers a write route gated by the group's write roles
func (dg *DomainGroup) PUT(path string, handler gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, dg.writeRoles, handler)
}

// PATCH registers a write route gated by the group's write roles
func (dg *DomainGroup) PATCH(path string, handler gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, path, dg.writeRoles, handler)
}

// Update registers handler for both PUT and PATCH, gated by the group's write roles
func (dg *DomainGroup) Update(path string, handler gin.HandlerFunc) *DomainGroup {
	return dg.PUT(path, handler).PATCH(path, handler)
}

// DELETE registers a write route gated by the group's write roles
func (dg *DomainGroup) DELETE(path string, handler gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, dg.writeRoles, handler)
}

// Handle registers a route with an explicit role allow-list
func (dg *DomainGroup) Handle(method, path string, roles []identity.Role, handler gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:  method,
		path:    path,
		roles:   roles,
		handler: handler,
	})
	return dg
}

// Group creates a sub-group that inherits the write roles
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	subgroup.writeRoles = dg.writeRoles
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		if len(route.roles) > 0 {
			group.Handle(route.method, route.path, middleware.RequireRoles(route.roles...), route.handler)
			continue
		}
		group.Handle(route.method, route.path, route.handler)
	}

	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Routes lists the group's routes with full paths relative to the API prefix
func (dg *DomainGroup) Routes() []RouteInfo {
	return dg.collect("")
}

func (dg *DomainGroup) collect(base string) []RouteInfo {
	prefix := path.Join(base, dg.prefix)
	out := make([]RouteInfo, 0, len(dg.routes))
	for _, route := range dg.routes {
		out = append(out, RouteInfo{
			Method: route.method,
			Path:   joinPath(prefix, route.path),
			Roles:  route.roles,
		})
	}
	for _, subgroup := range dg.subgroups {
		out = append(out, subgroup.collect(prefix)...)
	}
	return out
}

func joinPath(prefix, p string) string {
	if p == "" || p == "/" {
		return prefix
	}
	return path.Join(prefix, p)
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

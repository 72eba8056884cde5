package router

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/campus-events/backend/config"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before or after a handler. A nil returned context keeps
// the current one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc always runs once the request is finished, whether it failed or
// not.
type CloserFunc func(ctx context.Context)

type Router struct {
	ctx       context.Context
	mux       *http.ServeMux
	validator *validator.Validate

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

// New creates a router whose handlers inherit every value stored in ctx
// (configs, logger, database...).
func New(ctx context.Context) *Router {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Router{
		ctx:       ctx,
		mux:       http.NewServeMux(),
		validator: validate,
		closers:   []CloserFunc{handleResponse()},
	}
}

// Branch returns a router sharing the same mux. Middlewares added to the
// branch do not leak into its parent.
func (r *Router) Branch() *Router {
	return &Router{
		ctx:       r.ctx,
		mux:       r.mux,
		validator: r.validator,
		befores:   append([]MiddlewareFunc{}, r.befores...),
		afters:    append([]MiddlewareFunc{}, r.afters...),
		closers:   append([]CloserFunc{}, r.closers...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Static registers a raw handler, bypassing middlewares and closers.
func (r *Router) Static(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) Handler(cfg config.APIServerConfigs) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodPost, pattern, handler)
}

func route[Request, Response any](
	r *Router,
	method, pattern string,
	handler HandlerFunc[Request, Response],
) {
	befores := append([]MiddlewareFunc{}, r.befores...)
	afters := append([]MiddlewareFunc{}, r.afters...)
	closers := append([]CloserFunc{}, r.closers...)

	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx := xcontext.WithHTTPRequest(r.ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)

		ctx = serve(ctx, r.validator, method, befores, afters, handler)
		for _, closer := range closers {
			closer(ctx)
		}
	})
}

func serve[Request, Response any](
	ctx context.Context,
	validate *validator.Validate,
	method string,
	befores, afters []MiddlewareFunc,
	handler HandlerFunc[Request, Response],
) context.Context {
	var err error
	if ctx, err = runMiddlewares(ctx, befores); err != nil {
		return xcontext.WithError(ctx, err)
	}

	var req Request
	if err := bind(ctx, method, &req); err != nil {
		return xcontext.WithError(ctx, err)
	}

	if err := validateRequest(ctx, validate, &req); err != nil {
		return xcontext.WithError(ctx, err)
	}

	resp, err := handler(ctx, &req)
	if err != nil {
		return xcontext.WithError(ctx, err)
	}

	ctx = xcontext.WithResponse(ctx, resp)
	if ctx, err = runMiddlewares(ctx, afters); err != nil {
		return xcontext.WithError(ctx, err)
	}

	return ctx
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, middleware := range middlewares {
		newCtx, err := middleware(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}

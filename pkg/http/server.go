// Package http is the outer transport in front of the routing core:
// /route and /trace-route endpoints behind an httprouter/alice
// middleware chain with CORS.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/nextzen/thor/pkg/http/usecases"
	"github.com/nextzen/thor/pkg/thor"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// API wires the routing service into an httprouter Handler.
type API struct {
	log     *zap.Logger
	routing *usecases.RoutingService
}

func NewAPI(log *zap.Logger, routing *usecases.RoutingService) *API {
	return &API{log: log, routing: routing}
}

// Handler returns the full middleware chain: CORS, then request logging,
// then the route table.
func (api *API) Handler() http.Handler {
	router := httprouter.New()
	router.POST("/route", api.handleRoute)
	router.POST("/trace-route", api.handleTraceRoute)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	chain := alice.New(corsHandler.Handler, api.logRequests)
	return chain.Then(router)
}

func (api *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		api.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (api *API) handleRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req usecases.RouteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, 400, err.Error())
		return
	}

	result, err := api.routing.Route(req)
	if err != nil {
		var routeErr *thor.RouteError
		if errors.As(err, &routeErr) {
			writeError(w, routeErr.HTTPStatus, routeErr.InternalCode, routeErr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, 400, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toResponse(result))
}

func (api *API) handleTraceRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req usecases.TraceRouteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, 400, err.Error())
		return
	}

	result, err := api.routing.TraceRoute(req)
	if err != nil {
		var routeErr *thor.RouteError
		if errors.As(err, &routeErr) {
			writeError(w, routeErr.HTTPStatus, routeErr.InternalCode, routeErr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, 400, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toResponse(result))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, httpStatus, code int, message string) {
	resp := errorResponseDTO{}
	resp.Error.Code = code
	resp.Error.Message = message
	writeJSON(w, httpStatus, resp)
}

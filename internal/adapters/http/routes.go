package web

import (
	"net/http"

	"mydaylog/internal/adapters/http/middleware"
)

func registerRoutes(mux *http.ServeMux) {
	auth := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /auth/register", handleRegister)
	mux.HandleFunc("POST /auth/login", handleLogin)
	mux.HandleFunc("POST /auth/guest", handleGuest)
	mux.HandleFunc("POST /auth/refresh", handleRefresh)
	mux.HandleFunc("POST /auth/logout", handleLogout)
	mux.Handle("GET /auth/me", auth(handleGetMe))
	mux.Handle("PATCH /auth/me", auth(handleUpdateMe))
	mux.Handle("DELETE /auth/me", auth(handleDeleteMe))
	mux.Handle("POST /auth/change-pin", auth(handleChangePIN))

	mux.Handle("GET /meals", auth(handleGetMeals))
	mux.Handle("PATCH /meals", auth(handlePatchMeal))
	mux.Handle("PATCH /meals/bulk", auth(handlePatchMealsBulk))
	mux.Handle("GET /meals/stats", auth(handleGetMealStats))
	mux.Handle("GET /meals/report", auth(handleGetMonthReport))

	mux.Handle("GET /user-settings", auth(handleGetSettings))
	mux.Handle("PATCH /user-settings", auth(handleUpdateSettings))

	if opts.EnablePerf {
		mux.HandleFunc("GET /debug/perf", handlePerf)
	}
}

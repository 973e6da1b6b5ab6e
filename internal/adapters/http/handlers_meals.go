package web

import (
	"net/http"
	"time"

	"mydaylog/internal/adapters/email"
	"mydaylog/internal/application/orchestrators"
	"mydaylog/internal/application/projections"
	"mydaylog/internal/domain/meal"
)

// monthLayout is the wire format of the month query parameter.
const monthLayout = "2006-01"

func patchMeals(w http.ResponseWriter, r *http.Request, patches []meal.Patch) {
	days, err := orchestrators.ExecutePatchMeals(r.Context(), orchestrators.PatchMealsInput{
		AccountID: session(r).AccountID,
		Patches:   patches,
	}, orchestrators.PatchMealsDeps{
		MealStore:       stores.MealStore,
		Now:             opts.Now,
		FutureSlackDays: opts.FutureSlackDays,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	if days == nil {
		days = meal.Month{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "days": days})
}

// handleGetMeals handles GET /meals?from=YYYY-MM-DD&to=YYYY-MM-DD
func handleGetMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := projections.QueryGetMeals(r.Context(), projections.GetMealsQuery{
		AccountID: session(r).AccountID,
		From:      q.Get("from"),
		To:        q.Get("to"),
	}, stores.MealStore)
	if err != nil {
		handleError(w, err)
		return
	}
	if days == nil {
		days = meal.Month{}
	}
	writeJSON(w, http.StatusOK, days)
}

// handlePatchMeal handles PATCH /meals
func handlePatchMeal(w http.ResponseWriter, r *http.Request) {
	var p meal.Patch
	if !strictDecode(w, r, &p) {
		return
	}
	patchMeals(w, r, []meal.Patch{p})
}

// handlePatchMealsBulk handles PATCH /meals/bulk
func handlePatchMealsBulk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []meal.Patch `json:"items"`
	}
	if !strictDecode(w, r, &body) {
		return
	}
	patchMeals(w, r, body.Items)
}

// periodParams reads month=YYYY-MM and today=YYYY-MM-DD, both optional.
// The server's today and its month are the defaults.
func periodParams(r *http.Request) (year int, month time.Month, today time.Time, ok bool) {
	q := r.URL.Query()
	today = meal.Midnight(now())
	if v := q.Get("today"); v != "" {
		d, err := meal.ParseDate(v)
		if err != nil {
			return 0, 0, time.Time{}, false
		}
		today = d
	}
	year, month = today.Year(), today.Month()
	if v := q.Get("month"); v != "" {
		m, err := time.ParseInLocation(monthLayout, v, time.Local)
		if err != nil {
			return 0, 0, time.Time{}, false
		}
		year, month = m.Year(), m.Month()
	}
	return year, month, today, true
}

// handleGetMealStats handles GET /meals/stats?month=YYYY-MM&today=YYYY-MM-DD
func handleGetMealStats(w http.ResponseWriter, r *http.Request) {
	year, month, today, ok := periodParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM and today YYYY-MM-DD")
		return
	}
	accountID := session(r).AccountID
	settings, err := orchestrators.ExecuteGetUserSettings(r.Context(), accountID,
		settingsDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	summary, err := projections.QueryGetMealStats(r.Context(), projections.GetMealStatsQuery{
		AccountID: accountID,
		Year:      year,
		Month:     month,
		Today:     today,
		WeekStart: settings.WeekStart.Weekday(),
	}, stores.MealStore)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleGetMonthReport handles GET /meals/report?month=YYYY-MM.
// Markdown by default; HTML when the client accepts it.
func handleGetMonthReport(w http.ResponseWriter, r *http.Request) {
	year, month, today, ok := periodParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM and today YYYY-MM-DD")
		return
	}
	sess := session(r)
	settings, err := orchestrators.ExecuteGetUserSettings(r.Context(), sess.AccountID,
		settingsDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	name := settings.DisplayName
	if name == "" {
		if acct, err := stores.AccountStore.GetByID(r.Context(), sess.AccountID); err == nil {
			name = acct.FullName
		}
	}
	doc, err := projections.QueryGetMonthReport(r.Context(), projections.GetMonthReportQuery{
		AccountID: sess.AccountID,
		Name:      name,
		Year:      year,
		Month:     month,
		Today:     today,
		WeekStart: settings.WeekStart.Weekday(),
	}, stores.MealStore)
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		html, err := email.RenderMarkdown(doc)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"mydaylog/internal/adapters/http/middleware"
	"mydaylog/internal/adapters/http/perf"
	"mydaylog/internal/adapters/storage"
	accountStore "mydaylog/internal/adapters/storage/account"
	mealStore "mydaylog/internal/adapters/storage/meal"
	settingsStore "mydaylog/internal/adapters/storage/usersettings"
	"mydaylog/internal/domain/meal"
	"mydaylog/internal/domain/usersettings"
)

// testClient drives the API the way the client does: a cookie jar and
// JSON bodies on every request.
type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T) *testClient {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}

	handler := NewMux(&Stores{
		AccountStore:  accountStore.NewSQLiteStore(db),
		MealStore:     mealStore.NewSQLiteStore(db),
		SettingsStore: settingsStore.NewSQLiteStore(db),
	}, perf.NewCollector(100), Options{
		JWTSecret:          []byte("test-secret"),
		CSRFKey:            bytes.Repeat([]byte{7}, 32),
		RateLimitPerSecond: 1000,
		FutureSlackDays:    1,
		EnablePerf:         true,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &testClient{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (c *testClient) do(method, path string, body, out any) int {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c *testClient) cookie(path, name string) string {
	u, _ := url.Parse(c.base + path)
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

type userBody struct {
	User struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Guest    bool   `json:"guest"`
	} `json:"user"`
}

type messageBody struct {
	Message string `json:"message"`
}

func (c *testClient) register(email string) userBody {
	c.t.Helper()
	var u userBody
	status := c.do("POST", "/auth/register", map[string]string{
		"full_name": "Ana Lopez", "email": email, "pin": "4821", "confirm_pin": "4821",
	}, &u)
	if status != http.StatusCreated {
		c.t.Fatalf("register status = %d", status)
	}
	return u
}

// TestAuthFlow tests register, me, logout and login against real stores.
func TestAuthFlow(t *testing.T) {
	c := newTestServer(t)
	u := c.register("Ana@Example.com")
	if u.User.Email != "ana@example.com" || u.User.FullName != "Ana Lopez" || u.User.Guest {
		t.Fatalf("register user = %+v", u.User)
	}

	var me userBody
	if status := c.do("GET", "/auth/me", nil, &me); status != http.StatusOK || me.User.ID != u.User.ID {
		t.Fatalf("me = %d %+v", status, me.User)
	}

	if status := c.do("POST", "/auth/logout", nil, nil); status != http.StatusOK {
		t.Fatalf("logout status = %d", status)
	}
	if status := c.do("GET", "/auth/me", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", status)
	}

	var msg messageBody
	if status := c.do("POST", "/auth/login", map[string]string{"email": "ana@example.com", "pin": "0000"}, &msg); status != http.StatusForbidden && status != http.StatusUnauthorized {
		t.Errorf("wrong PIN status = %d", status)
	}
	if status := c.do("POST", "/auth/login", map[string]string{"email": "ana@example.com", "pin": "4821"}, &me); status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
	if status := c.do("GET", "/auth/me", nil, nil); status != http.StatusOK {
		t.Errorf("me after login = %d", status)
	}
}

// TestRefresh_RotatesToken tests that a refresh token works exactly once.
func TestRefresh_RotatesToken(t *testing.T) {
	c := newTestServer(t)
	c.register("ana@example.com")

	old := c.cookie("/auth", middleware.RefreshCookieName)
	if old == "" {
		t.Fatal("no refresh cookie after register")
	}
	if status := c.do("POST", "/auth/refresh", nil, nil); status != http.StatusOK {
		t.Fatalf("refresh status = %d", status)
	}
	if fresh := c.cookie("/auth", middleware.RefreshCookieName); fresh == "" || fresh == old {
		t.Fatalf("refresh cookie not rotated")
	}

	req, _ := http.NewRequest("POST", c.base+"/auth/refresh", nil)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.RefreshCookieName, Value: old})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("replayed refresh status = %d, want 401", resp.StatusCode)
	}
}

// TestAuthErrors tests the status codes of rejected auth requests.
func TestAuthErrors(t *testing.T) {
	c := newTestServer(t)
	c.register("ana@example.com")

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"duplicate email", "/auth/register", map[string]string{"full_name": "Ana Lopez", "email": "ana@example.com", "pin": "1111", "confirm_pin": "1111"}, http.StatusConflict},
		{"short pin", "/auth/register", map[string]string{"full_name": "Bo Diaz", "email": "bo@example.com", "pin": "11", "confirm_pin": "11"}, http.StatusBadRequest},
		{"pin mismatch", "/auth/register", map[string]string{"full_name": "Bo Diaz", "email": "bo@example.com", "pin": "1111", "confirm_pin": "2222"}, http.StatusBadRequest},
		{"one word name", "/auth/register", map[string]string{"full_name": "Bo", "email": "bo@example.com", "pin": "1111", "confirm_pin": "1111"}, http.StatusBadRequest},
		{"unknown field", "/auth/login", map[string]string{"email": "ana@example.com", "pin": "4821", "remember": "yes"}, http.StatusBadRequest},
		{"unknown email", "/auth/login", map[string]string{"email": "zed@example.com", "pin": "4821"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg messageBody
			if got := c.do("POST", tt.path, tt.body, &msg); got != tt.want {
				t.Errorf("status = %d, want %d (%s)", got, tt.want, msg.Message)
			}
			if msg.Message == "" {
				t.Error("error body has no message")
			}
		})
	}
}

// TestLogin_Lockout tests that repeated wrong PINs lock the account.
func TestLogin_Lockout(t *testing.T) {
	c := newTestServer(t)
	c.register("ana@example.com")
	c.do("POST", "/auth/logout", nil, nil)

	for i := 0; i < 5; i++ {
		c.do("POST", "/auth/login", map[string]string{"email": "ana@example.com", "pin": "0000"}, nil)
	}
	if got := c.do("POST", "/auth/login", map[string]string{"email": "ana@example.com", "pin": "4821"}, nil); got != http.StatusLocked {
		t.Errorf("status after lockout = %d, want 423", got)
	}
}

// TestGuest_CannotChangePIN tests guest sessions and their restrictions.
func TestGuest_CannotChangePIN(t *testing.T) {
	c := newTestServer(t)
	var u userBody
	if status := c.do("POST", "/auth/guest", nil, &u); status != http.StatusCreated || !u.User.Guest {
		t.Fatalf("guest = %d %+v", status, u.User)
	}
	got := c.do("POST", "/auth/change-pin", map[string]string{"current_pin": "1234", "new_pin": "5678", "confirm_pin": "5678"}, nil)
	if got != http.StatusForbidden {
		t.Errorf("guest change-pin = %d, want 403", got)
	}
}

// TestChangePIN tests that a changed PIN is required on the next login.
func TestChangePIN(t *testing.T) {
	c := newTestServer(t)
	c.register("ana@example.com")

	if got := c.do("POST", "/auth/change-pin", map[string]string{"current_pin": "0000", "new_pin": "5678", "confirm_pin": "5678"}, nil); got != http.StatusForbidden {
		t.Errorf("wrong current PIN = %d, want 403", got)
	}
	if got := c.do("POST", "/auth/change-pin", map[string]string{"current_pin": "4821", "new_pin": "5678", "confirm_pin": "5678"}, nil); got != http.StatusOK {
		t.Fatalf("change-pin = %d", got)
	}
	c.do("POST", "/auth/logout", nil, nil)
	if got := c.do("POST", "/auth/login", map[string]string{"email": "ana@example.com", "pin": "5678"}, nil); got != http.StatusOK {
		t.Errorf("login with new PIN = %d", got)
	}
}

// TestProfileUpdateAndDelete tests PATCH and DELETE /auth/me.
func TestProfileUpdateAndDelete(t *testing.T) {
	c := newTestServer(t)
	c.register("ana@example.com")

	var u userBody
	if got := c.do("PATCH", "/auth/me", map[string]string{"full_name": "Ana Maria Lopez", "email": "ana.lopez@example.com"}, &u); got != http.StatusOK {
		t.Fatalf("update = %d", got)
	}
	if u.User.Email != "ana.lopez@example.com" || u.User.FullName != "Ana Maria Lopez" {
		t.Errorf("updated user = %+v", u.User)
	}

	if got := c.do("DELETE", "/auth/me", nil, nil); got != http.StatusOK {
		t.Fatalf("delete = %d", got)
	}
	if got := c.do("POST", "/auth/login", map[string]string{"email": "ana.lopez@example.com", "pin": "4821"}, nil); got != http.StatusUnauthorized {
		t.Errorf("login after delete = %d, want 401", got)
	}
}

// TestRequireAuth tests that protected routes reject anonymous requests.
func TestRequireAuth(t *testing.T) {
	c := newTestServer(t)
	for _, path := range []string{"/meals?from=2024-03-01&to=2024-03-31", "/meals/stats", "/user-settings", "/auth/me"} {
		if got := c.do("GET", path, nil, nil); got != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, got)
		}
	}
}

// TestCSRF_RejectsFormPost tests that a cross-site form post is refused.
func TestCSRF_RejectsFormPost(t *testing.T) {
	c := newTestServer(t)
	resp, err := c.http.Post(c.base+"/auth/login", "application/x-www-form-urlencoded", strings.NewReader("email=a&pin=1"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("form post status = %d, want 403", resp.StatusCode)
	}
}

// TestMeals_PatchAndRange tests single and bulk patches and the range read.
func TestMeals_PatchAndRange(t *testing.T) {
	c := newTestServer(t)
	c.register("ana@example.com")

	today := meal.Midnight(time.Now())
	d0, d1, d2 := meal.DateKey(today), meal.DateKey(today.AddDate(0, 0, -1)), meal.DateKey(today.AddDate(0, 0, -2))

	var res struct {
		OK   bool       `json:"ok"`
		Days meal.Month `json:"days"`
	}
	if got := c.do("PATCH", "/meals", map[string]string{"date": d0, "lunch_status": "received"}, &res); got != http.StatusOK || !res.OK {
		t.Fatalf("patch = %d %+v", got, res)
	}
	if res.Days[d0].StatusOf(meal.Lunch) != meal.StatusReceived {
		t.Errorf("patch response days = %+v", res.Days)
	}

	bulk := map[string]any{"items": []map[string]string{
		{"date": d1, "dinner_status": "skipped", "dinner_reason": "late shift"},
		{"date": d2, "lunch_status": "received", "dinner_status": "received"},
	}}
	if got := c.do("PATCH", "/meals/bulk", bulk, nil); got != http.StatusOK {
		t.Fatalf("bulk = %d", got)
	}

	var days meal.Month
	if got := c.do("GET", "/meals?from="+d2+"&to="+d0, nil, &days); got != http.StatusOK {
		t.Fatalf("range = %d", got)
	}
	if len(days) != 3 {
		t.Fatalf("range days = %d, want 3: %+v", len(days), days)
	}
	if e := days[d1].Dinner; e == nil || e.Status != meal.StatusSkipped || e.Reason != "late shift" {
		t.Errorf("dinner %s = %+v", d1, e)
	}

	// clearing the only slot removes the day
	c.do("PATCH", "/meals", map[string]string{"date": d0, "lunch_status": ""}, nil)
	days = nil
	c.do("GET", "/meals?from="+d0+"&to="+d0, nil, &days)
	if days == nil || len(days) != 0 {
		t.Errorf("cleared range = %+v, want empty object", days)
	}
}

// TestMeals_Rejections tests validation errors on the meal routes.
func TestMeals_Rejections(t *testing.T) {
	c := newTestServer(t)
	c.register("ana@example.com")

	future := meal.DateKey(meal.Midnight(time.Now()).AddDate(0, 0, 3))
	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"future date", "PATCH", "/meals", map[string]string{"date": future, "lunch_status": "received"}},
		{"bad status", "PATCH", "/meals", map[string]string{"date": "2024-03-01", "lunch_status": "eaten"}},
		{"bad date", "PATCH", "/meals", map[string]string{"date": "03/01/2024", "lunch_status": "received"}},
		{"empty patch", "PATCH", "/meals", map[string]string{"date": "2024-03-01"}},
		{"empty bulk", "PATCH", "/meals/bulk", map[string]any{"items": []any{}}},
		{"reversed range", "GET", "/meals?from=2024-03-10&to=2024-03-01", nil},
		{"missing range", "GET", "/meals", nil},
		{"bad month", "GET", "/meals/stats?month=2024-13", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.do(tt.method, tt.path, tt.body, nil); got != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", got)
			}
		})
	}
}

// TestMeals_StatsAndReport tests the stats and report projections over HTTP.
func TestMeals_StatsAndReport(t *testing.T) {
	c := newTestServer(t)
	c.register("ana@example.com")
	c.do("PATCH", "/meals/bulk", map[string]any{"items": []map[string]string{
		{"date": "2024-03-01", "lunch_status": "received", "dinner_status": "received"},
		{"date": "2024-03-02", "lunch_status": "skipped", "lunch_reason": "meeting"},
	}}, nil)

	var s meal.Summary
	if got := c.do("GET", "/meals/stats?month=2024-03&today=2024-03-02", nil, &s); got != http.StatusOK {
		t.Fatalf("stats = %d", got)
	}
	if s.Month.Lunch.Received != 1 || s.Month.Lunch.Skipped != 1 || s.Month.Lunch.Total != 31 {
		t.Errorf("month lunch = %+v", s.Month.Lunch)
	}
	if s.Streak != 0 {
		t.Errorf("streak = %d, want 0", s.Streak)
	}

	req, _ := http.NewRequest("GET", c.base+"/meals/report?month=2024-03&today=2024-03-02", nil)
	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(body), "# Meal report: March 2024") || !strings.Contains(string(body), "meeting") {
		t.Errorf("report body:\n%s", body)
	}

	req, _ = http.NewRequest("GET", c.base+"/meals/report?month=2024-03", nil)
	req.Header.Set("Accept", "text/html")
	resp, err = c.http.Do(req)
	if err != nil {
		t.Fatalf("html report: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "<h1>") || !strings.Contains(string(body), "<table>") {
		t.Errorf("html report:\n%s", body)
	}
}

// TestUserSettings tests lazy defaults, partial updates and validation.
func TestUserSettings(t *testing.T) {
	c := newTestServer(t)
	u := c.register("ana@example.com")

	var s usersettings.Settings
	if got := c.do("GET", "/user-settings", nil, &s); got != http.StatusOK {
		t.Fatalf("get = %d", got)
	}
	if s.UserID != u.User.ID || s.Theme != usersettings.ThemeLight || s.WeekStart != usersettings.WeekStartMon {
		t.Errorf("defaults = %+v", s)
	}

	if got := c.do("PATCH", "/user-settings", map[string]any{"theme": "dark", "meal_reminder_enabled": true}, &s); got != http.StatusOK {
		t.Fatalf("patch = %d", got)
	}
	if s.Theme != usersettings.ThemeDark || s.MealReminderTime != usersettings.DefaultReminderTime {
		t.Errorf("patched = %+v", s)
	}

	if got := c.do("PATCH", "/user-settings", map[string]any{"week_start": "Tue"}, nil); got != http.StatusBadRequest {
		t.Errorf("bad week start = %d, want 400", got)
	}
	s = usersettings.Settings{}
	c.do("GET", "/user-settings", nil, &s)
	if s.WeekStart != usersettings.WeekStartMon || s.Theme != usersettings.ThemeDark {
		t.Errorf("rejected patch leaked: %+v", s)
	}
}

// TestHealthAndPerf tests the unauthenticated operational routes.
func TestHealthAndPerf(t *testing.T) {
	c := newTestServer(t)
	if got := c.do("GET", "/healthz", nil, nil); got != http.StatusOK {
		t.Errorf("healthz = %d", got)
	}
	var snap map[string]any
	if got := c.do("GET", "/debug/perf?minutes=5", nil, &snap); got != http.StatusOK {
		t.Errorf("perf = %d", got)
	}
}

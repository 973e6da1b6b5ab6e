package localstate

import (
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

// Cookie is a session cookie kept across CLI runs.
type Cookie struct {
	URL     string    `yaml:"url"`
	Name    string    `yaml:"name"`
	Value   string    `yaml:"value"`
	Path    string    `yaml:"path,omitempty"`
	Expires time.Time `yaml:"expires,omitempty"`
}

// Jar is an http.CookieJar that writes every cookie it accepts to the state
// file and replays them on start.
type Jar struct {
	inner *cookiejar.Jar
	store *Store
	mu    sync.Mutex
	now   func() time.Time
}

// Jar returns a cookie jar loaded from the persisted cookies.
// PRE: none
// POST: unexpired persisted cookies are present in the jar
func (s *Store) Jar() (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &Jar{inner: inner, store: s, now: time.Now}
	for _, c := range s.Get().Cookies {
		u, err := url.Parse(c.URL)
		if err != nil {
			continue
		}
		if !c.Expires.IsZero() && !c.Expires.After(j.now()) {
			continue
		}
		inner.SetCookies(u, []*http.Cookie{{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires}})
	}
	return j, nil
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// SetCookies implements http.CookieJar.
// POST: deleted or expired cookies are also removed from the state file
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()
	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
	err := j.store.Update(func(st *State) {
		for _, c := range cookies {
			path := c.Path
			if path == "" {
				path = "/"
			}
			kept := st.Cookies[:0]
			for _, old := range st.Cookies {
				if old.URL != origin || old.Name != c.Name || old.Path != path {
					kept = append(kept, old)
				}
			}
			st.Cookies = kept
			gone := c.MaxAge < 0 || c.Value == "" || (!c.Expires.IsZero() && !c.Expires.After(j.now()))
			if !gone {
				st.Cookies = append(st.Cookies, Cookie{URL: origin, Name: c.Name, Value: c.Value, Path: path, Expires: c.Expires})
			}
		}
	})
	if err != nil {
		slog.Warn("state_event", "event", "cookie_save_failed", "error", err)
	}
}

// Clear forgets every persisted cookie. The in-memory jar keeps what it has
// until the process exits.
func (j *Jar) Clear() error {
	return j.store.Update(func(st *State) { st.Cookies = nil })
}

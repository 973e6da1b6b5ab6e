package web

import (
	"errors"
	"net/http"
	"time"

	"mydaylog/internal/adapters/http/middleware"
	"mydaylog/internal/adapters/storage"
	"mydaylog/internal/application/orchestrators"
	"mydaylog/internal/domain/account"
)

// userResponse is the public view of an account.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Guest     bool      `json:"guest"`
	CreatedAt time.Time `json:"created_at"`
}

func toUser(a account.Account) map[string]userResponse {
	return map[string]userResponse{"user": {
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Guest:     a.Guest,
		CreatedAt: a.CreatedAt,
	}}
}

// startSession mints an access token and sets both auth cookies.
func startSession(w http.ResponseWriter, res orchestrators.SessionResult) error {
	access, exp, err := tokens.Issue(res.Account.ID, res.Account.Email, res.Account.Guest)
	if err != nil {
		return err
	}
	middleware.SetAuthCookies(w, access, exp, res.RefreshToken, res.RefreshExpiresAt, opts.SecureCookies)
	return nil
}

func respondSession(w http.ResponseWriter, status int, res orchestrators.SessionResult, err error) {
	if err != nil {
		handleError(w, err)
		return
	}
	if err := startSession(w, res); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, status, toUser(res.Account))
}

// handleRegister handles POST /auth/register
func handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName   string `json:"full_name"`
		Email      string `json:"email"`
		PIN        string `json:"pin"`
		ConfirmPIN string `json:"confirm_pin"`
	}
	if !strictDecode(w, r, &body) {
		return
	}
	res, err := orchestrators.ExecuteRegister(r.Context(), orchestrators.RegisterInput{
		FullName:   body.FullName,
		Email:      body.Email,
		PIN:        body.PIN,
		ConfirmPIN: body.ConfirmPIN,
	}, orchestrators.RegisterDeps{AccountStore: stores.AccountStore, Now: opts.Now})
	respondSession(w, http.StatusCreated, res, err)
}

// handleLogin handles POST /auth/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		PIN   string `json:"pin"`
	}
	if !strictDecode(w, r, &body) {
		return
	}
	res, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{Email: body.Email, PIN: body.PIN},
		orchestrators.LoginDeps{AccountStore: stores.AccountStore, Now: opts.Now})
	respondSession(w, http.StatusOK, res, err)
}

// handleGuest handles POST /auth/guest
func handleGuest(w http.ResponseWriter, r *http.Request) {
	res, err := orchestrators.ExecuteGuest(r.Context(), orchestrators.GuestDeps{AccountStore: stores.AccountStore, Now: opts.Now})
	respondSession(w, http.StatusCreated, res, err)
}

// handleRefresh handles POST /auth/refresh
func handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := orchestrators.ExecuteRefreshSession(r.Context(), middleware.RefreshToken(r),
		orchestrators.RefreshDeps{AccountStore: stores.AccountStore, Now: opts.Now})
	if errors.Is(err, account.ErrRefreshInvalid) {
		middleware.ClearAuthCookies(w, opts.SecureCookies)
	}
	respondSession(w, http.StatusOK, res, err)
}

// handleLogout handles POST /auth/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteLogout(r.Context(), middleware.RefreshToken(r), stores.AccountStore); err != nil {
		internalError(w, err)
		return
	}
	middleware.ClearAuthCookies(w, opts.SecureCookies)
	writeOK(w)
}

// handleGetMe handles GET /auth/me
func handleGetMe(w http.ResponseWriter, r *http.Request) {
	acct, err := stores.AccountStore.GetByID(r.Context(), session(r).AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		// token outlived its account
		middleware.ClearAuthCookies(w, opts.SecureCookies)
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(acct))
}

// handleUpdateMe handles PATCH /auth/me
func handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if !strictDecode(w, r, &body) {
		return
	}
	acct, err := orchestrators.ExecuteUpdateProfile(r.Context(), orchestrators.UpdateProfileInput{
		AccountID: session(r).AccountID,
		FullName:  body.FullName,
		Email:     body.Email,
	}, orchestrators.UpdateProfileDeps{AccountStore: stores.AccountStore})
	if err != nil {
		handleError(w, err)
		return
	}
	// the access token carries the email
	access, exp, err := tokens.Issue(acct.ID, acct.Email, acct.Guest)
	if err != nil {
		internalError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name: middleware.AccessCookieName, Value: access, Path: "/", Expires: exp,
		HttpOnly: true, Secure: opts.SecureCookies, SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, toUser(acct))
}

// handleDeleteMe handles DELETE /auth/me
func handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteAccount(r.Context(), session(r).AccountID, stores.AccountStore); err != nil {
		internalError(w, err)
		return
	}
	middleware.ClearAuthCookies(w, opts.SecureCookies)
	writeOK(w)
}

// handleChangePIN handles POST /auth/change-pin
func handleChangePIN(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPIN string `json:"current_pin"`
		NewPIN     string `json:"new_pin"`
		ConfirmPIN string `json:"confirm_pin"`
	}
	if !strictDecode(w, r, &body) {
		return
	}
	res, err := orchestrators.ExecuteChangePIN(r.Context(), orchestrators.ChangePINInput{
		AccountID:  session(r).AccountID,
		CurrentPIN: body.CurrentPIN,
		NewPIN:     body.NewPIN,
		ConfirmPIN: body.ConfirmPIN,
	}, orchestrators.ChangePINDeps{AccountStore: stores.AccountStore, Now: opts.Now})
	respondSession(w, http.StatusOK, res, err)
}

package web

import (
	"crypto/rand"
	"crypto/subtle"
	"net/http"
)

const (
	csrfCookieName = "gitcollection_csrf"
	csrfFormField  = "csrf_token"
)

// csrfToken returns the token for the lookup form, reusing the request's
// cookie or issuing a new one.
func csrfToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token := rand.Text()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	return token
}

// validCSRF reports whether the submitted form field matches the cookie.
func validCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token := r.PostFormValue(csrfFormField)
	return subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) == 1
}

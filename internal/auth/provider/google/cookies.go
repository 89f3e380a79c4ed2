package google

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"
)

const (
	stateCookieName = "__oauth_state"
	pkceCookieName  = "__oauth_pkce"
	flowCookieTTL   = 5 * time.Minute
)

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flowCookieTTL.Seconds()),
	})
}

func clearFlowCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func generateState(w http.ResponseWriter) (string, error) {
	state, err := randomToken()
	if err != nil {
		return "", err
	}
	setFlowCookie(w, stateCookieName, state)
	return state, nil
}

func validateState(r *http.Request) bool {
	stateQuery := r.URL.Query().Get("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return false
	}

	return cookie.Value == stateQuery
}

func generatePKCE(w http.ResponseWriter) (verifier string, challenge string, err error) {
	verifier, err = randomToken()
	if err != nil {
		return "", "", err
	}

	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])

	setFlowCookie(w, pkceCookieName, verifier)
	return verifier, challenge, nil
}

func getPKCEVerifier(r *http.Request) string {
	cookie, err := r.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

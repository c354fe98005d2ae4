package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"mochiteach/internal/security"
)

// Flash is a one-shot toast notification carried across a redirect
type Flash struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity"` // "success", "error" or "info"
}

// SetFlash stores a toast in a short-lived cookie, shown on the next page
func SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) {
	payload, err := json.Marshal(flash)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the pending toast, nil when there is none
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, FlashCookieName))

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	flash := &Flash{}
	if err := json.Unmarshal(payload, flash); err != nil {
		return nil
	}
	return flash
}

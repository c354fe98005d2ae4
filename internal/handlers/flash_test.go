package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundTrip(t *testing.T) {
	// Set the flash on one response
	setRec := httptest.NewRecorder()
	setReq := httptest.NewRequest("POST", "/lessons/save", nil)
	SetFlash(setRec, setReq, Flash{Title: "Lesson created!", Description: "Fruits", Severity: "success"})

	cookies := setRec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != FlashCookieName {
		t.Fatalf("SetFlash set cookies %v", cookies)
	}

	// Carry it into the next request
	popRec := httptest.NewRecorder()
	popReq := httptest.NewRequest("GET", "/lessons", nil)
	popReq.AddCookie(cookies[0])

	flash := PopFlash(popRec, popReq)
	if flash == nil {
		t.Fatal("PopFlash() returned nil for a set flash")
	}
	if flash.Title != "Lesson created!" || flash.Description != "Fruits" || flash.Severity != "success" {
		t.Errorf("PopFlash() = %+v", flash)
	}

	// Popping clears the cookie
	var cleared bool
	for _, c := range popRec.Result().Cookies() {
		if c.Name == FlashCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("PopFlash did not clear the flash cookie")
	}
}

func TestPopFlashWithoutCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/lessons", nil)

	if flash := PopFlash(rec, req); flash != nil {
		t.Errorf("PopFlash() = %+v, want nil", flash)
	}
}

func TestPopFlashGarbageCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/lessons", nil)
	req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "!!not-base64!!"})

	if flash := PopFlash(rec, req); flash != nil {
		t.Errorf("PopFlash() = %+v, want nil for a corrupt cookie", flash)
	}
}

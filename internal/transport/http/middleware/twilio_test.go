package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const testAuthToken = "twilio-test-token"

func signedRequest(t *testing.T, form url.Values, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "http://sawa.example/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	params := map[string][]string{}
	for key, values := range form {
		params[key] = values
	}
	req.Header.Set("X-Twilio-Signature", computeTwilioSignature(token, "http://sawa.example/webhook/whatsapp", params))
	return req
}

func TestTwilioSignatureAccepted(t *testing.T) {
	handler := TwilioSignature(testAuthToken, false)(okHandler())

	form := url.Values{"From": {"whatsapp:+2348012345678"}, "Body": {"MENU"}}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest(t, form, testAuthToken))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTwilioSignatureRejected(t *testing.T) {
	handler := TwilioSignature(testAuthToken, false)(okHandler())

	form := url.Values{"From": {"whatsapp:+2348012345678"}, "Body": {"MENU"}}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest(t, form, "wrong-token"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestTwilioSignatureMissingHeader(t *testing.T) {
	handler := TwilioSignature(testAuthToken, false)(okHandler())

	form := url.Values{"Body": {"MENU"}}
	req := httptest.NewRequest("POST", "http://sawa.example/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestTwilioSignatureSkipped(t *testing.T) {
	handler := TwilioSignature(testAuthToken, true)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, senderRequest("whatsapp:+2348012345678"))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTwilioSignatureNoTokenConfigured(t *testing.T) {
	handler := TwilioSignature("", false)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, senderRequest("whatsapp:+2348012345678"))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
}

package resend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("request = %s %s, want POST /emails", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"id": "d6a8e91f"}`))
	}))
	defer srv.Close()

	c := New("re_test", srv.URL, "Alerts <alerts@example.com>", 5*time.Second)
	if err := c.Send(context.Background(), "sub@example.com", "RKLB crossed a line", "<p>hi</p>"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.From != "Alerts <alerts@example.com>" {
		t.Errorf("From = %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "sub@example.com" {
		t.Errorf("To = %v", got.To)
	}
	if got.Subject != "RKLB crossed a line" {
		t.Errorf("Subject = %q", got.Subject)
	}
}

func TestSendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := New("re_test", srv.URL, "bad", 5*time.Second)
	if err := c.Send(context.Background(), "sub@example.com", "s", "<p></p>"); err == nil {
		t.Fatal("expected error on 422")
	}
}

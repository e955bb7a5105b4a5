package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTwilioSender_Send(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sender := NewTwilioSender("AC123", "secret", "+15550000000")
	sender.baseURL = server.URL

	if err := sender.Send(context.Background(), "+15551234567", "hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotUser != "AC123" || gotPass != "secret" {
		t.Fatal("basic auth credentials not forwarded")
	}
	if gotTo != "+15551234567" || gotFrom != "+15550000000" || gotBody != "hello" {
		t.Fatalf("unexpected form values to=%q from=%q body=%q", gotTo, gotFrom, gotBody)
	}
}

func TestTwilioSender_Rejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Authenticate"}`))
	}))
	defer server.Close()

	sender := NewTwilioSender("AC123", "wrong", "+15550000000")
	sender.baseURL = server.URL

	if err := sender.Send(context.Background(), "+15551234567", "hello"); err == nil {
		t.Fatal("expected error for rejected message")
	}
}

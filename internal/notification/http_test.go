package notification

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

// newTestSource builds an HTTPSource and exposes its router directly
// via httptest, bypassing ListenAndServe/net binding.
func newTestSource(buffer int) (*HTTPSource, *httptest.Server) {
	s := &HTTPSource{
		notifications: make(chan *PushNotification, buffer),
		closed:        make(chan struct{}),
	}
	router := mux.NewRouter()
	router.HandleFunc("/hooks/push", s.handlePush).Methods(http.MethodPost)
	return s, httptest.NewServer(router)
}

func TestHTTPSourceAcceptsValidPush(t *testing.T) {
	s, ts := newTestSource(1)
	defer ts.Close()

	body := []byte(`{"clone_url":"https://github.com/kyledewey/gradr.git","branch":"main"}`)
	resp, err := http.Post(ts.URL+"/hooks/push", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	n, err := s.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == nil || n.Branch != "main" || n.CloneURL.ProjectName() != "gradr" {
		t.Errorf("got %+v, want branch=main project=gradr", n)
	}
}

func TestHTTPSourceRejectsInvalidCloneURL(t *testing.T) {
	_, ts := newTestSource(1)
	defer ts.Close()

	body := []byte(`{"clone_url":"not-a-clone-url","branch":"main"}`)
	resp, err := http.Post(ts.URL+"/hooks/push", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHTTPSourceRejectsMalformedJSON(t *testing.T) {
	_, ts := newTestSource(1)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/hooks/push", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kyledewey/gradr/internal/cloneurl"
	"github.com/kyledewey/gradr/internal/logger"
)

// pushPayload is the wire shape POSTed to /hooks/push.
type pushPayload struct {
	CloneURL string `json:"clone_url"`
	Branch   string `json:"branch"`
}

// HTTPSource serves a webhook endpoint and feeds accepted
// notifications into an internal buffered channel. It performs no
// authentication; it trusts its caller.
type HTTPSource struct {
	server        *http.Server
	notifications chan *PushNotification
	closed        chan struct{}
}

// NewHTTPSource builds an HTTPSource listening at addr, routing
// POST /hooks/push through gorilla/mux.
func NewHTTPSource(addr string, buffer int) *HTTPSource {
	s := &HTTPSource{
		notifications: make(chan *PushNotification, buffer),
		closed:        make(chan struct{}),
	}

	router := mux.NewRouter()
	router.HandleFunc("/hooks/push", s.handlePush).Methods(http.MethodPost)

	s.server = &http.Server{Addr: addr, Handler: router}
	return s
}

// ListenAndServe starts accepting webhook requests. It blocks until
// the server is shut down via Close, returning nil in that case
// (http.ErrServerClosed is not reported as an error to the caller).
func (s *HTTPSource) ListenAndServe() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *HTTPSource) handlePush(w http.ResponseWriter, r *http.Request) {
	var payload pushPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Errorf("malformed push notification payload: %v", err)
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	cu, err := cloneurl.Parse(payload.CloneURL)
	if err != nil {
		logger.Errorf("rejected push notification: %v", err)
		http.Error(w, "invalid clone_url", http.StatusBadRequest)
		return
	}

	select {
	case s.notifications <- &PushNotification{CloneURL: cu, Branch: payload.Branch}:
		w.WriteHeader(http.StatusAccepted)
	case <-s.closed:
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
	}
}

func (s *HTTPSource) Next(ctx context.Context) (*PushNotification, error) {
	select {
	case n, ok := <-s.notifications:
		if !ok {
			return nil, nil
		}
		return n, nil
	case <-s.closed:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *HTTPSource) Step(ctx context.Context, store Enqueuer) (bool, error) {
	return BaseStep(ctx, s, store)
}

// Close shuts down the HTTP server and unblocks any pending Next call.
func (s *HTTPSource) Close(ctx context.Context) error {
	close(s.closed)
	return s.server.Shutdown(ctx)
}

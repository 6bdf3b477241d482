package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/jlewi/qline/pkg/eventqueue"
	"github.com/jlewi/qline/pkg/util"
	"github.com/palantir/go-githubapp/githubapp"
)

const healthPath = "/healthz"
const livePath = "/livez"

// NewRouter wires the GitHub webhook route (HMAC-verified by
// githubapp.NewEventDispatcher against webhookSecret), a liveness path that
// enqueues a Ping event, and a /healthz that never touches the queue.
func NewRouter(handler *Handler, webhookSecret []byte, queue *eventqueue.Queue, log logr.Logger) *mux.Router {
	dispatcher := githubapp.NewEventDispatcher(
		[]githubapp.EventHandler{handler},
		string(webhookSecret),
		githubapp.WithErrorCallback(errorCallback(log)),
	)

	router := mux.NewRouter().StrictSlash(true)
	router.Handle(githubapp.DefaultWebhookRoute, dispatcher)
	router.HandleFunc(healthPath, healthCheck)
	router.HandleFunc(livePath, liveness(queue))
	return router
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, "ok")
}

// liveness enqueues a Ping event so an operator can confirm the Dispatcher
// loop is still consuming, without that check ever blocking on queue
// capacity — it uses TryPush just like any other producer.
func liveness(queue *eventqueue.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !queue.TryPush(queue.Ping("livez")) {
			writeStatus(w, http.StatusServiceUnavailable, "event queue is full")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	}
}

// errorCallback maps Handle's sentinel errors to HTTP status codes the way
// the teacher's LogErrorCallback logs them, generalized to distinguish
// backpressure (503, so GitHub retries) from everything else (500).
func errorCallback(log logr.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		log = log.WithValues(
			"githubHookID", r.Header.Get("X-GitHub-Hook-ID"),
			"eventType", r.Header.Get("X-GitHub-Event"),
			"deliveryID", r.Header.Get("X-GitHub-Delivery"),
		)
		log.Error(err, "failed to handle GitHub webhook")

		code := http.StatusInternalServerError
		if errors.Is(err, ErrQueueFull) {
			code = http.StatusServiceUnavailable
		}
		writeStatus(w, code, err.Error())
	}
}

func writeStatus(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", util.ContentTypeJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

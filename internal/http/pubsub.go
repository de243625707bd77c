package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/halisahaclub/halisaha/internal/pubsub"
)

// pushMessage is the envelope a Pub/Sub push subscription delivers.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"`
	} `json:"message"`
}

// decodePushMessage unwraps the push envelope and decodes the msgpack payload
// into event. It writes the error response itself and reports success.
func (s *Server) decodePushMessage(w http.ResponseWriter, r *http.Request, event any) bool {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return false
	}
	log.Debug("Received push message", "url", r.URL.Path, "body", string(bodyBytes))

	var msg pushMessage
	if err := json.Unmarshal(bodyBytes, &msg); err != nil {
		log.Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}

	rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
	if err != nil {
		log.Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return false
	}

	if err := s.PubSub.ProcessMessage(rawData, event); err != nil {
		log.Error("Failed to decode event payload", "error", err)
		http.Error(w, "Invalid event payload", http.StatusBadRequest)
		return false
	}
	return true
}

// GuestMergedEventHandler consumes guest-merged push messages and announces
// the merge in Slack.
func (s *Server) GuestMergedEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event pubsub.GuestMergedEvent
		if !s.decodePushMessage(w, r, &event) {
			return
		}

		err := s.Notifier.SendMergeCompleted(event.GroupName, event.SourceName, event.TargetName, event.RewrittenMatches, isDryRunFromContext(r))
		if err != nil {
			log.Error("Failed to send merge notification", "error", err, "group", event.GroupID)
			http.Error(w, "Failed to send merge notification", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// GuestsDedupedEventHandler consumes guests-deduped push messages and
// announces the cleanup in Slack.
func (s *Server) GuestsDedupedEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event pubsub.GuestsDedupedEvent
		if !s.decodePushMessage(w, r, &event) {
			return
		}

		if err := s.Notifier.SendDedupCompleted(event.GroupName, event.Collapsed, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send dedup notification", "error", err, "group", event.GroupID)
			http.Error(w, "Failed to send dedup notification", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

/* tba.go
 * Contains the webhook endpoint The Blue Alliance calls when scores and schedules change at the event
 */

package web

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cyber-scout/api/external"
)

// Webhook bodies are small, anything larger is rejected
const maxWebhookBody = 1 << 20

const refreshTimeout = 30 * time.Second

// validSignature checks the X-TBA-HMAC header, the hex sha256 HMAC of the body keyed with the webhook secret
func validSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// decodeData converts the untyped message_data object into one of the typed payloads
func decodeData(data map[string]any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// TBAWebhookHandler HTTP endpoint that receives webhooks from The Blue Alliance.
// Preconditions: HTTP server has been started, receives HTTP ResponseWriter and Http Request
// Postconditions: match_score updates the cached schedule, schedule_updated kicks off a schedule refresh for the
// current event. Verification keys are logged so they can be entered on TBA
func (s *Server) TBAWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if s.secret != "" && !validSignature(s.secret, body, r.Header.Get("X-TBA-HMAC")) {
		s.logger.Warn("rejected webhook with bad signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var message external.WebhookMessage
	if err := json.Unmarshal(body, &message); err != nil || message.MessageType == "" {
		s.logger.Warn("failed to decode webhook", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if s.api != nil {
		s.api.Metrics.Webhook(message.MessageType)
	}

	switch message.MessageType {
	case external.WebhookVerification:
		s.logger.Info("TBA webhook verification", "verification_key", message.MessageData["verification_key"])

	case external.WebhookPing:
		s.logger.Info("TBA webhook ping")

	case external.WebhookMatchScore:
		if err := s.matchScore(r.Context(), message.MessageData); err != nil {
			s.logger.Warn("failed to apply match score", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

	case external.WebhookScheduleUpdated:
		var data external.ScheduleUpdatedData
		if err := decodeData(message.MessageData, &data); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.scheduleUpdated(data)

	default:
		s.logger.Debug("ignoring webhook", "type", message.MessageType)
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) matchScore(ctx context.Context, messageData map[string]any) error {
	var data external.MatchScoreData
	if err := decodeData(messageData, &data); err != nil {
		return err
	}
	if data.Match.Key == "" {
		return fmt.Errorf("match_score without a match")
	}
	if data.Match.EventKey == "" {
		data.Match.EventKey = data.EventKey
	}
	if s.api == nil {
		return nil
	}
	s.logger.Info("TBA match score", "match", data.Match.Key)
	return s.api.ApplyMatchScore(ctx, data.Match)
}

// scheduleUpdated refreshes the schedule in the background, the request context ends when the handler returns
func (s *Server) scheduleUpdated(data external.ScheduleUpdatedData) {
	if s.api == nil || data.EventKey != s.api.Event().Key {
		return
	}
	s.logger.Info("TBA schedule updated", "event", data.EventKey)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := s.api.RefreshSchedule(ctx); err != nil {
			s.logger.Error("schedule refresh failed", "event", data.EventKey, "error", err)
		}
	}()
}

package web

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"chucky-bot/internal/infra/logging"
)

// CommandHandler answers one inbound chat text.
type CommandHandler interface {
	Handle(ctx context.Context, senderID, text string) error
}

// Submitter queues background work; *worker.Pool satisfies it.
type Submitter interface {
	Submit(task func(ctx context.Context) error) error
}

type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Message *struct {
				Text   string `json:"text"`
				IsEcho bool   `json:"is_echo"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

// handleVerify answers the Messenger subscription handshake.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if s.verifyToken == "" || q.Get("hub.mode") != "subscribe" || q.Get("hub.verify_token") != s.verifyToken {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(q.Get("hub.challenge")))
}

const (
	signatureHeader = "X-Hub-Signature-256"
	maxWebhookBody  = 1 << 20
)

// validSignature checks the sha256=<hex> HMAC Messenger sends with every
// delivery, keyed by the app secret.
func (s *Server) validSignature(header string, body []byte) bool {
	if s.appSecret == "" {
		return false
	}
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.appSecret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// handleEvents queues each text message for the command handler and
// acknowledges the delivery straight away. Unsigned deliveries are refused
// before the body is parsed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !s.validSignature(r.Header.Get(signatureHeader), body) {
		logging.With(r.Context(), s.log).Warn().Msg("webhook signature mismatch")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if ev.Object != "page" {
		http.NotFound(w, r)
		return
	}

	traceID := logging.TraceIDFrom(r.Context())
	l := logging.With(r.Context(), s.log)
	for _, entry := range ev.Entry {
		for _, m := range entry.Messaging {
			if m.Message == nil || m.Message.IsEcho || m.Message.Text == "" || m.Sender.ID == "" {
				continue
			}
			senderID, text := m.Sender.ID, m.Message.Text
			err := s.pool.Submit(func(ctx context.Context) error {
				ctx = logging.WithSenderID(logging.WithTraceID(ctx, traceID), senderID)
				return s.commands.Handle(ctx, senderID, text)
			})
			if err != nil {
				l.Warn().Err(err).Str("sender_id", senderID).Msg("dropping inbound message")
			}
		}
	}
	_, _ = w.Write([]byte("EVENT_RECEIVED"))
}

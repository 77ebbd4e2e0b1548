package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"chucky-bot/internal/domain"
	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/infra/logging"

	"github.com/go-playground/validator/v10"
)

// Bot is the feature set exposed by the notify API.
type Bot interface {
	SendWeatherMessage(ctx context.Context, recipientID, city string) (string, error)
	SendSoundcloudMessage(ctx context.Context, recipientID, artist string) (string, error)
	SendStackQuestions(ctx context.Context, recipientID string, filter model.StackFilter) (string, error)
	SendTweet(ctx context.Context, status string) (string, error)
	SendMail(ctx context.Context, to, subject, body string) (string, error)
}

type weatherRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	City        string `json:"city" validate:"required"`
}

type soundcloudRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Artist      string `json:"artist" validate:"required"`
}

type stackRequest struct {
	RecipientID string            `json:"recipient_id" validate:"required"`
	Filter      map[string]string `json:"filter" validate:"required,min=1,dive,keys,required,endkeys,required"`
}

type tweetRequest struct {
	Status string `json:"status" validate:"required,max=280"`
}

type mailRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body"`
}

type textResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errorResponse{Error: msg, Detail: detail})
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "validation failed", verrs[0].Field()+": "+verrs[0].Tag())
			return false
		}
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return false
	}
	return true
}

// respond maps a feature outcome to HTTP: missing credentials are a
// precondition failure, rejected credentials and platform errors are
// upstream failures.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, text string, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, textResponse{Text: text})
		return
	}

	var credErr *domain.CredentialError
	var sendErr *model.SendError
	switch {
	case errors.Is(err, domain.ErrMissingCredential) && errors.As(err, &credErr):
		writeError(w, http.StatusPreconditionFailed, "missing credential", credErr.Provider)
	case errors.Is(err, domain.ErrInvalidCredential) && errors.As(err, &credErr):
		writeError(w, http.StatusBadGateway, "invalid credential", credErr.Message)
	case errors.As(err, &sendErr):
		writeError(w, http.StatusBadGateway, "message rejected by "+sendErr.Platform, sendErr.Body)
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("notify failed")
		writeError(w, http.StatusBadGateway, "upstream error", "")
	}
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	var req weatherRequest
	if !s.decode(w, r, &req) {
		return
	}
	text, err := s.bot.SendWeatherMessage(r.Context(), req.RecipientID, req.City)
	s.respond(w, r, text, err)
}

func (s *Server) handleSoundcloud(w http.ResponseWriter, r *http.Request) {
	var req soundcloudRequest
	if !s.decode(w, r, &req) {
		return
	}
	text, err := s.bot.SendSoundcloudMessage(r.Context(), req.RecipientID, req.Artist)
	s.respond(w, r, text, err)
}

func (s *Server) handleStack(w http.ResponseWriter, r *http.Request) {
	var req stackRequest
	if !s.decode(w, r, &req) {
		return
	}
	text, err := s.bot.SendStackQuestions(r.Context(), req.RecipientID, model.StackFilterFromMap(req.Filter))
	s.respond(w, r, text, err)
}

func (s *Server) handleTweet(w http.ResponseWriter, r *http.Request) {
	var req tweetRequest
	if !s.decode(w, r, &req) {
		return
	}
	text, err := s.bot.SendTweet(r.Context(), req.Status)
	s.respond(w, r, text, err)
}

func (s *Server) handleMail(w http.ResponseWriter, r *http.Request) {
	var req mailRequest
	if !s.decode(w, r, &req) {
		return
	}
	text, err := s.bot.SendMail(r.Context(), req.To, req.Subject, req.Body)
	s.respond(w, r, text, err)
}

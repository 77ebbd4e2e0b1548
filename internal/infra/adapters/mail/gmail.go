package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var _ adapter.MailProvider = (*Gmail)(nil)

// Gmail sends mail as the authorised account ("me").
type Gmail struct {
	svc  *gmail.Service
	from string
}

// Options tune the underlying API client. HTTPClient, when set, replaces
// the OAuth2 transport entirely.
type Options struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewGmail(ctx context.Context, creds model.GmailCredentials, from string, opts Options) (*Gmail, error) {
	var clientOpts []option.ClientOption
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	} else {
		conf := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailSendScope},
		}
		ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
		clientOpts = append(clientOpts, option.WithTokenSource(ts))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	svc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &Gmail{svc: svc, from: from}, nil
}

// rfc822 builds a minimal plain-text message; the subject is Q-encoded so
// non-ASCII survives.
func (g *Gmail) rfc822(to, subject, body string) []byte {
	var sb strings.Builder
	if g.from != "" {
		sb.WriteString("From: " + g.from + "\r\n")
	}
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

func (g *Gmail) SendMail(ctx context.Context, to, subject, body string) model.Result[model.MailReceipt] {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return model.Failure[model.MailReceipt]("invalid header value")
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(g.rfc822(to, subject, body))}
	sent, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return model.Failure[model.MailReceipt](apiErr.Message)
		}
		return model.Failure[model.MailReceipt](err.Error())
	}
	return model.Success(model.MailReceipt{ID: sent.Id})
}

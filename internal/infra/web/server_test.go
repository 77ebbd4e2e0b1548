package web

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chucky-bot/internal/config"
	"chucky-bot/internal/domain"
	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/infra/logging"
	"chucky-bot/internal/infra/worker"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret    = "s3cret"
	testAppSecret = "app-s3cret"
)

func traceIDOf(ctx context.Context) string { return logging.TraceIDFrom(ctx) }

func newTestServer(t *testing.T, bot *mockBot, cmds *mockCommands, pool Submitter, secret string) http.Handler {
	t.Helper()
	if bot == nil {
		bot = &mockBot{}
	}
	if cmds == nil {
		cmds = &mockCommands{}
	}
	if pool == nil {
		pool = &syncPool{}
	}
	cfg := config.HTTPConfig{Port: 8080, Timeout: 5 * time.Second, JWTSecret: secret}
	webhook := config.MessengerConfig{VerifyToken: "verify-me", AppSecret: testAppSecret}
	return NewServer(cfg, webhook, Deps{Bot: bot, Commands: cmds, Pool: pool}, newTestLogger()).Routes()
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// postEvent delivers a webhook body carrying the given signature header;
// an empty signature omits the header.
func postEvent(t *testing.T, h http.Handler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func do(t *testing.T, h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func mint(t *testing.T) string {
	t.Helper()
	tok, err := NewAuthManager(testSecret, time.Hour).Mint("ci")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return tok
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, nil, nil, nil, testSecret)

	rr := do(t, h, http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Errorf("health: got %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Trace-ID") == "" {
		t.Error("expected a trace id header")
	}

	rr = do(t, h, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK {
		t.Errorf("metrics: expected 200, got %d", rr.Code)
	}
}

func TestWebhookVerify(t *testing.T) {
	h := newTestServer(t, nil, nil, nil, testSecret)

	rr := do(t, h, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", "", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "12345" {
		t.Errorf("expected challenge echo, got %d %q", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", "", "")
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for wrong token, got %d", rr.Code)
	}
}

func TestWebhookEvents(t *testing.T) {
	cmds := &mockCommands{}
	h := newTestServer(t, nil, cmds, nil, testSecret)

	body := `{"object":"page","entry":[{"messaging":[
		{"sender":{"id":"U1"},"message":{"text":"weather Lima"}},
		{"sender":{"id":"PAGE"},"message":{"text":"echoed","is_echo":true}},
		{"sender":{"id":"U2"},"delivery":{"watermark":1}}
	]}]}`
	rr := postEvent(t, h, body, sign(testAppSecret, body))
	if rr.Code != http.StatusOK || rr.Body.String() != "EVENT_RECEIVED" {
		t.Fatalf("expected ack, got %d %q", rr.Code, rr.Body.String())
	}
	if len(cmds.Handled) != 1 {
		t.Fatalf("expected one handled message, got %d", len(cmds.Handled))
	}
	got := cmds.Handled[0]
	if got.SenderID != "U1" || got.Text != "weather Lima" {
		t.Errorf("unexpected handled message %+v", got)
	}
	if got.TraceID == "" || got.TraceID != rr.Header().Get("X-Trace-ID") {
		t.Errorf("expected request trace id to follow the task, got %q", got.TraceID)
	}
}

func TestWebhookEventsRejects(t *testing.T) {
	h := newTestServer(t, nil, nil, nil, testSecret)

	other := `{"object":"instagram"}`
	if rr := postEvent(t, h, other, sign(testAppSecret, other)); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for non-page object, got %d", rr.Code)
	}
	if rr := postEvent(t, h, `{`, sign(testAppSecret, `{`)); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad json, got %d", rr.Code)
	}
}

func TestWebhookEventsSignature(t *testing.T) {
	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"U1"},"message":{"text":"tweet hello"}}]}]}`

	cases := []struct {
		name      string
		signature string
		status    int
		handled   int
	}{
		{"valid", sign(testAppSecret, body), http.StatusOK, 1},
		{"missing", "", http.StatusForbidden, 0},
		{"forged", sign("someone-else", body), http.StatusForbidden, 0},
		{"not hex", "sha256=zz", http.StatusForbidden, 0},
		{"wrong scheme", strings.Replace(sign(testAppSecret, body), "sha256=", "sha1=", 1), http.StatusForbidden, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmds := &mockCommands{}
			h := newTestServer(t, nil, cmds, nil, testSecret)

			rr := postEvent(t, h, body, tc.signature)
			if rr.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rr.Code)
			}
			if len(cmds.Handled) != tc.handled {
				t.Errorf("expected %d handled messages, got %d", tc.handled, len(cmds.Handled))
			}
		})
	}
}

func TestWebhookEventsClosedWithoutAppSecret(t *testing.T) {
	cmds := &mockCommands{}
	cfg := config.HTTPConfig{Port: 8080, JWTSecret: testSecret}
	h := NewServer(cfg, config.MessengerConfig{VerifyToken: "verify-me"}, Deps{Bot: &mockBot{}, Commands: cmds, Pool: &syncPool{}}, newTestLogger()).Routes()

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"U1"},"message":{"text":"help"}}]}]}`
	if rr := postEvent(t, h, body, sign("", body)); rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 with no app secret configured, got %d", rr.Code)
	}
	if len(cmds.Handled) != 0 {
		t.Error("expected no message to be handled")
	}
}

func TestWebhookEventsPoolFull(t *testing.T) {
	cmds := &mockCommands{}
	h := newTestServer(t, nil, cmds, &syncPool{SubmitErr: worker.ErrQueueFull}, testSecret)

	body := `{"object":"page","entry":[{"messaging":[{"sender":{"id":"U1"},"message":{"text":"help"}}]}]}`
	if rr := postEvent(t, h, body, sign(testAppSecret, body)); rr.Code != http.StatusOK {
		t.Errorf("expected ack even when saturated, got %d", rr.Code)
	}
	if len(cmds.Handled) != 0 {
		t.Error("expected message to be dropped")
	}
}

func TestNotifyRequiresToken(t *testing.T) {
	h := newTestServer(t, nil, nil, nil, testSecret)
	body := `{"recipient_id":"U1","city":"Lima"}`

	if rr := do(t, h, http.MethodPost, "/api/v1/notify/weather", body, ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rr.Code)
	}

	forged, _ := NewAuthManager("other", time.Hour).Mint("ci")
	if rr := do(t, h, http.MethodPost, "/api/v1/notify/weather", body, forged); rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for foreign token, got %d", rr.Code)
	}

	closed := newTestServer(t, nil, nil, nil, "")
	if rr := do(t, closed, http.MethodPost, "/api/v1/notify/weather", body, mint(t)); rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 with no secret configured, got %d", rr.Code)
	}
}

func TestNotifyWeather(t *testing.T) {
	bot := &mockBot{WeatherFunc: func(ctx context.Context, recipientID, city string) (string, error) {
		if recipientID != "U1" || city != "Lima" {
			t.Errorf("unexpected args %q %q", recipientID, city)
		}
		return "Current weather in Lima is: clear sky", nil
	}}
	h := newTestServer(t, bot, nil, nil, testSecret)

	rr := do(t, h, http.MethodPost, "/api/v1/notify/weather", `{"recipient_id":"U1","city":"Lima"}`, mint(t))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"text":"Current weather in Lima is: clear sky"`) {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestNotifyErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"missing credential", domain.MissingCredential("Open Weather"), http.StatusPreconditionFailed, `"detail":"Open Weather"`},
		{"invalid credential", domain.InvalidCredential("Open Weather", "Invalid API key."), http.StatusBadGateway, `"detail":"Invalid API key."`},
		{"platform rejection", &model.SendError{Platform: "facebook", StatusCode: 400, Body: "raw"}, http.StatusBadGateway, `"detail":"raw"`},
		{"bad recipient", domain.ErrInvalidArgument, http.StatusBadRequest, `"error":"invalid argument"`},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway, `"error":"upstream error"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bot := &mockBot{WeatherFunc: func(ctx context.Context, recipientID, city string) (string, error) {
				return "", tc.err
			}}
			h := newTestServer(t, bot, nil, nil, testSecret)

			rr := do(t, h, http.MethodPost, "/api/v1/notify/weather", `{"recipient_id":"U1","city":"Lima"}`, mint(t))
			if rr.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.detail) {
				t.Errorf("expected body to contain %s, got %s", tc.detail, rr.Body.String())
			}
		})
	}
}

func TestNotifyValidation(t *testing.T) {
	h := newTestServer(t, &mockBot{}, nil, nil, testSecret)
	tok := mint(t)

	cases := map[string]string{
		"/api/v1/notify/weather":    `{"recipient_id":"U1"}`,
		"/api/v1/notify/soundcloud": `{"artist":"Foo"}`,
		"/api/v1/notify/stack":      `{"recipient_id":"U1","filter":{}}`,
		"/api/v1/notify/tweet":      `{"status":""}`,
		"/api/v1/notify/mail":       `{"to":"not-an-email","subject":"Hi"}`,
	}
	for path, body := range cases {
		if rr := do(t, h, http.MethodPost, path, body, tok); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d %s", path, rr.Code, rr.Body.String())
		}
	}
	if rr := do(t, h, http.MethodPost, "/api/v1/notify/tweet", `{"status":"x","extra":1}`, tok); rr.Code != http.StatusBadRequest {
		t.Errorf("expected unknown fields to be rejected, got %d", rr.Code)
	}
}

func TestNotifyStackTweetMailSoundcloud(t *testing.T) {
	var gotFilter model.StackFilter
	bot := &mockBot{
		StackFunc: func(ctx context.Context, recipientID string, filter model.StackFilter) (string, error) {
			gotFilter = filter
			return "I can't find questions for you;( try again", nil
		},
		TweetFunc: func(ctx context.Context, status string) (string, error) {
			return "I have placed your tweet with status '" + status + "'.", nil
		},
		MailFunc: func(ctx context.Context, to, subject, body string) (string, error) {
			return "Sent mail successfully to " + to, nil
		},
		SoundcloudFunc: func(ctx context.Context, recipientID, artist string) (string, error) {
			return "SoundCloud Error: nope", nil
		},
	}
	h := newTestServer(t, bot, nil, nil, testSecret)
	tok := mint(t)

	rr := do(t, h, http.MethodPost, "/api/v1/notify/stack", `{"recipient_id":"U1","filter":{"tag":"django","Title":"Update Django"}}`, tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("stack: expected 200, got %d", rr.Code)
	}
	want := model.StackFilter{{Key: "tag", Value: "django"}, {Key: "title", Value: "Update Django"}}
	if len(gotFilter) != 2 || gotFilter[0] != want[0] || gotFilter[1] != want[1] {
		t.Errorf("unexpected filter %+v", gotFilter)
	}

	rr = do(t, h, http.MethodPost, "/api/v1/notify/tweet", `{"status":"hello"}`, tok)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "with status 'hello'") {
		t.Errorf("tweet: got %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/api/v1/notify/mail", `{"to":"a@b.com","subject":"Hi","body":"B"}`, tok)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Sent mail successfully to a@b.com") {
		t.Errorf("mail: got %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/api/v1/notify/soundcloud", `{"recipient_id":"U1","artist":"Foo"}`, tok)
	if rr.Code != http.StatusOK {
		t.Errorf("soundcloud: got %d %s", rr.Code, rr.Body.String())
	}
}

func TestAuthRejectsOtherAlgorithms(t *testing.T) {
	a := NewAuthManager(testSecret, time.Hour)
	claims := ClientClaims{Scope: notifyScope, RegisteredClaims: jwt.RegisteredClaims{Subject: "ci"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := a.parse(tok); err == nil {
		t.Error("expected HS512 token to be rejected")
	}

	wrongScope, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, ClientClaims{Scope: "admin"}).SignedString([]byte(testSecret))
	if _, err := a.parse(wrongScope); err == nil {
		t.Error("expected token without notify scope to be rejected")
	}

	good, _ := a.Mint("ci")
	claimsOut, err := a.parse(good)
	if err != nil || claimsOut.Subject != "ci" {
		t.Errorf("expected minted token to parse, got %v %+v", err, claimsOut)
	}
}

func TestTraceIDReusesValidHeader(t *testing.T) {
	h := newTestServer(t, nil, nil, nil, testSecret)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "0b0f0c3e-5a4d-4c65-9a0e-6f8f3b7a1c2d")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Trace-ID"); got != "0b0f0c3e-5a4d-4c65-9a0e-6f8f3b7a1c2d" {
		t.Errorf("expected trace id to be reused, got %q", got)
	}
}

package stackexchange

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"chucky-bot/internal/domain/model"
)

func TestSearchAnswers(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2.3/search/advanced" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		got = r.URL.Query()
		_, _ = io.WriteString(w, `{"items":[{"link":"https://so/q/1"},{"link":"https://so/q/2"},{"link":"https://so/q/3"}],"has_more":false}`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "", "", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	filter := model.StackFilter{{Key: "title", Value: "Update Django"}, {Key: "tag", Value: "django"}, {Key: "accepted", Value: "True"}}
	links, err := c.SearchAnswers(context.Background(), filter)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if !reflect.DeepEqual(links, []string{"https://so/q/1", "https://so/q/2", "https://so/q/3"}) {
		t.Errorf("unexpected links %v", links)
	}

	want := map[string]string{
		"site":     "stackoverflow",
		"answers":  "1",
		"intitle":  "Update Django",
		"tagged":   "django",
		"accepted": "True",
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("param %s: expected %q, got %q", k, v, got.Get(k))
		}
	}
	if got.Has("key") {
		t.Error("expected no key param without a configured key")
	}
}

func TestSearchAnswersAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error_id":400,"error_name":"bad_parameter","error_message":"site is required"}`)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, "stackoverflow", "k", time.Second)
	if _, err := c.SearchAnswers(context.Background(), model.StackFilter{{Key: "title", Value: "x"}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchAnswersEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[]}`)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, "stackoverflow", "", time.Second)
	links, err := c.SearchAnswers(context.Background(), model.StackFilter{{Key: "title", Value: "x"}})
	if err != nil || len(links) != 0 {
		t.Fatalf("expected no links and no error, got %v %v", links, err)
	}
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@example.com" {
			t.Errorf("unexpected body %v", body)
		}
		_ = json.NewEncoder(w).Encode(Token{AccessToken: "tok", TokenType: "bearer"})
	}))
	defer srv.Close()

	cli, err := New(srv.URL + "/api/v1/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := cli.Login(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if cli.Token() != "tok" {
		t.Fatalf("expected token to be kept, got %q", cli.Token())
	}
}

func TestAPIErrorCarriesCodeAndDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"validation_error","message":"bad","details":{"start":"query parameter is required"}}`))
	}))
	defer srv.Close()

	cli, _ := New(srv.URL, WithToken("k"))
	_, err := cli.ProjectTime(context.Background(), 0, 10, nil)
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "validation_error" || apiErr.Details["start"] == "" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestWalkScreenshotsFollowsCursor(t *testing.T) {
	var cursors []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected authorization %q", got)
		}
		q := r.URL.Query()
		if q.Get("task_id") != "wt1,wt2" || q.Get("sort_by") != "timestamp_desc" {
			t.Errorf("unexpected query %v", q)
		}
		next := q.Get("next")
		cursors = append(cursors, next)
		var page ScreenshotPage
		switch next {
		case "":
			cursor := "200"
			page = ScreenshotPage{Data: []Screenshot{{ID: "a", Timestamp: 300}, {ID: "b", Timestamp: 200}}, Next: &cursor}
		case "200":
			page = ScreenshotPage{Data: []Screenshot{{ID: "c", Timestamp: 100}}}
		default:
			t.Errorf("unexpected cursor %q", next)
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	cli, _ := New(srv.URL, WithToken("key"))
	var seen []string
	err := cli.WalkScreenshots(context.Background(), PageQuery{
		Start: 0, End: 1000, TaskIDs: []string{"wt1", "wt2"}, Descending: true, Limit: 2,
	}, func(s Screenshot) error {
		seen = append(seen, s.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("WalkScreenshots: %v", err)
	}
	if len(seen) != 3 || seen[2] != "c" {
		t.Fatalf("unexpected walk %v", seen)
	}
	if len(cursors) != 2 || cursors[1] != "200" {
		t.Fatalf("unexpected cursors %v", cursors)
	}
}

func TestDeleteScreenshotAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/analytics/screenshot/wc1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cli, _ := New(srv.URL)
	if err := cli.DeleteScreenshot(context.Background(), "wc1"); err != nil {
		t.Fatalf("DeleteScreenshot: %v", err)
	}
}

package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetNewsList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/News/GetNewsList" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("items") != "20" {
			t.Errorf("Expected items=20, got: %s", r.URL.Query().Get("items"))
		}
		if r.Header.Get("User-Agent") != "clubfeed-test/1.0" {
			t.Errorf("Unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"NewsId": 1, "Title": "First"}, {"NewsId": 2, "Title": "Second"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "clubfeed-test/1.0")

	list, err := client.GetNewsList(context.Background(), 20)
	if err != nil {
		t.Fatalf("GetNewsList failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(list))
	}

	first, ok := list[0].(map[string]any)
	if !ok {
		t.Fatalf("Expected object item, got %T", list[0])
	}
	if first["Title"] != "First" {
		t.Errorf("Unexpected title: %v", first["Title"])
	}
}

func TestGetNewsByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/News/GetNewsById" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("NewsId") != "123" {
			t.Errorf("Expected NewsId=123, got: %s", r.URL.Query().Get("NewsId"))
		}
		w.Write([]byte(`{"NewsId": 123, "Title": "Hello"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "clubfeed-test/1.0")

	obj, err := client.GetNewsByID(context.Background(), "123")
	if err != nil {
		t.Fatalf("GetNewsByID failed: %v", err)
	}

	post, ok := obj.(map[string]any)
	if !ok {
		t.Fatalf("Expected object, got %T", obj)
	}
	if post["Title"] != "Hello" {
		t.Errorf("Unexpected title: %v", post["Title"])
	}
}

func TestGetFixturesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Fixture/GetFixture" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("seasonId") != "36" {
			t.Errorf("Expected seasonId=36, got: %s", r.URL.Query().Get("seasonId"))
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "clubfeed-test/1.0")

	list, err := client.GetFixtures(context.Background(), 36)
	if err != nil {
		t.Fatalf("GetFixtures failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty list, got %d items", len(list))
	}
}

func TestGetSeasonListNoParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("Expected no query string, got: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"SeasonId": 36, "Name": "2025", "IsCurrent": true}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "clubfeed-test/1.0")

	list, err := client.GetSeasonList(context.Background())
	if err != nil {
		t.Fatalf("GetSeasonList failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 season, got %d", len(list))
	}
}

func TestNon200Response(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "clubfeed-test/1.0")

	if _, err := client.GetNewsList(context.Background(), 10); err == nil {
		t.Error("Expected error for 502 response")
	}
}

func TestMalformedJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "clubfeed-test/1.0")

	if _, err := client.GetNewsList(context.Background(), 10); err == nil {
		t.Error("Expected error for non-JSON response")
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), "clubfeed-test/1.0")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.GetNewsList(ctx, 10); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joeljk13/ucitap/pkg/output"
	"github.com/joeljk13/ucitap/pkg/stats"
)

func newTestReport() *output.Report {
	return &output.Report{
		Summary: output.Summary{
			LinesRead:  100,
			Records:    42,
			Incomplete: 3,
			Unparsed:   1,
			MaxDepth:   24,
		},
		Depths: []stats.DepthStat{
			{Depth: 12, Records: 2, LastTime: 350},
			{Depth: 24, Records: 1, LastTime: 9120},
		},
		Branching: 1.84,
		Metadata: output.Metadata{
			ConfigFile: "test.yaml",
			Sources:    []string{"engine.log"},
			Markers:    []string{"depth", "time"},
			AnalyzedAt: time.Now(),
			Duration:   125 * time.Millisecond,
		},
	}
}

func TestClient_Send_Success(t *testing.T) {
	var receivedPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		if ua := r.Header.Get("User-Agent"); ua != "ucitap-webhook" {
			t.Errorf("expected User-Agent ucitap-webhook, got %s", ua)
		}
		if err := json.NewDecoder(r.Body).Decode(&receivedPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL: server.URL,
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if resp.Duration <= 0 {
		t.Error("expected positive duration")
	}

	summary, ok := receivedPayload["Summary"].(map[string]interface{})
	if !ok {
		t.Fatal("payload missing Summary")
	}
	if records := summary["Records"].(float64); records != 42 {
		t.Errorf("expected 42 records in payload, got %v", records)
	}
	if _, ok := receivedPayload["Depths"]; !ok {
		t.Error("payload missing Depths")
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret-token" {
			t.Errorf("expected Bearer secret-token, got %s", auth)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL:   server.URL,
		Token: "secret-token",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal error"))
	}))
	defer server.Close()

	client := NewClient()
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL: server.URL,
	})

	if resp.Success() {
		t.Error("expected failure for 500 status")
	}
	if resp.Error == nil {
		t.Error("expected error for 500 status")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected timeout failure")
	}
	if resp.Error == nil {
		t.Error("expected timeout error")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	client := NewClient()
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL: "://invalid-url",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}
	if resp.Error == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	client := NewClient()
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL:     "http://127.0.0.1:59999/webhook",
		Timeout: 1 * time.Second,
	})

	if resp.Success() {
		t.Error("expected connection failure")
	}
	if resp.Error == nil {
		t.Error("expected connection error")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		want       bool
	}{
		{"200 OK", 200, nil, true},
		{"201 Created", 201, nil, true},
		{"299 edge", 299, nil, true},
		{"300 redirect", 300, nil, false},
		{"404 not found", 404, nil, false},
		{"500 server error", 500, nil, false},
		{"200 with error", 200, context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Response{StatusCode: tt.statusCode, Error: tt.err}
			if got := resp.Success(); got != tt.want {
				t.Errorf("Success() = %v, want %v", got, tt.want)
			}
		})
	}
}

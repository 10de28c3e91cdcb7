package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("path should contain sendMessage, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	note := Notification{
		RunTS:        time.Now(),
		TxCount:      6300,
		HitCount:     412,
		BlockCount:   71,
		ReviewCount:  204,
		BlockShare:   decimal.RequireFromString("1.13"),
		ThresholdPct: decimal.NewFromInt(1),
		TopControls:  []string{"ACH_RISKY_RETURN_CODE (58)"},
	}

	if err := notifier.Notify(context.Background(), note); err != nil {
		t.Fatalf("Notify should succeed: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("unexpected chat_id: %#v", received)
	}
	if !strings.Contains(received["text"], "71 BLOCK") {
		t.Fatalf("text should contain block count: %q", received["text"])
	}
	if !strings.Contains(received["text"], "ACH_RISKY_RETURN_CODE") {
		t.Fatalf("text should list noisiest controls: %q", received["text"])
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	note := Notification{RunTS: time.Now(), BlockShare: decimal.NewFromInt(2), ThresholdPct: decimal.NewFromInt(1)}

	if err := notifier.Notify(context.Background(), note); err == nil {
		t.Fatal("ok=false should be an error")
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

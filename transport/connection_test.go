// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestOpen_RequiresPortOrURL(t *testing.T) {
	_, _, err := Open(Target{})
	if err == nil {
		t.Fatal("expected an error when neither Port nor URL is set")
	}
}

func TestOpenWebSocket_RejectsUnsupportedScheme(t *testing.T) {
	_, err := OpenWebSocket("http://example.com/ws", "", "", false, RoleAuxiliary)
	if err == nil || !strings.Contains(err.Error(), "unsupported URL scheme") {
		t.Fatalf("expected an unsupported-scheme error, got %v", err)
	}
}

func TestOpenWebSocket_RejectsInvalidURL(t *testing.T) {
	_, err := OpenWebSocket("://not-a-url", "", "", false, RoleAuxiliary)
	if err == nil {
		t.Fatal("expected an error for a malformed URL")
	}
}

func echoWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func TestWebSocketConnection_RoundTripsBinaryMessages(t *testing.T) {
	server := echoWSServer(t)
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, err := OpenWebSocket(wsURL, "", "", false, RoleAuxiliary)
	if err != nil {
		t.Fatalf("OpenWebSocket failed: %v", err)
	}
	defer conn.Close()

	want := []byte{0xAA, 0x01, 0x02, 0x03}
	if _, err := conn.Write(want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got := make([]byte, len(want))
	if _, err := conn.Read(got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("got % X, want % X", got, want)
	}
}

func TestWebSocketConnection_ReadAfterCloseReturnsClosedError(t *testing.T) {
	server := echoWSServer(t)
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, err := OpenWebSocket(wsURL, "", "", false, RoleAuxiliary)
	if err != nil {
		t.Fatalf("OpenWebSocket failed: %v", err)
	}
	conn.Close()
	server.Close()

	buf := make([]byte, 4)
	if _, err := conn.Read(buf); err == nil {
		t.Error("expected a read error after the server closed the connection")
	}
}

func TestOpen_DispatchesToWebSocketWhenURLSet(t *testing.T) {
	server := echoWSServer(t)
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, info, err := Open(Target{URL: wsURL, Role: RoleAuxiliary})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()
	if !strings.Contains(info, "WebSocket") {
		t.Errorf("info = %q, want it to mention WebSocket", info)
	}
	if !strings.Contains(info, "auxiliary") {
		t.Errorf("info = %q, want it to mention the auxiliary role", info)
	}
}

func TestLinkRole_String(t *testing.T) {
	if got := RolePrimary.String(); got != "primary" {
		t.Errorf("RolePrimary.String() = %q, want %q", got, "primary")
	}
	if got := RoleAuxiliary.String(); got != "auxiliary" {
		t.Errorf("RoleAuxiliary.String() = %q, want %q", got, "auxiliary")
	}
}

func TestPolicyFor_AuxiliaryIsSingleAttemptPrimaryRetries(t *testing.T) {
	if p := policyFor(RoleAuxiliary); p.maxAttempts != 1 {
		t.Errorf("auxiliary maxAttempts = %d, want 1", p.maxAttempts)
	}
	if p := policyFor(RolePrimary); p.maxAttempts <= 1 {
		t.Errorf("primary maxAttempts = %d, want > 1", p.maxAttempts)
	}
}

func TestDialWithRetry_AuxiliaryDoesNotRetry(t *testing.T) {
	attempts := 0
	_, err := dialWithRetry(RoleAuxiliary, policyFor(RoleAuxiliary), func() (Connection, error) {
		attempts++
		return nil, fmt.Errorf("dial failed")
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDialWithRetry_PrimarySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	policy := dialPolicy{maxAttempts: 3, initialBackoff: time.Millisecond, maxBackoff: time.Millisecond, multiplier: 1}
	conn, err := dialWithRetry(RolePrimary, policy, func() (Connection, error) {
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf("transient failure")
		}
		return &WebSocketConnection{}, nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if conn == nil {
		t.Fatal("expected a non-nil connection")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDialWithRetry_ExhaustsAttemptsAndWrapsRole(t *testing.T) {
	policy := dialPolicy{maxAttempts: 2, initialBackoff: time.Millisecond, maxBackoff: time.Millisecond, multiplier: 1}
	_, err := dialWithRetry(RolePrimary, policy, func() (Connection, error) {
		return nil, fmt.Errorf("port busy")
	})
	if err == nil || !strings.Contains(err.Error(), "primary link") {
		t.Fatalf("expected an error mentioning \"primary link\", got %v", err)
	}
}

package device

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client := NewClient("192.168.4.20", 80)

	if client.BaseURL != "http://192.168.4.20:80" {
		t.Errorf("BaseURL = %s, want http://192.168.4.20:80", client.BaseURL)
	}

	if client.StatusTimeout != DefaultStatusTimeout {
		t.Errorf("StatusTimeout = %v, want %v", client.StatusTimeout, DefaultStatusTimeout)
	}

	if client.CommandTimeout != DefaultCommandTimeout {
		t.Errorf("CommandTimeout = %v, want %v", client.CommandTimeout, DefaultCommandTimeout)
	}

	if client.HTTPClient == nil {
		t.Error("HTTPClient should not be nil")
	}
}

func TestStatus_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getStatus" {
			t.Errorf("Path = %s, want /getStatus", r.URL.Path)
		}
		w.Write([]byte(`{"power":1,"speed":3,"swing":0}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	state, err := client.Status(context.Background())

	if err != nil {
		t.Fatalf("Status() error = %v, want nil", err)
	}

	want := State{Power: 1, Speed: 3, Swing: 0}
	if state != want {
		t.Errorf("Status() = %v, want %v", state, want)
	}
}

func TestStatus_MangledBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\x01{\"power\":0,\\n\"speed\":0,\\t\"swing\":1}"))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	state, err := client.Status(context.Background())

	if err != nil {
		t.Fatalf("Status() error = %v, want nil", err)
	}

	want := State{Power: 0, Speed: 0, Swing: 1}
	if state != want {
		t.Errorf("Status() = %v, want %v", state, want)
	}
}

func TestCommand_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("act"); got != "speed" {
			t.Errorf("act = %s, want speed", got)
		}
		if got := r.URL.Query().Get("arg1"); got != "3" {
			t.Errorf("arg1 = %s, want 3", got)
		}
		w.Write([]byte(`{"power":1,"speed":3,"swing":0}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	state, err := client.Command(context.Background(), FieldSpeed, 3)

	if err != nil {
		t.Fatalf("Command() error = %v, want nil", err)
	}

	want := State{Power: 1, Speed: 3, Swing: 0}
	if state != want {
		t.Errorf("Command() = %v, want %v", state, want)
	}
}

func TestCommand_PowerNotCommandable(t *testing.T) {
	client := NewClientWithURL("http://127.0.0.1:1")
	_, err := client.Command(context.Background(), FieldPower, 1)

	if !IsValidationError(err) {
		t.Errorf("Command(power) error = %v, want validation error", err)
	}
}

func TestCommand_DeviceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errmsg":"arg1 out of range"}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	_, err := client.Command(context.Background(), FieldSpeed, 99)

	if !IsHTTPError(err) {
		t.Fatalf("Command() error = %v, want HTTP error", err)
	}

	devErr := err.(*DeviceError)
	if devErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", devErr.StatusCode)
	}
	if devErr.DeviceMessage != "arg1 out of range" {
		t.Errorf("DeviceMessage = %q, want %q", devErr.DeviceMessage, "arg1 out of range")
	}
}

func TestStatus_UnexpectedStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	_, err := client.Status(context.Background())

	if !IsHTTPError(err) {
		t.Fatalf("Status() error = %v, want HTTP error", err)
	}
	if !IsRetryable(err) {
		t.Error("5xx should be retryable")
	}
}

func TestStatus_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"power":0,"speed":0,"swing":0}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	client.SetTimeouts(20*time.Millisecond, 20*time.Millisecond)

	_, err := client.Status(context.Background())
	if err == nil {
		t.Fatal("Status() should time out")
	}
	if !IsNetworkError(err) {
		t.Errorf("Status() timeout should classify as network error, got %v", err)
	}
}

func TestStatus_ConnectionRefused(t *testing.T) {
	// Nothing listens here
	client := NewClientWithURL("http://127.0.0.1:1")
	client.SetTimeouts(500*time.Millisecond, 500*time.Millisecond)

	_, err := client.Status(context.Background())
	if err == nil {
		t.Fatal("Status() should fail against a closed port")
	}
	if !IsNetworkError(err) {
		t.Errorf("Status() error should classify as network error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("connection failure should be retryable")
	}
}

func TestStatus_UnparsableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	_, err := client.Status(context.Background())

	if !IsParseError(err) {
		t.Errorf("Status() error = %v, want parse error", err)
	}
}

package engine

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/getmockd/harmock/pkg/capture"
	"github.com/getmockd/harmock/pkg/config"
	"github.com/getmockd/harmock/pkg/mock"
)

// ephemeral binds every requested address to a random loopback port.
func ephemeral(network, _ string) (net.Listener, error) {
	return net.Listen(network, "127.0.0.1:0")
}

func testIndex() *mock.Index {
	txs := []capture.Transaction{
		{
			Index:    1,
			Request:  capture.Request{URL: "https://api.test/orders", Method: "POST", Body: `{"order_id": 1234}`, HasBody: true},
			Response: capture.Response{Status: 200, MimeType: "application/json", Body: `{"order_id": 1234}`, HasBody: true},
		},
		{
			Index:    2,
			Request:  capture.Request{URL: "https://cdn.test/app.js", Method: "GET"},
			Response: capture.Response{Status: 200, MimeType: "text/javascript", Body: "console.log(1)", HasBody: true},
		},
	}
	return mock.BuildIndex(txs, 0)
}

func testClient() *http.Client {
	return &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

func startSupervisor(t *testing.T, cfg *config.ServeConfig) (*Supervisor, context.CancelFunc, <-chan error) {
	t.Helper()
	sup := NewSupervisor(testIndex(), cfg, WithListenFunc(ephemeral))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	select {
	case <-sup.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("supervisor exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("supervisor did not become ready")
	}
	return sup, cancel, done
}

func TestSupervisor_ServesEveryAuthority(t *testing.T) {
	defer goleak.VerifyNone(t)

	sup, cancel, done := startSupervisor(t, nil)

	listeners := sup.Listeners()
	require.Len(t, listeners, 2)
	assert.Equal(t, "api.test", listeners[0].Authority)
	assert.Equal(t, 5000, listeners[0].Port)
	assert.Equal(t, 5001, listeners[1].Port)

	client := testClient()
	resp, err := client.Post("http://"+listeners[0].Addr+"/orders", "application/json", strings.NewReader(`{"order_id": 5678}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"order_id": 5678}`, string(body))

	resp, err = client.Get("http://" + listeners[1].Addr + "/app.js")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "console.log(1)", string(body))
	assert.Equal(t, "text/javascript", resp.Header.Get("Content-Type"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestSupervisor_MetricsEndpoint(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.NewDefault().Serve
	cfg.MetricsPort = 9100
	sup, cancel, done := startSupervisor(t, &cfg)

	client := testClient()
	resp, err := client.Get("http://" + sup.Listeners()[1].Addr + "/missing")
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.NotEmpty(t, sup.MetricsAddr())
	resp, err = client.Get("http://" + sup.MetricsAddr() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	out := string(body)
	assert.Contains(t, out, `harmock_requests_total{authority="cdn.test",method="GET",outcome="matched"} 1`)
	assert.Contains(t, out, `harmock_exemplars{authority="api.test"} 1`)
	assert.Contains(t, out, "harmock_listeners 3")

	cancel()
	require.NoError(t, <-done)
}

func TestSupervisor_BindFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	var opened []net.Listener
	calls := 0
	listen := func(network, _ string) (net.Listener, error) {
		calls++
		if calls >= 2 {
			return nil, errors.New("address already in use")
		}
		ln, err := net.Listen(network, "127.0.0.1:0")
		if err == nil {
			opened = append(opened, ln)
		}
		return ln, err
	}

	sup := NewSupervisor(testIndex(), nil, WithListenFunc(listen))
	err := sup.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cdn.test")

	// The listener bound before the failure has been released.
	require.Len(t, opened, 1)
	_, acceptErr := opened[0].Accept()
	assert.Error(t, acceptErr)

	select {
	case <-sup.Ready():
		t.Fatal("Ready closed although binding failed")
	default:
	}

	// A failed bind does not leave the supervisor marked as running.
	err = sup.Run(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "already running")
	assert.Contains(t, err.Error(), "api.test")
}

func TestSupervisor_RunTwice(t *testing.T) {
	defer goleak.VerifyNone(t)

	sup, cancel, done := startSupervisor(t, nil)
	err := sup.Run(context.Background())
	assert.EqualError(t, err, "supervisor is already running")

	cancel()
	require.NoError(t, <-done)
}

package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_RunsHooksInReverseAndJoinsErrors(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	a := &App{Logger: logger}

	var order []string
	errB := errors.New("boom")
	a.OnShutdown("a", func(context.Context) error { order = append(order, "a"); return nil })
	a.OnShutdown("b", func(context.Context) error { order = append(order, "b"); return errB })
	a.OnShutdown("c", func(context.Context) error { order = append(order, "c"); return nil })

	err := a.Shutdown(context.Background())

	assert.Equal(t, []string{"c", "b", "a"}, order)
	require.Error(t, err)
	assert.ErrorIs(t, err, errB)
	assert.Contains(t, err.Error(), "b: boom")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "b", hook.LastEntry().Data["component"])

	// hooks run once
	order = nil
	require.NoError(t, a.Shutdown(context.Background()))
	assert.Empty(t, order)
}

func TestServeAndShutdown(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	closed := false
	a := &App{
		Logger: logger,
		Server: &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})},
	}
	a.OnShutdown("resource", func(context.Context) error { closed = true; return nil })
	errCh := a.Serve(ln)

	res, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))
	assert.True(t, closed)

	select {
	case err, ok := <-errCh:
		assert.False(t, ok, "unexpected serve error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

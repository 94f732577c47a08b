package main

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownCancelsOpenStreams(t *testing.T) {
	streamDone := make(chan struct{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(streamDone)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event:ready\n\n"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})

	srv := newHTTPServer(&config.Config{ReadTimeout: 5 * time.Second}, h)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event:ready\n", line)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	start := time.Now()
	require.NoError(t, srv.Shutdown(ctx))
	assert.Less(t, time.Since(start), 3*time.Second)

	select {
	case <-streamDone:
	case <-time.After(time.Second):
		t.Fatal("stream handler still running after shutdown")
	}
}

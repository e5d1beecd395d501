package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ServeStdio serves newline-delimited JSON-RPC frames from in, writing one
// response line per request to out. Frames are handled concurrently and writes
// are serialized. It returns nil when in reaches EOF or ctx is cancelled, after
// in-flight requests have been answered.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.sessions != nil {
		id, err := s.sessions.Open(ctx, TransportStdio)
		if err != nil {
			return fmt.Errorf("failed to open stdio session: %w", err)
		}
		ctx = WithSessionID(ctx, id)
		defer func() {
			if err := s.sessions.Close(context.WithoutCancel(ctx), id); err != nil {
				s.logger.Warn("failed to close stdio session", "session_id", id, "err", err)
			}
		}()
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	w := &lineWriter{out: out}
	var wg sync.WaitGroup
	defer wg.Wait()

	s.logger.Info("MCP server listening (stdio)", "version", s.version)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read from stdin: %w", err)
		case line := <-lines:
			wg.Add(1)
			go func(frame []byte) {
				defer wg.Done()
				rsp := s.HandleMessage(ctx, bytes.TrimSpace(frame))
				if rsp == nil {
					return
				}
				if err := w.write(rsp); err != nil {
					s.logger.Error("failed to write response", "err", err)
				}
			}(line)
		}
	}
}

// lineWriter writes one JSON value per line under a mutex.
type lineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *lineWriter) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.out.Write(data)
	return err
}

package telemetry

import (
	"fmt"
	"net"
	"time"

	"context"

	"github.com/vmihailenco/msgpack/v5"
)

// FeedReader reads msgpack-encoded snapshot datagrams from a UDP socket.
// A game-side plugin publishes one datagram per physics tick; each Read
// consumes the next datagram. A missed deadline maps to ErrUnavailable so
// the Sampler degrades instead of stalling.
type FeedReader struct {
	conn *net.UDPConn
	buf  []byte
}

// ListenFeed opens a UDP listener for telemetry datagrams on addr
// (e.g., "127.0.0.1:9996").
func ListenFeed(addr string) (*FeedReader, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("telemetry: resolve feed addr: %w", err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("telemetry: listen feed: %w", err)
	}
	return &FeedReader{conn: conn, buf: make([]byte, 64*1024)}, nil
}

// Read implements Reader. It blocks until a datagram arrives or the context
// deadline passes, whichever is first.
func (r *FeedReader) Read(ctx context.Context) (Snapshot, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(time.Second)
	}
	if err := r.conn.SetReadDeadline(deadline); err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: set feed deadline: %w", err)
	}

	n, _, err := r.conn.ReadFromUDP(r.buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return Snapshot{}, ErrUnavailable
		}
		return Snapshot{}, fmt.Errorf("telemetry: read feed: %w", err)
	}

	var s Snapshot
	if err := msgpack.Unmarshal(r.buf[:n], &s); err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: decode feed datagram: %w", err)
	}
	return s, nil
}

// Close closes the underlying socket.
func (r *FeedReader) Close() error {
	return r.conn.Close()
}

// FeedWriter publishes msgpack-encoded snapshot datagrams to a FeedReader.
// Used by game-side publishers and tests.
type FeedWriter struct {
	conn net.Conn
}

// DialFeed connects a FeedWriter to the given UDP address.
func DialFeed(addr string) (*FeedWriter, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("telemetry: dial feed: %w", err)
	}
	return &FeedWriter{conn: conn}, nil
}

// Write publishes one snapshot datagram.
func (w *FeedWriter) Write(s Snapshot) error {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("telemetry: encode feed datagram: %w", err)
	}
	if _, err := w.conn.Write(data); err != nil {
		return fmt.Errorf("telemetry: write feed datagram: %w", err)
	}
	return nil
}

// Close closes the underlying socket.
func (w *FeedWriter) Close() error {
	return w.conn.Close()
}

package commands

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/apexlabs/apexengineer/pkg/ptt"
)

// stdinSource turns line input into push-to-talk levels: one Enter presses
// the button, the next releases it. It needs no raw terminal mode, so it
// works in any shell the run command is started from.
type stdinSource struct {
	r io.Reader
}

var _ ptt.Source = (*stdinSource)(nil)

// Signals implements ptt.Source. The reader goroutine leaks on ctx
// cancellation when stdin never delivers another line; the process is
// exiting at that point anyway.
func (s *stdinSource) Signals(ctx context.Context) (<-chan ptt.Signal, error) {
	ch := make(chan ptt.Signal, 8)

	go func() {
		defer close(ch)
		down := false
		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			down = !down
			select {
			case ch <- ptt.Signal{Down: down, Time: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

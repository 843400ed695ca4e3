package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startSpinner animates msg on w until the returned stop func is called or
// ctx is done. stop erases the line and may be called more than once.
func startSpinner(ctx context.Context, w io.Writer, msg string) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})
	blank := "\r" + strings.Repeat(" ", len([]rune(msg))+2) + "\r"

	go func() {
		defer close(finished)
		tick := time.NewTicker(spinnerInterval)
		defer tick.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-ctx.Done():
				fmt.Fprint(w, blank)
				return
			case <-tick.C:
				fmt.Fprintf(w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]), styleDim.Render(msg))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-finished
		})
	}
}

package message

import (
	"fmt"
	"io"
	"sync"
)

// ProgressPrinter prints step updates arriving on a channel as gray lines
type ProgressPrinter struct {
	channel <-chan string
	out     io.Writer
}

// NewProgressPrinter creates a printer that listens on the provided channel
func NewProgressPrinter(channel <-chan string, out io.Writer) *ProgressPrinter {
	return &ProgressPrinter{channel: channel, out: out}
}

// StartListening prints every update until the channel is closed.
// It blocks, so run it in a goroutine.
func (p *ProgressPrinter) StartListening() {
	for content := range p.channel {
		fmt.Fprintf(p.out, "\x1b[90m▸ %s\x1b[0m\n", content)
	}
}

// CreateProgressChannel starts a printer goroutine and returns its channel
// together with a stop function that closes the channel and waits for the
// printer to drain it
func CreateProgressChannel(out io.Writer) (chan<- string, func()) {
	progressChan := make(chan string, 100) // Buffered to prevent blocking

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		NewProgressPrinter(progressChan, out).StartListening()
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(progressChan)
			wg.Wait()
		})
	}
	return progressChan, stop
}

// SendProgress sends an update without ever blocking the sender; a nil channel
// discards it
func SendProgress(channel chan<- string, format string, args ...any) {
	if channel == nil {
		return
	}
	select {
	case channel <- fmt.Sprintf(format, args...):
	default:
		// Channel is full, drop the update
	}
}

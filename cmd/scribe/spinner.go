package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner paints an elapsed-time progress line on interactive terminals.
// On non-terminal writers it does nothing, so piped output stays clean.
type spinner struct {
	writer  io.Writer
	message string
	started time.Time
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func startSpinner(writer io.Writer, message string) *spinner {
	s := &spinner{
		writer:  writer,
		message: message,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	if !writerIsTerminal(writer) {
		return s
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()
	frame := 0
	for {
		select {
		case <-s.done:
			fmt.Fprintf(s.writer, "\r\033[K")
			return
		case <-ticker.C:
			elapsed := time.Since(s.started).Round(time.Second)
			fmt.Fprintf(s.writer, "\r%s %s (%s)", spinnerFrames[frame%len(spinnerFrames)], s.message, elapsed)
			frame++
		}
	}
}

func (s *spinner) stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func writerIsTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

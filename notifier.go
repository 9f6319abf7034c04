package skillsprint

import (
	"fmt"
	"io"
	"sync"
)

var (
	_ Notifier = (*WriterNotifier)(nil)
	_ Notifier = NoopNotifier{}
)

// WriterNotifier prints notifications, one per line
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Success(message string) {
	n.write("✔", message)
}

func (n *WriterNotifier) Error(message string) {
	n.write("✖", message)
}

func (n *WriterNotifier) write(icon, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", icon, message)
}

// NoopNotifier drops every notification
type NoopNotifier struct{}

func (NoopNotifier) Success(string) {}
func (NoopNotifier) Error(string)   {}

package scanner

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// linePump reads a shared input line by line for one reader at a time.
// A stopped reader leaves no goroutine blocked on the input, so the next
// reader gets every line that follows.
type linePump struct {
	r     io.Reader
	once  sync.Once
	lines chan string
}

var stdinPump = newLinePump(os.Stdin)

func newLinePump(r io.Reader) *linePump {
	return &linePump{r: r, lines: make(chan string)}
}

func (p *linePump) run() {
	defer close(p.lines)
	scanner := bufio.NewScanner(p.r)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
}

// reader returns a reader of the following lines, until it is closed or the input ends.
func (p *linePump) reader() io.ReadCloser {
	p.once.Do(func() { go p.run() })
	return &pumpReader{lines: p.lines, done: make(chan struct{})}
}

type pumpReader struct {
	lines <-chan string
	done  chan struct{}
	once  sync.Once
	buf   []byte
}

func (r *pumpReader) Read(b []byte) (int, error) {
	if len(r.buf) == 0 {
		select {
		case <-r.done:
			return 0, io.EOF
		default:
		}
		select {
		case line, ok := <-r.lines:
			if !ok {
				return 0, io.EOF
			}
			r.buf = append([]byte(line), '\n')
		case <-r.done:
			return 0, io.EOF
		}
	}
	n := copy(b, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *pumpReader) Close() error {
	r.once.Do(func() { close(r.done) })
	return nil
}

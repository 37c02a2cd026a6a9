package console

import (
	"io"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const ctrlC = 0x03

type streamOptions struct {
	raw  bool // terminal in raw mode: CR is Enter, Ctrl-C interrupts
	crlf bool // terminate output lines with CRLF
	echo bool // echo line input back to the writer
}

// Stream implements Console over a byte stream. A single goroutine pumps
// input bytes into a buffered channel; everything else runs on the caller.
type Stream struct {
	in     chan byte
	out    io.Writer
	opts   streamOptions
	closer func() error
	once   sync.Once

	// midLine is set in line mode after a command character has been
	// taken from a line whose terminator has not been read yet.
	midLine bool
}

// NewStream creates a console reading from r and writing to w.
func NewStream(r io.Reader, w io.Writer) *Stream {
	return newStream(r, w, streamOptions{})
}

func newStream(r io.Reader, w io.Writer, opts streamOptions) *Stream {
	if opts.raw {
		opts.crlf = true
	}
	s := &Stream{
		in:   make(chan byte, 256),
		out:  w,
		opts: opts,
	}
	go s.pump(r)
	return s
}

func (s *Stream) pump(r io.Reader) {
	defer close(s.in)

	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if s.opts.raw {
				switch b {
				case ctrlC:
					interrupt()
					continue
				case '\r':
					b = '\n'
				}
			}
			s.in <- b
		}
		if err != nil {
			if err != io.EOF {
				log.Errorf("Console read: %v", err)
			}
			return
		}
	}
}

// interrupt re-raises Ctrl-C as SIGINT since raw mode swallows it.
func interrupt() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	_ = p.Signal(os.Interrupt)
}

// TryReadChar implements Console.TryReadChar.
func (s *Stream) TryReadChar() (byte, bool) {
	select {
	case b, ok := <-s.in:
		if ok && !s.opts.raw {
			switch b {
			case '\n':
				s.midLine = false
			case '\r':
			default:
				s.midLine = true
			}
		}
		return b, ok
	default:
		return 0, false
	}
}

// ReadLine implements Console.ReadLine.
// CR is ignored; LF terminates the line. Outside raw mode input arrives a
// line at a time, so the rest of a command line read by TryReadChar,
// including its terminator, is skipped before the new line starts.
func (s *Stream) ReadLine(timeout time.Duration, max int) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for s.midLine {
		select {
		case b, ok := <-s.in:
			if !ok {
				return "", ErrClosed
			}
			if b == '\n' {
				s.midLine = false
			}
		case <-timer.C:
			return "", ErrTimeout
		}
	}

	line := make([]byte, 0, max)
	for {
		select {
		case b, ok := <-s.in:
			if !ok {
				return "", ErrClosed
			}
			switch b {
			case '\r':
				continue
			case '\n':
				s.echo("\n")
				return string(line), nil
			}
			if len(line) < max {
				line = append(line, b)
				s.echo(string(b))
			}
		case <-timer.C:
			s.echo("\n")
			return "", ErrTimeout
		}
	}
}

// WriteLine implements Console.WriteLine.
func (s *Stream) WriteLine(text string) {
	s.write(text + s.newline())
}

// Write writes text without a line ending, for prompts.
func (s *Stream) Write(text string) {
	s.write(text)
}

func (s *Stream) echo(text string) {
	if !s.opts.echo {
		return
	}
	if text == "\n" {
		text = s.newline()
	}
	s.write(text)
}

func (s *Stream) newline() string {
	if s.opts.crlf {
		return "\r\n"
	}
	return "\n"
}

func (s *Stream) write(text string) {
	if _, err := io.WriteString(s.out, text); err != nil {
		log.Errorf("Console write: %v", err)
	}
}

// Raw reports whether the stream drives a terminal in raw mode.
func (s *Stream) Raw() bool {
	return s.opts.raw
}

// Close restores the terminal or closes the serial port.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		if s.closer != nil {
			err = s.closer()
		}
	})
	return err
}

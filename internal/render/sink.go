package render

import (
	"io"
	"sync"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const (
	ErrSinkOpen  = errors.ErrorCode("render_sink_open_failed")
	ErrSinkWrite = errors.ErrorCode("render_sink_write_failed")
)

// Sink receives one finished line per tick.
type Sink interface {
	Write(line string) error
	Close() error
}

// WriterSink writes newline-terminated lines, e.g. to stdout for a bar's status_command.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, line+"\n"); err != nil {
		return errors.New().Wrap(ErrSinkWrite, err)
	}

	return nil
}

func (*WriterSink) Close() error {
	return nil
}

// RootWindowSink stores the line as the X root window's WM_NAME, which dwm-style
// bars display as their status text.
type RootWindowSink struct {
	conn *xgb.Conn
	root xproto.Window
}

func NewRootWindowSink() (*RootWindowSink, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.New().Wrap(ErrSinkOpen, err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, errors.New().WithData(ErrSinkOpen, "no default screen")
	}

	return &RootWindowSink{conn: conn, root: screen.Root}, nil
}

func (s *RootWindowSink) Write(line string) error {
	data := []byte(line)
	err := xproto.ChangePropertyChecked(s.conn, xproto.PropModeReplace, s.root,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(data)), data).Check()
	if err != nil {
		return errors.New().Wrap(ErrSinkWrite, err)
	}

	return nil
}

func (s *RootWindowSink) Close() error {
	s.conn.Close()
	return nil
}

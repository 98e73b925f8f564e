package llm

import "io"

// Fragment is one piece of a streamed completion. Err is set only on the
// final fragment when the stream fails mid-flight.
type Fragment struct {
	Content string
	Err     error
}

// Stream is a finite, non-restartable sequence of completion fragments.
// Callers loop on Next until io.EOF and must Close when abandoning early.
type Stream struct {
	ch     <-chan Fragment
	cancel func()
	err    error
	done   bool
}

// NewStream wraps a fragment channel. cancel may be nil.
func NewStream(ch <-chan Fragment, cancel func()) *Stream {
	return &Stream{ch: ch, cancel: cancel}
}

// Next returns the next token. io.EOF marks normal completion; any other
// error is terminal and the stream cannot be resumed.
func (s *Stream) Next() (string, error) {
	if s.done {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}

	frag, ok := <-s.ch
	if !ok {
		s.done = true
		return "", io.EOF
	}
	if frag.Err != nil {
		s.done = true
		s.err = frag.Err
		return "", frag.Err
	}
	return frag.Content, nil
}

// Close releases the underlying request. Safe to call more than once.
func (s *Stream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

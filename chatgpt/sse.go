package chatgpt

import (
	"bufio"
	"bytes"
	"io"
)

var dataPrefix = []byte("data:")

// sseDecoder turns an event-stream body into a sequence of `data:` payloads.
//
// The body arrives in chunks with protocol-unaware boundaries, so a logical
// line may span reads; the bufio layer carries the incomplete tail across
// invocations and lines are only handed out once their terminator is seen. A
// trailing partial line at stream end is discarded.
type sseDecoder struct {
	r *bufio.Reader
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// next returns the payload of the next data line, skipping every other line.
// It returns io.EOF when the body ends.
func (d *sseDecoder) next() ([]byte, error) {
	for {
		line, err := d.r.ReadBytes('\n')
		if err != nil {
			// No terminator: whatever is in line is an incomplete
			// trailing fragment and is dropped.
			return nil, err
		}

		payload, ok := dataPayload(bytes.TrimRight(line, "\r\n"))
		if !ok {
			continue
		}
		return payload, nil
	}
}

// dataPayload strips the `data:` prefix and the run of spaces after it.
func dataPayload(line []byte) ([]byte, bool) {
	if !bytes.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	p := line[len(dataPrefix):]
	for len(p) > 0 && p[0] == ' ' {
		p = p[1:]
	}
	return p, true
}

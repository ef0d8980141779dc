package chatgpt

import (
	"io"
	"strings"
	"testing"
)

// chunkReader hands out the input in fixed-size pieces so logical lines
// cross read boundaries.
type chunkReader struct {
	data []byte
	size int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.size
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func collectPayloads(t *testing.T, d *sseDecoder) []string {
	t.Helper()
	var out []string
	for {
		p, err := d.next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("next err=%v", err)
		}
		out = append(out, string(p))
	}
}

func TestSSEDecoder_BasicStream(t *testing.T) {
	body := "data: one\n\ndata: two\n\ndata: [DONE]\n\n"
	got := collectPayloads(t, newSSEDecoder(strings.NewReader(body)))
	want := []string{"one", "two", "[DONE]"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("payloads=%v", got)
	}
}

func TestSSEDecoder_LinesAcrossChunkBoundaries(t *testing.T) {
	body := "data: hello world\n\ndata: second line\n\n"
	for size := 1; size <= 7; size++ {
		d := newSSEDecoder(&chunkReader{data: []byte(body), size: size})
		got := collectPayloads(t, d)
		if len(got) != 2 || got[0] != "hello world" || got[1] != "second line" {
			t.Fatalf("chunk size %d: payloads=%v", size, got)
		}
	}
}

func TestSSEDecoder_SkipsNonDataLines(t *testing.T) {
	body := "event: message\nid: 42\n: comment\ndata: payload\nretry: 100\n\n"
	got := collectPayloads(t, newSSEDecoder(strings.NewReader(body)))
	if len(got) != 1 || got[0] != "payload" {
		t.Fatalf("payloads=%v", got)
	}
}

func TestSSEDecoder_SpaceHandling(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"data:tight\n", "tight"},
		{"data: one space\n", "one space"},
		{"data:    many spaces\n", "many spaces"},
		{"data:\n", ""},
	}
	for _, tt := range tests {
		got := collectPayloads(t, newSSEDecoder(strings.NewReader(tt.line)))
		if len(got) != 1 || got[0] != tt.want {
			t.Fatalf("line %q: payloads=%q", tt.line, got)
		}
	}
}

func TestSSEDecoder_CRLFLines(t *testing.T) {
	body := "data: windows\r\n\r\ndata: [DONE]\r\n"
	got := collectPayloads(t, newSSEDecoder(strings.NewReader(body)))
	if len(got) != 2 || got[0] != "windows" || got[1] != "[DONE]" {
		t.Fatalf("payloads=%v", got)
	}
}

func TestSSEDecoder_DiscardsUnterminatedTail(t *testing.T) {
	body := "data: complete\ndata: partial without newline"
	got := collectPayloads(t, newSSEDecoder(strings.NewReader(body)))
	if len(got) != 1 || got[0] != "complete" {
		t.Fatalf("payloads=%v", got)
	}
}

package stream

import (
	"reflect"
	"testing"
)

func decodeAll(t *testing.T, data []byte, chunkSize int) []string {
	t.Helper()
	var dec ChunkDecoder
	var lines []string
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		lines = append(lines, dec.Write(data[start:end])...)
	}
	if line, ok := dec.Flush(); ok {
		lines = append(lines, line)
	}
	return lines
}

func TestChunkDecoderChunkingInvariance(t *testing.T) {
	data := []byte(`{"type":"a"}` + "\n" + `{"type":"b","text":"hi there"}` + "\n" + `{"type":"c"}` + "\n")
	want := []string{`{"type":"a"}`, `{"type":"b","text":"hi there"}`, `{"type":"c"}`}

	for chunkSize := 1; chunkSize <= len(data); chunkSize++ {
		got := decodeAll(t, data, chunkSize)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("chunk size %d: got %v, want %v", chunkSize, got, want)
		}
	}
}

func TestChunkDecoderTrailingFragment(t *testing.T) {
	var dec ChunkDecoder

	lines := dec.Write([]byte("{\"type\":\"a\"}\n{\"type\":"))
	if len(lines) != 1 || lines[0] != `{"type":"a"}` {
		t.Fatalf("unexpected lines: %v", lines)
	}

	// The partial line stays buffered until more data or Flush.
	if line, ok := dec.Flush(); !ok || line != `{"type":` {
		t.Fatalf("Flush = %q, %v", line, ok)
	}
	if _, ok := dec.Flush(); ok {
		t.Fatal("second Flush should be empty")
	}
}

func TestChunkDecoderFragmentCompletedByNextChunk(t *testing.T) {
	var dec ChunkDecoder

	if lines := dec.Write([]byte(`{"ty`)); lines != nil {
		t.Fatalf("expected no lines, got %v", lines)
	}
	lines := dec.Write([]byte("pe\":\"a\"}\n"))
	if len(lines) != 1 || lines[0] != `{"type":"a"}` {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestChunkDecoderSkipsBlankLinesAndCR(t *testing.T) {
	var dec ChunkDecoder

	lines := dec.Write([]byte("\r\n{\"type\":\"a\"}\r\n\n"))
	if len(lines) != 1 || lines[0] != `{"type":"a"}` {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestChunkDecoderEmptyFlush(t *testing.T) {
	var dec ChunkDecoder
	if _, ok := dec.Flush(); ok {
		t.Fatal("Flush on empty decoder should report nothing")
	}
}

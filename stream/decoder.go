// Package stream provides the HTTP client for streamed agent invocations.
package stream

import (
	"bytes"
	"strings"
)

// ChunkDecoder accumulates raw byte chunks and splits them into complete
// NDJSON lines. A trailing partial line is retained across calls and only
// released by Flush at end of stream. The decoder never fails: it only
// splits; JSON validity is the caller's concern.
type ChunkDecoder struct {
	buf bytes.Buffer
}

// Write appends a chunk and returns every complete line it closes off, in
// arrival order. Blank lines are dropped. Line splitting is invariant under
// chunk boundaries: any split of the same byte stream yields the same lines.
func (d *ChunkDecoder) Write(chunk []byte) []string {
	d.buf.Write(chunk)

	var lines []string
	for {
		data := d.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(data[:i]), "\r")
		d.buf.Next(i + 1)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Flush returns the retained trailing fragment, if any. Streams are not
// required to end with a newline, so the final line surfaces here.
func (d *ChunkDecoder) Flush() (string, bool) {
	if d.buf.Len() == 0 {
		return "", false
	}
	line := strings.TrimRight(d.buf.String(), "\r")
	d.buf.Reset()
	if line == "" {
		return "", false
	}
	return line, true
}

package subtitle

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mgpai22/bilisub/internal/charset"
)

const (
	dialoguePrefix = "Dialogue:"

	// Layer,Start,End,Style,Name,MarginL,MarginR,MarginV,Effect,Text
	dialogueFields = 10
)

// single dialogue record reduced to its timing and text
type Line struct {
	Start string
	End   string
	Text  string
}

// output form: start,end,text (text is not escaped)
func (l Line) String() string {
	return l.Start + "," + l.End + "," + l.Text
}

// StartTime decodes Start. The text form is what gets written.
func (l Line) StartTime() (time.Duration, error) {
	return TimestampDuration(l.Start)
}

func (l Line) EndTime() (time.Duration, error) {
	return TimestampDuration(l.End)
}

// result of scanning a script for dialogue records
type DialogueScan struct {
	Lines []Line
	// Dialogue: lines dropped for having fewer than ten fields
	Skipped int
}

type ExtractStats struct {
	Written int
	Skipped int
	// first and last written records, zero when nothing was written
	First Line
	Last  Line
}

// longest line accepted from a script
const maxLineSize = 16 << 20

// ParseDialogues reads r line by line and collects every well-formed
// Dialogue record in input order. Malformed records are counted, not
// reported. Lines may end in \n, \r\n or a bare \r.
func ParseDialogues(r io.Reader) (DialogueScan, error) {
	scan := DialogueScan{Lines: make([]Line, 0)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)

	for scanner.Scan() {
		raw := scanner.Text()
		if line, ok := parseDialogueLine(raw); ok {
			scan.Lines = append(scan.Lines, line)
		} else if strings.HasPrefix(raw, dialoguePrefix) {
			scan.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return DialogueScan{}, fmt.Errorf("error reading subtitle script: %w", err)
	}

	return scan, nil
}

// scanLines is bufio.ScanLines with bare \r also ending a line.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// a \n may follow in the next read
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func parseDialogueLine(raw string) (Line, bool) {
	if !strings.HasPrefix(raw, dialoguePrefix) {
		return Line{}, false
	}

	parts := strings.SplitN(strings.TrimSpace(raw), ",", dialogueFields)
	if len(parts) < dialogueFields {
		return Line{}, false
	}

	return Line{
		Start: parts[1],
		End:   parts[2],
		Text:  strings.TrimSpace(parts[9]),
	}, true
}

func WriteLines(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadDialogues opens an ASS/SSA script and returns its dialogue records.
func ReadDialogues(path string) (DialogueScan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DialogueScan{}, fmt.Errorf("failed to read subtitle script: %w", err)
	}

	if !utf8.Valid(data) {
		data, err = charset.ToUTF8(data)
		if err != nil {
			return DialogueScan{}, fmt.Errorf("failed to decode subtitle script: %w", err)
		}
	}

	return ParseDialogues(bytes.NewReader(data))
}

// Extract reduces the script at inputPath to start,end,text lines written to
// outputPath. The output is replaced atomically, so a failed write leaves
// any previous file untouched.
func Extract(inputPath, outputPath string) (ExtractStats, error) {
	scan, err := ReadDialogues(inputPath)
	if err != nil {
		return ExtractStats{}, err
	}

	var buf bytes.Buffer
	if err := WriteLines(&buf, scan.Lines); err != nil {
		return ExtractStats{}, err
	}

	if err := writeFileAtomic(outputPath, buf.Bytes()); err != nil {
		return ExtractStats{}, fmt.Errorf("failed to write extracted lines: %w", err)
	}

	stats := ExtractStats{
		Written: len(scan.Lines),
		Skipped: scan.Skipped,
	}
	if n := len(scan.Lines); n > 0 {
		stats.First = scan.Lines[0]
		stats.Last = scan.Lines[n-1]
	}
	return stats, nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

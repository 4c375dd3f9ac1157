package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned when a line of a trace cannot be parsed.
var ErrMalformedLine = errors.New("malformed trace line")

// A Reader parses a text trace. Each non-empty line holds an access kind (L or
// S) followed by a hexadecimal address, with or without the 0x prefix. Any
// further fields on a line are ignored.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader that consumes r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next access. It returns io.EOF after the last access.
func (r *Reader) Next() (AccessEvent, error) {
	for r.scanner.Scan() {
		r.line++

		fields := strings.Fields(r.scanner.Text())
		if len(fields) == 0 {
			continue
		}

		return r.parse(fields)
	}

	if err := r.scanner.Err(); err != nil {
		return AccessEvent{}, err
	}

	return AccessEvent{}, io.EOF
}

func (r *Reader) parse(fields []string) (AccessEvent, error) {
	if len(fields) < 2 {
		return AccessEvent{}, fmt.Errorf("line %d: missing address: %w",
			r.line, ErrMalformedLine)
	}

	kind, err := ParseAccessKind(fields[0])
	if err != nil {
		return AccessEvent{}, fmt.Errorf("line %d: %v: %w",
			r.line, err, ErrMalformedLine)
	}

	hex := strings.TrimPrefix(strings.ToLower(fields[1]), "0x")

	addr, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return AccessEvent{}, fmt.Errorf("line %d: bad address %q: %w",
			r.line, fields[1], ErrMalformedLine)
	}

	return AccessEvent{Kind: kind, Address: addr}, nil
}

// ReadAll returns all the remaining accesses in order.
func (r *Reader) ReadAll() ([]AccessEvent, error) {
	var events []AccessEvent

	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}

		if err != nil {
			return nil, err
		}

		events = append(events, e)
	}
}

// ReadFile reads a whole trace file. The path "-" reads the standard input.
func ReadFile(path string) ([]AccessEvent, error) {
	if path == "-" {
		return NewReader(os.Stdin).ReadAll()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	events, err := NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return events, nil
}

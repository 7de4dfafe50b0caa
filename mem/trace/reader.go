// Package trace reads memory address traces and records what caches do with
// them.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformedAddress is returned when a trace holds something that is not a
// 16-bit address.
var ErrMalformedAddress = errors.New("malformed address")

// Parse reads addresses separated by whitespace or commas. Numbers follow Go
// literal syntax, so 0x10, 0o20, 0b10000 and 16 are the same address.
// Everything after a '#' on a line is ignored. Lines may be of any length.
func Parse(r io.Reader) ([]uint16, error) {
	addrs := []uint16{}
	br := bufio.NewReader(r)
	lineNumber := 0

	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, readErr
		}

		if line == "" && errors.Is(readErr, io.EOF) {
			break
		}

		lineNumber++

		lineAddrs, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s",
				ErrMalformedAddress, lineNumber, err)
		}

		addrs = append(addrs, lineAddrs...)

		if errors.Is(readErr, io.EOF) {
			break
		}
	}

	return addrs, nil
}

func parseLine(line string) ([]uint16, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	addrs := make([]uint16, 0, len(tokens))

	for _, token := range tokens {
		addr, err := strconv.ParseUint(token, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("%q", token)
		}

		addrs = append(addrs, uint16(addr))
	}

	return addrs, nil
}

// LoadFile parses the trace stored in a file.
func LoadFile(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	addrs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return addrs, nil
}

// Write stores addresses one per line in hexadecimal, in a form Parse reads
// back.
func Write(w io.Writer, addrs []uint16) error {
	bw := bufio.NewWriter(w)
	for _, addr := range addrs {
		if _, err := fmt.Fprintf(bw, "0x%04x\n", addr); err != nil {
			return err
		}
	}

	return bw.Flush()
}

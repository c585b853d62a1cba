package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// MaxLineSize is the longest line a source keeps. Longer lines are truncated
// to this many bytes; the rest of the line is discarded.
const MaxLineSize = 1024 * 1024

// StdinName is the source name used for standard input.
const StdinName = "-"

// ReaderSource implements LogSource over a single io.Reader.
type ReaderSource struct {
	name    string
	reader  *bufio.Reader
	closer  io.Closer
	lineNum int
}

// NewReaderSource creates a LogSource reading lines from r.
// If r is an io.Closer it is closed by Close.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	s := &ReaderSource{
		name:   name,
		reader: bufio.NewReaderSize(r, 64*1024),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next returns the next line. Invalid UTF-8 sequences are dropped from the
// line rather than failing the read.
func (s *ReaderSource) Next(ctx context.Context) (*LogLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	content, err := s.readLine()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}

	s.lineNum++
	return &LogLine{
		Content: strings.ToValidUTF8(string(content), ""),
		Source:  s.name,
		LineNum: s.lineNum,
	}, nil
}

// readLine returns one line without its terminator, keeping at most
// MaxLineSize bytes of it.
func (s *ReaderSource) readLine() ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			if err == io.EOF && line != nil {
				return line, nil
			}
			return nil, err
		}
		if room := MaxLineSize - len(line); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			line = append(line, chunk...)
		}
		if line == nil {
			line = []byte{}
		}
		if !isPrefix {
			return line, nil
		}
	}
}

// Close releases the underlying reader, if it is closable.
func (s *ReaderSource) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// FileSource implements LogSource for reading from log files in order.
// Compressed files (.gz, .zst) are decoded transparently.
type FileSource struct {
	files     []string
	current   *ReaderSource
	fileIndex int
}

// NewFileSource creates a LogSource that reads the given files one after another.
func NewFileSource(files []string) *FileSource {
	return &FileSource{
		files:     files,
		fileIndex: -1,
	}
}

// Next returns the next line across all files.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*LogLine, error) {
	for {
		if s.current == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		line, err := s.current.Next(ctx)
		if err == nil {
			return line, nil
		}
		if err != io.EOF {
			return nil, err
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	rc, err := OpenLogFile(path)
	if err != nil {
		return err
	}

	s.current = NewReaderSource(rc, path)
	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.current != nil {
		err := s.current.Close()
		s.current = nil
		return err
	}
	return nil
}

package renderer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

var (
	// ErrDimensionMismatch is returned when a checkpoint was written for a different image size
	ErrDimensionMismatch = errors.New("checkpoint dimensions do not match")
	// ErrCorruptCheckpoint is returned for malformed or truncated checkpoint data
	ErrCorruptCheckpoint = errors.New("corrupt checkpoint")
)

// Checkpoint appends finished rows to a part file.
// The file starts with "<width> <height>\n" followed by one "L<row> <width*3 bytes>\n"
// record per row in completion order.
type Checkpoint struct {
	w      io.Writer
	closer io.Closer
	path   string
	width  int
}

// NewCheckpoint writes the header to w
func NewCheckpoint(w io.Writer, width, height int) (*Checkpoint, error) {
	if _, err := fmt.Fprintf(w, "%d %d\n", width, height); err != nil {
		return nil, fmt.Errorf("failed to write checkpoint header: %w", err)
	}
	return &Checkpoint{w: w, width: width}, nil
}

// CreateCheckpoint creates the first free "<outputPath>.<n>.part" file
func CreateCheckpoint(outputPath string, width, height int) (*Checkpoint, error) {
	for n := 0; ; n++ {
		path := fmt.Sprintf("%s.%d.part", outputPath, n)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create checkpoint: %w", err)
		}

		cp, err := NewCheckpoint(file, width, height)
		if err != nil {
			file.Close()
			os.Remove(path)
			return nil, err
		}
		cp.closer = file
		cp.path = path
		return cp, nil
	}
}

// Path returns the file path, empty for checkpoints not backed by a file
func (c *Checkpoint) Path() string {
	return c.path
}

// WriteRow appends one row record
func (c *Checkpoint) WriteRow(row int, pixels []byte) error {
	if len(pixels) != c.width*3 {
		return fmt.Errorf("row %d has %d bytes, expected %d", row, len(pixels), c.width*3)
	}
	record := make([]byte, 0, len(pixels)+16)
	record = append(record, 'L')
	record = strconv.AppendInt(record, int64(row), 10)
	record = append(record, ' ')
	record = append(record, pixels...)
	record = append(record, '\n')

	if _, err := c.w.Write(record); err != nil {
		return fmt.Errorf("failed to write row %d to checkpoint: %w", row, err)
	}
	return nil
}

// Close closes the underlying file
func (c *Checkpoint) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// ReadCheckpoint reads the rows stored in a checkpoint. The result has one entry per row,
// nil for rows the checkpoint does not contain; later records for a row replace earlier ones.
// With recoverCorrupt, a malformed record ends reading and the rows before it are kept.
func ReadCheckpoint(r io.Reader, width, height int, recoverCorrupt bool) ([][]byte, error) {
	br := bufio.NewReader(r)

	fileWidth, err := readNumber(br)
	if err != nil {
		return nil, fmt.Errorf("%w: reading width: %v", ErrCorruptCheckpoint, err)
	}
	fileHeight, err := readNumber(br)
	if err != nil {
		return nil, fmt.Errorf("%w: reading height: %v", ErrCorruptCheckpoint, err)
	}
	if fileWidth != width || fileHeight != height {
		return nil, fmt.Errorf("%w: expected %dx%d, checkpoint has %dx%d",
			ErrDimensionMismatch, width, height, fileWidth, fileHeight)
	}

	rows := make([][]byte, height)
	for {
		done, err := readRecord(br, rows, width)
		if done {
			return rows, nil
		}
		if err != nil {
			if recoverCorrupt {
				return rows, nil
			}
			return nil, err
		}
	}
}

// readRecord reads one row record; done is true at a clean end of input
func readRecord(br *bufio.Reader, rows [][]byte, width int) (done bool, err error) {
	tag, err := br.ReadByte()
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptCheckpoint, err)
	}
	if tag != 'L' {
		return false, fmt.Errorf("%w: missing leading L", ErrCorruptCheckpoint)
	}

	row, err := readNumber(br)
	if err != nil {
		return false, fmt.Errorf("%w: reading row number: %v", ErrCorruptCheckpoint, err)
	}
	if row < 0 || row >= len(rows) {
		return false, fmt.Errorf("%w: row %d out of range", ErrCorruptCheckpoint, row)
	}

	pixels := make([]byte, width*3)
	if _, err := io.ReadFull(br, pixels); err != nil {
		return false, fmt.Errorf("%w: row %d truncated", ErrCorruptCheckpoint, row)
	}
	if end, err := br.ReadByte(); err != nil || end != '\n' {
		return false, fmt.Errorf("%w: missing newline after row %d", ErrCorruptCheckpoint, row)
	}
	rows[row] = pixels
	return false, nil
}

// readNumber reads decimal digits up to a space or newline
func readNumber(br *bufio.Reader) (int, error) {
	var digits []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\n' {
			break
		}
		if b < '0' || b > '9' || len(digits) > 9 {
			return 0, fmt.Errorf("unexpected byte %q in number", b)
		}
		digits = append(digits, b)
	}
	if len(digits) == 0 {
		return 0, errors.New("empty number")
	}
	return strconv.Atoi(string(digits))
}

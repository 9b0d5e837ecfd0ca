package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/dirmirror/pkg/storage"
)

// MinBufferSize is the smallest chunk the binary comparator reads at a time
const MinBufferSize = 4096

// BinaryComparator compares files byte-by-byte.
// Files are equal only when both streams end at the same offset with
// identical bytes; metadata is never trusted to report equality.
type BinaryComparator struct {
	bufferSize int
	bufferPool *sync.Pool
}

// NewBinaryComparator creates a new byte-by-byte comparator
func NewBinaryComparator(bufferSize int) *BinaryComparator {
	if bufferSize < MinBufferSize {
		bufferSize = MinBufferSize
	}
	return &BinaryComparator{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Compare compares the file at path on both backends byte-by-byte
func (c *BinaryComparator) Compare(ctx context.Context, host, dest storage.Backend, path string) (*Comparison, error) {
	hostInfo, err := host.Lstat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat host file: %w", err)
	}

	destInfo, err := dest.Lstat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat destination file: %w", err)
	}

	// A size mismatch proves a difference; equal sizes prove nothing
	if hostInfo.Size != destInfo.Size {
		return &Comparison{
			Path:   path,
			Result: Different,
			Reason: fmt.Sprintf("size mismatch: host=%d, dest=%d", hostInfo.Size, destInfo.Size),
		}, nil
	}

	hostReader, err := host.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open host file: %w", err)
	}
	defer hostReader.Close()

	destReader, err := dest.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open destination file: %w", err)
	}
	defer destReader.Close()

	return c.CompareReaders(ctx, path, hostReader, destReader)
}

// CompareReaders compares two streams chunk by chunk
func (c *BinaryComparator) CompareReaders(ctx context.Context, path string, hostReader, destReader io.Reader) (*Comparison, error) {
	hostBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(hostBufPtr)
	hostBuf := *hostBufPtr

	destBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(destBufPtr)
	destBuf := *destBufPtr

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		hostN, hostErr := io.ReadFull(hostReader, hostBuf)
		destN, destErr := io.ReadFull(destReader, destBuf)

		if hostErr != nil && !isEOF(hostErr) {
			return nil, fmt.Errorf("failed to read host file: %w", hostErr)
		}
		if destErr != nil && !isEOF(destErr) {
			return nil, fmt.Errorf("failed to read destination file: %w", destErr)
		}

		n := min(hostN, destN)
		if !bytes.Equal(hostBuf[:n], destBuf[:n]) {
			for i := 0; i < n; i++ {
				if hostBuf[i] != destBuf[i] {
					return &Comparison{
						Path:   path,
						Result: Different,
						Reason: fmt.Sprintf("binary content differs at byte offset %d", offset+int64(i)),
					}, nil
				}
			}
		}

		if hostN != destN {
			return &Comparison{
				Path:   path,
				Result: Different,
				Reason: fmt.Sprintf("length differs after byte offset %d", offset+int64(n)),
			}, nil
		}

		offset += int64(n)

		// A short read on both sides means both streams are exhausted
		if hostErr != nil {
			break
		}
	}

	return &Comparison{
		Path:   path,
		Result: Same,
		Reason: fmt.Sprintf("binary content matches (%d bytes)", offset),
	}, nil
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

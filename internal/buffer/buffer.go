package buffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
)

// chunkSize is how much of the file a search reads at a time.
const chunkSize = 64 * 1024

// Buffer is a read-only view of a file on disk. Bytes are fetched with
// ReadAt on demand, so only the visible part of a file is ever read.
type Buffer struct {
	filename string
	file     *os.File
	size     int64
	hash     string
}

func Open(filename string) (*Buffer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat")
	}
	if info.IsDir() {
		f.Close()
		return nil, errors.Errorf("%s is a directory", filename)
	}

	hash, err := hashReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Buffer{
		filename: filename,
		file:     f,
		size:     info.Size(),
		hash:     hash,
	}, nil
}

func hashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Wrap(err, "hash")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (b *Buffer) Filename() string {
	return b.filename
}

func (b *Buffer) Size() int64 {
	return b.size
}

// ReadAt implements io.ReaderAt over the file as it was last loaded.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if b.file == nil {
		return 0, os.ErrClosed
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if rem := b.size - off; int64(len(p)) > rem {
		n, err := b.file.ReadAt(p[:rem], off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return b.file.ReadAt(p, off)
}

func (b *Buffer) GetByte(offset int64) (byte, bool) {
	if offset < 0 || offset >= b.size {
		return 0, false
	}
	var p [1]byte
	if _, err := b.ReadAt(p[:], offset); err != nil && err != io.EOF {
		return 0, false
	}
	return p[0], true
}

func (b *Buffer) GetBytes(offset int64, count int) []byte {
	if offset < 0 || offset >= b.size || count <= 0 {
		return nil
	}
	end := offset + int64(count)
	if end > b.size {
		end = b.size
	}
	result := make([]byte, end-offset)
	n, err := b.ReadAt(result, offset)
	if err != nil && err != io.EOF {
		return nil
	}
	return result[:n]
}

// Find returns the offset of the first match of pattern at or after
// startOffset, or before startOffset when searching backwards. It returns
// -1 if there is none.
func (b *Buffer) Find(pattern []byte, startOffset int64, forward bool) int64 {
	if len(pattern) == 0 || b.size == 0 {
		return -1
	}
	if forward {
		return b.findForward(pattern, startOffset)
	}
	return b.findBackward(pattern, startOffset)
}

func (b *Buffer) findForward(pattern []byte, start int64) int64 {
	if start < 0 {
		start = 0
	}
	overlap := int64(len(pattern) - 1)
	buf := make([]byte, chunkSize+overlap)
	for pos := start; pos+int64(len(pattern)) <= b.size; pos += chunkSize {
		n, err := b.ReadAt(buf, pos)
		if err != nil && err != io.EOF {
			return -1
		}
		if i := bytes.Index(buf[:n], pattern); i >= 0 {
			return pos + int64(i)
		}
	}
	return -1
}

func (b *Buffer) findBackward(pattern []byte, start int64) int64 {
	// last position a match may begin at
	last := start - 1
	if max := b.size - int64(len(pattern)); last > max {
		last = max
	}
	overlap := int64(len(pattern) - 1)
	buf := make([]byte, chunkSize+overlap)
	for end := last + 1; end > 0; end -= chunkSize {
		pos := end - chunkSize
		if pos < 0 {
			pos = 0
		}
		n, err := b.ReadAt(buf[:end-pos+overlap], pos)
		if err != nil && err != io.EOF {
			return -1
		}
		if i := bytes.LastIndex(buf[:n], pattern); i >= 0 && pos+int64(i) <= last {
			return pos + int64(i)
		}
	}
	return -1
}

// CountMatches counts possibly overlapping occurrences of pattern.
func (b *Buffer) CountMatches(pattern []byte) int {
	if len(pattern) == 0 || b.size == 0 {
		return 0
	}
	overlap := int64(len(pattern) - 1)
	buf := make([]byte, chunkSize+overlap)
	count := 0
	for pos := int64(0); pos+int64(len(pattern)) <= b.size; pos += chunkSize {
		n, err := b.ReadAt(buf, pos)
		if err != nil && err != io.EOF {
			break
		}
		data := buf[:n]
		// matches starting in the overlap belong to the next chunk
		for i := 0; i < chunkSize; {
			j := bytes.Index(data[i:], pattern)
			if j < 0 || i+j >= chunkSize {
				break
			}
			count++
			i += j + 1
		}
	}
	return count
}

// HasChangedOnDisk reports whether the file contents differ from what was
// last loaded.
func (b *Buffer) HasChangedOnDisk() (bool, error) {
	f, err := os.Open(b.filename)
	if err != nil {
		return false, errors.Wrap(err, "open")
	}
	defer f.Close()

	current, err := hashReader(f)
	if err != nil {
		return false, err
	}
	return current != b.hash, nil
}

// Reload reopens the file and picks up its current size and contents.
func (b *Buffer) Reload() error {
	f, err := os.Open(b.filename)
	if err != nil {
		return errors.Wrap(err, "reopen")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return errors.Wrap(err, "stat")
	}
	hash, err := hashReader(f)
	if err != nil {
		f.Close()
		return err
	}

	if b.file != nil {
		b.file.Close()
	}
	b.file = f
	b.size = info.Size()
	b.hash = hash
	return nil
}

func (b *Buffer) Close() error {
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}

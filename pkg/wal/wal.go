// Package wal 追加写的记录文件：每条记录 = len(4) + crc32(4) + payload，小端
package wal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"
)

const (
	headerSize      = 8
	defaultFilePerm = 0o644
	defaultBufSize  = 64 << 10
)

// DefaultMaxPayload 单条上限，防止坏长度把内存吃爆
const DefaultMaxPayload = 4 << 20

var (
	ErrCorruptHeader    = errors.New("wal: corrupt header")
	ErrCorruptPayload   = errors.New("wal: corrupt payload")
	ErrChecksumMismatch = errors.New("wal: checksum mismatch")
	ErrPayloadTooLarge  = errors.New("wal: payload too large")
	ErrClosed           = errors.New("wal: closed")
)

type Options struct {
	BufferSize int
	MaxPayload int
	// SyncEachWrite 每次 Append 都 fsync；关掉时只在 Flush/Close 时落盘
	SyncEachWrite bool
}

// Writer 并发安全
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	bw     *bufio.Writer
	off    int64
	max    int
	sync   bool
	closed bool
}

// Open 打开（或创建）文件用于追加
// 上次崩溃留下的半条记录会先被截掉，保证新记录接在最后一条完整记录之后
func Open(path string, opts Options) (*Writer, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufSize
	}
	if opts.MaxPayload <= 0 {
		opts.MaxPayload = DefaultMaxPayload
	}

	st, err := Replay(path, opts.MaxPayload, func([]byte) error { return nil })
	if err != nil {
		return nil, err
	}
	if st.TruncatedTail {
		if err := os.Truncate(path, st.LastGoodOffset); err != nil {
			return nil, fmt.Errorf("wal: drop torn tail: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return nil, err
	}
	return &Writer{
		f:    f,
		bw:   bufio.NewWriterSize(f, opts.BufferSize),
		off:  st.LastGoodOffset,
		max:  opts.MaxPayload,
		sync: opts.SyncEachWrite,
	}, nil
}

// Append 写一条记录，返回写完后的逻辑偏移
func (w *Writer) Append(payload []byte) (int64, error) {
	if len(payload) > w.max {
		return 0, ErrPayloadTooLarge
	}
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(hdr[4:], crc32.ChecksumIEEE(payload))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, ErrClosed
	}
	if _, err := w.bw.Write(hdr[:]); err != nil {
		return 0, err
	}
	if _, err := w.bw.Write(payload); err != nil {
		return 0, err
	}
	w.off += int64(headerSize + len(payload))
	if w.sync {
		if err := w.flushLocked(); err != nil {
			return 0, err
		}
	}
	return w.off, nil
}

func (w *Writer) Offset() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.off
}

// Flush 刷 bufio 并 fsync
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.f.Sync()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.flushLocked(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

type ReplayStats struct {
	Records        int
	LastGoodOffset int64
	TruncatedTail  bool // 尾部有半条或校验不过的记录（崩溃时写了一半）
}

// Replay 顺序读出所有完整记录；文件不存在视为空
// 尾部半条/校验失败的最后一条不算错误，只体现在 TruncatedTail；中间坏数据返回错误
func Replay(path string, maxPayload int, onRecord func(payload []byte) error) (ReplayStats, error) {
	var st ReplayStats
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, defaultBufSize)
	var hdr [headerSize]byte
	for {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return st, nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				st.TruncatedTail = true
				return st, nil
			}
			return st, err
		}
		n := int(binary.LittleEndian.Uint32(hdr[:4]))
		sum := binary.LittleEndian.Uint32(hdr[4:])
		if n > maxPayload {
			return st, fmt.Errorf("%w at offset %d", ErrPayloadTooLarge, st.LastGoodOffset)
		}

		payload := make([]byte, n)
		if _, err := io.ReadFull(br, payload); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				st.TruncatedTail = true
				return st, nil
			}
			return st, err
		}
		if crc32.ChecksumIEEE(payload) != sum {
			// 最后一条长度够但校验不过：崩溃时数据没刷完整，按半条处理
			if _, perr := br.Peek(1); errors.Is(perr, io.EOF) {
				st.TruncatedTail = true
				return st, nil
			}
			return st, fmt.Errorf("%w at offset %d", ErrChecksumMismatch, st.LastGoodOffset)
		}
		if err := onRecord(payload); err != nil {
			return st, err
		}
		st.Records++
		st.LastGoodOffset += int64(headerSize + n)
	}
}

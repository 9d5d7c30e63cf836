package randomness

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
)

var (
	ErrInvalidRange = errors.New("randomness: lo greater than hi")
	ErrExhausted    = errors.New("randomness: scripted values exhausted")
)

// Source 回傳 [lo, hi] 閉區間內均勻分佈的整數
type Source interface {
	DrawUniform(lo, hi uint64) (uint64, error)
}

// uniform 以拒絕取樣把 64 位元序列縮到 [lo, hi]
func uniform(next func() (uint64, error), lo, hi uint64) (uint64, error) {
	if lo > hi {
		return 0, ErrInvalidRange
	}
	span := hi - lo + 1
	if span == 0 {
		return next()
	}
	limit := math.MaxUint64 - math.MaxUint64%span
	for {
		x, err := next()
		if err != nil {
			return 0, err
		}
		if x < limit {
			return lo + x%span, nil
		}
	}
}

type CryptoSource struct {
	mu     sync.Mutex
	reader io.Reader
}

func NewCryptoSource() *CryptoSource {
	return &CryptoSource{reader: rand.Reader}
}

func (s *CryptoSource) DrawUniform(lo, hi uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf [8]byte
	return uniform(func() (uint64, error) {
		if _, err := io.ReadFull(s.reader, buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	}, lo, hi)
}

// Sequence 依序回傳預先給定的值（不檢查區間），測試用
type Sequence struct {
	mu     sync.Mutex
	values []uint64
	calls  [][2]uint64
}

func NewSequence(values ...uint64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) DrawUniform(lo, hi uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, [2]uint64{lo, hi})
	if len(s.values) == 0 {
		return 0, ErrExhausted
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

// Calls 回傳每次抽取時收到的 [lo, hi]
func (s *Sequence) Calls() [][2]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]uint64, len(s.calls))
	copy(out, s.calls)
	return out
}

package randomness

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"sync"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/sign/bls"
	"go.dedis.ch/kyber/v3/util/random"
	"golang.org/x/xerrors"
)

var ErrProofMismatch = errors.New("randomness: proof value does not match signature")

// Proof 只需公鑰即可重算的抽籤證明
type Proof struct {
	Public    []byte `json:"public"`
	Round     uint64 `json:"round"`
	Prev      []byte `json:"prev"`
	Context   []byte `json:"context"`
	Signature []byte `json:"signature"`
	Lo        uint64 `json:"lo"`
	Hi        uint64 `json:"hi"`
	Value     uint64 `json:"value"`
}

// Prover 可以為每次抽籤附上證明；context 綁定這次抽籤的對象
type Prover interface {
	Source
	Draw(context []byte, lo, hi uint64) (uint64, *Proof, error)
}

// ChainHead 信標鏈目前的最後一輪
type ChainHead struct {
	Round uint64
	Prev  []byte
}

// HeadStore 持久化鏈頭，重啟後從上次的 round 接續
type HeadStore interface {
	// 尚未存過時回傳 nil, nil
	LoadHead(public []byte) (*ChainHead, error)
	SaveHead(public []byte, head ChainHead) error
}

// Beacon BLS 鏈式隨機信標。
// 第 r 輪簽 sha256(prev || r || context)，prev 為上一輪簽章（第一輪為公鑰雜湊）。
// BLS 簽章是確定性的，持有私鑰的一方無法重抽同一輪。
type Beacon struct {
	mu     sync.Mutex
	suite  pairing.Suite
	secret kyber.Scalar
	public kyber.Point
	pubBuf []byte
	round  uint64
	prev   []byte
	store  HeadStore
}

// NewBeacon secretHex 為空時產生新的金鑰對
func NewBeacon(secretHex string) (*Beacon, error) {
	suite := pairing.NewSuiteBn256()

	var secret kyber.Scalar
	var public kyber.Point
	if secretHex == "" {
		secret, public = bls.NewKeyPair(suite, random.New())
	} else {
		raw, err := hex.DecodeString(secretHex)
		if err != nil {
			return nil, xerrors.Errorf("couldn't decode beacon secret: %v", err)
		}
		secret = suite.G2().Scalar()
		if err := secret.UnmarshalBinary(raw); err != nil {
			return nil, xerrors.Errorf("couldn't unmarshal beacon secret: %v", err)
		}
		public = suite.G2().Point().Mul(secret, nil)
	}

	pubBuf, err := public.MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal public key: %v", err)
	}
	genesis := sha256.Sum256(pubBuf)

	return &Beacon{
		suite:  suite,
		secret: secret,
		public: public,
		pubBuf: pubBuf,
		prev:   genesis[:],
	}, nil
}

// Attach 從 store 載入鏈頭，之後每一輪都先寫入 store 才交出簽章
func (b *Beacon) Attach(store HeadStore) error {
	head, err := store.LoadHead(b.pubBuf)
	if err != nil {
		return xerrors.Errorf("couldn't load beacon head: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if head != nil {
		b.round = head.Round
		b.prev = append([]byte(nil), head.Prev...)
	}
	b.store = store
	return nil
}

func (b *Beacon) PublicKey() []byte {
	out := make([]byte, len(b.pubBuf))
	copy(out, b.pubBuf)
	return out
}

func (b *Beacon) PublicKeyHex() string {
	return hex.EncodeToString(b.pubBuf)
}

func (b *Beacon) Round() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.round
}

func (b *Beacon) DrawUniform(lo, hi uint64) (uint64, error) {
	v, _, err := b.Draw(nil, lo, hi)
	return v, err
}

func (b *Beacon) Draw(context []byte, lo, hi uint64) (uint64, *Proof, error) {
	if lo > hi {
		return 0, nil, ErrInvalidRange
	}

	b.mu.Lock()
	round := b.round + 1
	prev := b.prev
	sig, err := bls.Sign(b.suite, b.secret, roundMessage(prev, round, context))
	if err != nil {
		b.mu.Unlock()
		return 0, nil, xerrors.Errorf("couldn't sign round %d: %v", round, err)
	}
	// 先落盤再推進，簽章不會在重啟後重複出現
	if b.store != nil {
		if err := b.store.SaveHead(b.pubBuf, ChainHead{Round: round, Prev: sig}); err != nil {
			b.mu.Unlock()
			return 0, nil, xerrors.Errorf("couldn't persist round %d: %v", round, err)
		}
	}
	b.round = round
	b.prev = sig
	b.mu.Unlock()

	value, err := uniform(seedStream(sig), lo, hi)
	if err != nil {
		return 0, nil, err
	}

	return value, &Proof{
		Public:    b.PublicKey(),
		Round:     round,
		Prev:      prev,
		Context:   append([]byte(nil), context...),
		Signature: sig,
		Lo:        lo,
		Hi:        hi,
		Value:     value,
	}, nil
}

// VerifyProof 用證明內的公鑰驗簽並重算抽出的值
func VerifyProof(p *Proof) error {
	if p == nil {
		return xerrors.New("missing proof")
	}
	suite := pairing.NewSuiteBn256()
	public := suite.G2().Point()
	if err := public.UnmarshalBinary(p.Public); err != nil {
		return xerrors.Errorf("couldn't decode public key: %v", err)
	}
	if err := bls.Verify(suite, public, roundMessage(p.Prev, p.Round, p.Context), p.Signature); err != nil {
		return xerrors.Errorf("couldn't verify randomness: %v", err)
	}
	value, err := uniform(seedStream(p.Signature), p.Lo, p.Hi)
	if err != nil {
		return err
	}
	if value != p.Value {
		return ErrProofMismatch
	}
	return nil
}

func roundMessage(prev []byte, round uint64, context []byte) []byte {
	h := sha256.New()
	h.Write(prev)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, round)
	h.Write(buf)
	h.Write(context)
	return h.Sum(nil)
}

// seedStream 把簽章展開成 64 位元序列：sha256(seed || counter)
func seedStream(seed []byte) func() (uint64, error) {
	var counter uint64
	return func() (uint64, error) {
		h := sha256.New()
		h.Write(seed)
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, counter)
		h.Write(buf)
		counter++
		return binary.LittleEndian.Uint64(h.Sum(nil)), nil
	}
}

// Package journal 以本機 bbolt 檔保存已提交的抽獎交易，只增不改。
// 每個抽獎一個子 bucket，key 為大端序流水號，遍歷順序即提交順序；
// 紀錄以 protobuf 編碼。隨機信標的鏈頭也存在同一個檔案。
package journal

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go-gin-raffle/internal/randomness"

	"github.com/google/uuid"
	"go.dedis.ch/protobuf"
	bolt "go.etcd.io/bbolt"
)

var ErrProofNotFound = errors.New("journal: no resolution proof recorded")

const (
	rootBucket   = "raffles"
	beaconBucket = "beacon"
)

type EntryKind string

const (
	KindCreated  EntryKind = "created"
	KindTicket   EntryKind = "ticket_bought"
	KindResolved EntryKind = "resolved"
	KindClaimed  EntryKind = "prize_claimed"
)

// Entry 一筆已提交的交易；ID 欄位以字串保存方便 protobuf 編碼
type Entry struct {
	Seq      uint64            `json:"seq"`
	RaffleID string            `json:"raffle_id"`
	Kind     string            `json:"kind"`
	Actor    string            `json:"actor,omitempty"`
	TicketID string            `json:"ticket_id,omitempty"`
	Amount   uint64            `json:"amount"`
	Version  int64             `json:"version"`
	AtMs     int64             `json:"at_ms"`
	Proof    *randomness.Proof `json:"proof,omitempty"`
}

// NewEntry atMs 由呼叫端的 Clock 提供
func NewEntry(kind EntryKind, raffleID uuid.UUID, version int64, atMs int64) *Entry {
	return &Entry{
		RaffleID: raffleID.String(),
		Kind:     string(kind),
		Version:  version,
		AtMs:     atMs,
	}
}

type Journal interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, raffleID uuid.UUID) ([]*Entry, error)
	// Proof 回傳開獎時記錄的隨機性證明
	Proof(ctx context.Context, raffleID uuid.UUID) (*randomness.Proof, error)
	Close() error
}

type BoltJournal struct {
	db *bolt.DB
}

func Open(path string) (*BoltJournal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{rootBucket, beaconBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltJournal{db: db}, nil
}

func (j *BoltJournal) Close() error {
	return j.db.Close()
}

func (j *BoltJournal) Append(_ context.Context, entry *Entry) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket([]byte(rootBucket)).CreateBucketIfNotExists([]byte(entry.RaffleID))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry.Seq = seq

		buf, err := protobuf.Encode(entry)
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
		return b.Put(seqKey(seq), buf)
	})
}

func (j *BoltJournal) List(_ context.Context, raffleID uuid.UUID) ([]*Entry, error) {
	entries := make([]*Entry, 0)

	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(rootBucket)).Bucket([]byte(raffleID.String()))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var entry Entry
			if err := protobuf.Decode(v, &entry); err != nil {
				return fmt.Errorf("decode entry: %w", err)
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (j *BoltJournal) Proof(ctx context.Context, raffleID uuid.UUID) (*randomness.Proof, error) {
	entries, err := j.List(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Kind == string(KindResolved) && entries[i].Proof != nil {
			return entries[i].Proof, nil
		}
	}
	return nil, ErrProofNotFound
}

var _ randomness.HeadStore = (*BoltJournal)(nil)

// LoadHead 以公鑰為 key 讀回信標鏈頭
func (j *BoltJournal) LoadHead(public []byte) (*randomness.ChainHead, error) {
	var head *randomness.ChainHead
	err := j.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(beaconBucket)).Get(public)
		if v == nil {
			return nil
		}
		head = &randomness.ChainHead{}
		if err := protobuf.Decode(v, head); err != nil {
			return fmt.Errorf("decode beacon head: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return head, nil
}

// SaveHead 只接受往前推進的 round
func (j *BoltJournal) SaveHead(public []byte, head randomness.ChainHead) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(beaconBucket))
		if v := b.Get(public); v != nil {
			var current randomness.ChainHead
			if err := protobuf.Decode(v, &current); err != nil {
				return fmt.Errorf("decode beacon head: %w", err)
			}
			if head.Round <= current.Round {
				return fmt.Errorf("beacon round %d already used (head %d)", head.Round, current.Round)
			}
		}
		buf, err := protobuf.Encode(&head)
		if err != nil {
			return fmt.Errorf("encode beacon head: %w", err)
		}
		return b.Put(public, buf)
	})
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

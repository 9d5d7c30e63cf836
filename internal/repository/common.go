package repository

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// 金額欄位為 NUMERIC(20,0)，以文字進出資料庫以保留完整的 uint64 範圍
func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse ticket id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"trading-watchlist-backend/internal/models"
)

// DedupBucket is the time window within which identical submissions
// collapse to one dedup key.
const DedupBucket = 5 * time.Minute

// DeriveDedupKey computes a deterministic key from the operation kind,
// account, payload and time bucket. Two identical submissions inside the
// same bucket share a key and therefore apply at most once.
func DeriveDedupKey(kind models.OperationKind, accountID string, payload models.OperationPayload, at time.Time) string {
	raw, _ := json.Marshal(payload)
	bucket := at.UTC().Truncate(DedupBucket).Unix()

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|", kind, accountID)
	h.Write(raw)
	fmt.Fprintf(h, "|%d", bucket)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// NewsHash computes a stable hash for a fetched article so the same
// headline is not re-emitted across feed polls.
func NewsHash(symbol, headline, publishedAt string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s", symbol, headline, publishedAt)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

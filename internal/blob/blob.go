package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound means no blob exists under the requested key.
var ErrNotFound = errors.New("blob: not found")

// Info describes one stored blob for listing.
type Info struct {
	Key       string
	Size      int64
	CreatedAt time.Time
	Deleted   bool
}

// StoreItf is the blob store contract: large payloads (news articles,
// rendered plots) keyed under namespaced paths, referenced by key from
// the shared store.
type StoreItf interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	// Tag marks a blob logically deleted without removing it.
	Tag(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
}

// NewsKey builds news/<symbol>/<yyyy-mm-dd>/<id>.json.
func NewsKey(symbol, day string) string {
	return fmt.Sprintf("news/%s/%s/%s.json", symbol, day, uuid.NewString())
}

// NewsPrefix is the listing prefix for one symbol's news blobs.
func NewsPrefix(symbol string) string {
	return fmt.Sprintf("news/%s/", symbol)
}

// PlotKey builds plots/networth/<account_id>/<id>.png.
func PlotKey(accountID string) string {
	return fmt.Sprintf("plots/networth/%s/%s.png", accountID, uuid.NewString())
}

// NewsKeyDay extracts the yyyy-mm-dd segment of a news key. ok is false
// when the key does not carry a parseable day.
func NewsKeyDay(key string) (time.Time, bool) {
	parts := strings.Split(key, "/")
	if len(parts) < 4 || parts[0] != "news" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", parts[2])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

package cache

import (
	"encoding/json"
	"fmt"

	"github.com/pagemill/formbridge/bridge/types"
)

// fingerprintPrefixLen is how much of the serialized projection survives
// into the key. The fingerprint is a truncated serialization prefix, not a
// content hash: snapshots that differ only beyond the truncation point
// collide. This is a known, accepted approximation inherited from the
// original design; the length discriminator narrows but does not close the
// collision window.
const fingerprintPrefixLen = 64

// fingerprintProjection is the stable subset of a snapshot that feeds the
// fingerprint. Timestamps and metadata are excluded so re-extracting
// identical data produces an identical key.
type fingerprintProjection struct {
	Containers  []types.Container      `json:"c"`
	Paragraphs  []types.ParagraphBlock `json:"p"`
	Content     string                 `json:"f"`
	IsCompleted bool                   `json:"d"`
}

// Fingerprint derives the cache key for a snapshot.
func Fingerprint(snapshot *types.DocumentSnapshot) string {
	proj := fingerprintProjection{
		Containers:  snapshot.Containers,
		Paragraphs:  snapshot.Paragraphs,
		Content:     snapshot.FlattenedContent,
		IsCompleted: snapshot.IsCompleted,
	}
	data, err := json.Marshal(proj)
	if err != nil {
		// Marshal of these value types cannot realistically fail, but a
		// stable sentinel beats a panic inside the cache path.
		return "fingerprint-error"
	}
	prefix := data
	if len(prefix) > fingerprintPrefixLen {
		prefix = prefix[:fingerprintPrefixLen]
	}
	return fmt.Sprintf("%d:%s", len(data), prefix)
}

package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag derives a weak validator from a record id and its last update.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time) string {
	h := sha1.New()
	h.Write(id[:])
	h.Write([]byte(strconv.FormatInt(updatedAt.UnixMilli(), 10)))
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`
}

// GenerateListETag covers a collection response: it changes when the newest
// record changes or when records are added or removed.
func GenerateListETag(count int, latestID primitive.ObjectID, latestUpdate time.Time) string {
	h := sha1.New()
	h.Write([]byte(strconv.Itoa(count)))
	h.Write(latestID[:])
	h.Write([]byte(strconv.FormatInt(latestUpdate.UnixMilli(), 10)))
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`
}

package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSeriesID computes a deterministic series_id using SHA256.
// Formula: SHA256(term|geo), truncated to 16 hex characters.
func ComputeSeriesID(term, geo string) string {
	data := fmt.Sprintf("%s|%s", term, geo)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(series_id|start_month|end_month|horizon|created_unix)
// Returns hex-encoded hash truncated to 16 characters.
func ComputeRunID(seriesID, startMonth, endMonth string, horizon int, createdUnix int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d", seriesID, startMonth, endMonth, horizon, createdUnix)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}

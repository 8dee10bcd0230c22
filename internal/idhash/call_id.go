// Package idhash derives deterministic record IDs so repeated fixture
// imports produce identical keys.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeCallID computes a deterministic call ID using SHA256.
// Formula: SHA256(token_address|entry_time|call_type|label)
// Returns hex-encoded hash (64 characters).
func ComputeCallID(tokenAddress string, entryTimeMs int64, callType string, label *string) string {
	labelStr := ""
	if label != nil {
		labelStr = *label
	}

	data := fmt.Sprintf("%s|%d|%s|%s",
		tokenAddress,
		entryTimeMs,
		callType,
		labelStr,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// Counter for sequential IDs
	idCounter uint64
)

// GenerateID generates a unique ID
func GenerateID() string {
	count := atomic.AddUint64(&idCounter, 1)
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%x-%x", timestamp, count)
}

// GenerateRunID generates a run ID with a timestamp prefix
func GenerateRunID() string {
	timestamp := time.Now().Format("20060102-150405")
	b := make([]byte, 4)
	_, err := rand.Read(b)
	if err != nil {
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("run-%s-%x", timestamp, count)
	}
	return fmt.Sprintf("run-%s-%s", timestamp, hex.EncodeToString(b))
}

// GenerateTrialID generates an ID for the index-th trial of a runner
func GenerateTrialID(runnerName string, index int) string {
	return fmt.Sprintf("%s-%04d-%s", runnerName, index, GenerateID())
}

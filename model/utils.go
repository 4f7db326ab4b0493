package model

import (
	"bytes"
	"encoding/base32"
	"time"

	"github.com/pborman/uuid"
)

var encoding = base32.NewEncoding("ybndrfg8ejkmcpqxot1uwisza345h769")

// NewID produces a unique, [A-Za-z0-9] identifier that is 26 characters long.
func NewID() string {
	var b bytes.Buffer
	encoder := base32.NewEncoder(encoding, &b)
	_, _ = encoder.Write(uuid.NewRandom())
	_ = encoder.Close()
	b.Truncate(26)
	return b.String()
}

// GetMillis returns the current time in milliseconds since the epoch.
func GetMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

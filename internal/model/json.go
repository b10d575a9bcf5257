package model

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalSnapshot serializes the aggregate snapshot for the state endpoint
// and for callers that want the raw bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func UnmarshalSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(b, &s)
	return s, err
}

package badger

import "fmt"

// Key prefixes for different data types
const (
	vectorRecordPrefix = "vecrec"
	checkpointPrefix   = "chkpt"
)

// makeVectorKey generates a key for a vector record by its chunk ID.
func makeVectorKey(key string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorRecordPrefix, key))
}

// makeCheckpointKey generates a key for a scope's checkpoint.
func makeCheckpointKey(scope string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, scope))
}

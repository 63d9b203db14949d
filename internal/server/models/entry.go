package models

// Entry is one synced log record. Payload is the client's JSON encoding and
// is stored opaquely; Version is the baby version of the push that last wrote
// it.
type Entry struct {
	ID      string
	BabyID  string
	Payload []byte
	Version int64
}

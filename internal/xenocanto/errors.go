package xenocanto

import "fmt"

// FetchError covers every way a page load can fail: transport, status and
// decoding. The session never becomes interactive after one.
type FetchError struct {
	Query  string
	Page   int
	Status int // 0 when no response was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("xeno-canto fetch %q page %d: status=%d: %v", e.Query, e.Page, e.Status, e.Err)
	}
	return fmt.Sprintf("xeno-canto fetch %q page %d: %v", e.Query, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type MalformedRecordingError struct {
	ID    string
	Field string
}

func (e *MalformedRecordingError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("malformed recording: missing %s", e.Field)
	}
	return fmt.Sprintf("malformed recording XC%s: missing %s", e.ID, e.Field)
}

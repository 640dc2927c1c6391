package models

// Status is an enumeration/refresh outcome code.
type Status int

const (
	StatusOK Status = iota
	StatusInvalidData
	StatusAccessDenied
	StatusNetworkUnreachable
	StatusAuthenticationFailed
	StatusCertificateFailed
	StatusUnknownError
)

// Payload is the ownership-handoff unit posted from the enumeration worker
// to the UI thread. ArenaRelease, if non-nil, must be called
// only after the payload's items have been fully replaced by a newer one
// or dropped: it releases the plugin's listing the Items were decoded
// from. Each DisplayName is a decoded copy and does not depend on it.
type Payload struct {
	Generation   uint64
	Status       Status
	Folder       string
	Items        []*Item
	ArenaRelease func()
}

// Release drops the arena reference to the plugin listing this payload
// was decoded from. Safe to call more than once.
func (p *Payload) Release() {
	if p == nil || p.ArenaRelease == nil {
		return
	}
	release := p.ArenaRelease
	p.ArenaRelease = nil
	release()
}

package srs

// ClientInfo is the per-client record exchanged over the control channel
// and stored in the Roster.
type ClientInfo struct {
	Coalition      Coalition      `json:"Coalition"`
	Name           string         `json:"Name"`
	ClientGUID     string         `json:"ClientGuid"`
	RadioInfo      RadioInfo      `json:"RadioInfo"`
	LatLngPosition LatLngPosition `json:"LatLngPosition"`
	AllowRecord    bool           `json:"AllowRecord"`
	Seat           int            `json:"Seat"`
}

// NewDefaultClient returns the ClientInfo of a freshly created client:
// spectator coalition, 11 disabled radio slots, IFF off, full ambient
// volume, recording allowed, seat 0.
func NewDefaultClient(guid, name string) ClientInfo {
	return ClientInfo{
		Coalition:   Spectator,
		Name:        name,
		ClientGUID:  guid,
		RadioInfo:   defaultRadioInfo(),
		AllowRecord: true,
	}
}

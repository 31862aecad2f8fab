package models

// Camera is owned by the platform's inventory service; the viewer only reads it.
type Camera struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	StreamURL string `json:"stream_url"`
	Online    bool   `json:"online"`
	Recording bool   `json:"recording"`
}

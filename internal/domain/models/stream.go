package models

// StreamReference is the result of resolving a camera to a stream. Ready=false
// means the URL is not guaranteed playable yet and the caller should offer a retry.
type StreamReference struct {
	URL   string `json:"url"`
	Ready bool   `json:"ready"`
}

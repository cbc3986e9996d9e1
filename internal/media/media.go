// Package media implements playable-audio resolution for leased responses.
// Self-recorded (CAPI) interviews resolve through attached URLs or signed
// storage URLs; telephony (CATI) interviews resolve through the call
// provider with a phone-number fallback search. Resolution is deduplicated
// and cached per response until the lease is released or replaced.
package media

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates how a playback is delivered.
type Kind string

// Playback kinds.
const (
	// KindURL is a directly playable URL, attached or signed.
	KindURL Kind = "url"
	// KindRecording is fetched call audio served as bytes.
	KindRecording Kind = "recording"
)

// Playback is resolved, playable audio for one response.
type Playback struct {
	ResponseID  uuid.UUID  `json:"response_id"`
	Kind        Kind       `json:"kind"`
	URL         string     `json:"url,omitempty"`
	Data        []byte     `json:"-"`
	ContentType string     `json:"content_type,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

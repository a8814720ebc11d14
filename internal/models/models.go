package models

import "time"

// Session is a completed voice-channel interval for a user. Sessions are
// immutable once persisted and are never edited or deleted.
type Session struct {
	Join  time.Time `json:"join"`
	Leave time.Time `json:"leave"`
}

// Seconds returns the session length in whole seconds.
func (s Session) Seconds() int64 {
	return int64(s.Leave.Sub(s.Join) / time.Second)
}

// VoiceEvent is a normalized voice-state change, translated once from the
// gateway's native payload at the boundary.
type VoiceEvent struct {
	UserID        string
	GuildID       string
	PrevChannelID string
	NextChannelID string
	ChannelName   string
	Timestamp     time.Time
}

// UserTotal pairs a user with an accumulated number of seconds.
type UserTotal struct {
	UserID       string
	TotalSeconds int64
}

package audius

// Wire types for the Audius discovery-provider API. Only the fields the
// catalog needs are decoded.

type wireArtwork struct {
	Small  string `json:"150x150"`
	Medium string `json:"480x480"`
	Large  string `json:"1000x1000"`
}

type wireUser struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Handle         string       `json:"handle"`
	ProfilePicture *wireArtwork `json:"profile_picture"`
}

type wireTrack struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	User          wireUser     `json:"user"`
	Artwork       *wireArtwork `json:"artwork"`
	StreamURL     string       `json:"stream_url"`
	Duration      int          `json:"duration"` // seconds
	Genre         string       `json:"genre"`
	Mood          string       `json:"mood"`
	Tags          string       `json:"tags"` // comma-separated
	PlayCount     int          `json:"play_count"`
	FavoriteCount int          `json:"favorite_count"`
	RepostCount   int          `json:"repost_count"`
	Permalink     string       `json:"permalink"`
	IsStreamable  *bool        `json:"is_streamable"`
}

// streamable reports whether the track can be played. Audius omits the field
// for most tracks; only an explicit false disqualifies.
func (t wireTrack) streamable() bool {
	return t.IsStreamable == nil || *t.IsStreamable
}

type wireTrackList struct {
	Data []wireTrack `json:"data"`
}

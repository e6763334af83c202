package model

const (
	MinLengthMinutes     = 1
	MaxLengthMinutes     = 3
	DefaultLengthMinutes = 1
)

// SoundtrackRequest represents the request body for soundtrack generation
type SoundtrackRequest struct {
	Genre         string `json:"genre" validate:"required"`
	Mood          string `json:"mood" validate:"required"`
	LengthMinutes *int   `json:"lengthMinutes,omitempty" validate:"omitempty,min=1,max=3"`
}

// NewSoundtrackRequest builds a request with an explicit length.
func NewSoundtrackRequest(genre, mood string, lengthMinutes int) SoundtrackRequest {
	return SoundtrackRequest{
		Genre:         genre,
		Mood:          mood,
		LengthMinutes: &lengthMinutes,
	}
}

// Length returns the requested length, or the default when none was given.
func (r SoundtrackRequest) Length() int {
	if r.LengthMinutes == nil {
		return DefaultLengthMinutes
	}
	return *r.LengthMinutes
}

// WithDefaults returns a copy with every optional field filled in.
func (r SoundtrackRequest) WithDefaults() SoundtrackRequest {
	return NewSoundtrackRequest(r.Genre, r.Mood, r.Length())
}

// SoundtrackResult represents the generated soundtrack concept
type SoundtrackResult struct {
	Description  string `json:"description" validate:"required,nonblank"`
	AudioDataURI string `json:"audioDataUri,omitempty" validate:"omitempty,datauri"`
}

// HasAudio reports whether the provider returned an inline audio payload.
func (r *SoundtrackResult) HasAudio() bool {
	return r != nil && r.AudioDataURI != ""
}

package model

const DefaultMoodIntensity = 50

// ComposerForm is the composer page input. MoodIntensity is collected and
// validated but never forwarded to the soundtrack flow.
type ComposerForm struct {
	Genre         string `json:"genre" form:"genre" validate:"required,genre"`
	Mood          string `json:"mood" form:"mood" validate:"required,mood"`
	LengthMinutes int    `json:"lengthMinutes" form:"lengthMinutes" validate:"min=1,max=3"`
	Loop          bool   `json:"loop" form:"loop"`
	MoodIntensity int    `json:"moodIntensity" form:"moodIntensity" validate:"min=0,max=100"`
}

// DefaultComposerForm returns the values the composer page starts with.
func DefaultComposerForm() ComposerForm {
	return ComposerForm{
		Genre:         string(GenreCinematic),
		Mood:          string(MoodEpic),
		LengthMinutes: DefaultLengthMinutes,
		Loop:          false,
		MoodIntensity: DefaultMoodIntensity,
	}
}

// SoundtrackRequest converts the form into the flow input.
func (f ComposerForm) SoundtrackRequest() SoundtrackRequest {
	return NewSoundtrackRequest(f.Genre, f.Mood, f.LengthMinutes)
}

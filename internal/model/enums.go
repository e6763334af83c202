package model

// Genre types
type Genre string

const (
	GenreCinematic  Genre = "Cinematic"
	GenreLofiHipHop Genre = "Lo-fi Hip Hop"
	GenreAmbient    Genre = "Ambient"
	GenreElectronic Genre = "Electronic"
	GenreJazz       Genre = "Jazz"
	GenreHorror     Genre = "Horror"
	GenreFantasy    Genre = "Fantasy"
	GenrePop        Genre = "Pop"
	GenreIndieFolk  Genre = "Indie Folk"
	GenreSynthwave  Genre = "Synthwave"
)

var ValidGenres = []Genre{
	GenreCinematic, GenreLofiHipHop, GenreAmbient, GenreElectronic, GenreJazz,
	GenreHorror, GenreFantasy, GenrePop, GenreIndieFolk, GenreSynthwave,
}

// Mood types
type Mood string

const (
	MoodRelaxing   Mood = "Relaxing"
	MoodEpic       Mood = "Epic"
	MoodIntense    Mood = "Intense"
	MoodHappy      Mood = "Happy"
	MoodUpbeat     Mood = "Upbeat"
	MoodDark       Mood = "Dark"
	MoodMysterious Mood = "Mysterious"
	MoodCalm       Mood = "Calm"
	MoodEnergetic  Mood = "Energetic"
)

var ValidMoods = []Mood{
	MoodRelaxing, MoodEpic, MoodIntense, MoodHappy, MoodUpbeat,
	MoodDark, MoodMysterious, MoodCalm, MoodEnergetic,
}

// IsValidGenre reports whether s is one of the offered genres.
func IsValidGenre(s string) bool {
	for _, g := range ValidGenres {
		if string(g) == s {
			return true
		}
	}
	return false
}

// IsValidMood reports whether s is one of the offered moods.
func IsValidMood(s string) bool {
	for _, m := range ValidMoods {
		if string(m) == s {
			return true
		}
	}
	return false
}

// Export formats offered next to a generated track
type ExportFormat string

const (
	ExportMP3 ExportFormat = "mp3"
	ExportWAV ExportFormat = "wav"
)

var ValidExportFormats = []ExportFormat{ExportMP3, ExportWAV}

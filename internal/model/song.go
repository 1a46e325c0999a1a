package model

// Voice is a vocal part assignable to a song
type Voice = string

// Instrument is an instrumental part assignable to a song
type Instrument = string

const (
	VoiceLucio     Voice = "lucio"
	VoiceCristiano Voice = "cristiano"

	InstrumentChitarra Instrument = "chitarra"
	InstrumentBasso    Instrument = "basso"
)

// PrimaryInstrument is always present in a stored song's instruments
const PrimaryInstrument = InstrumentChitarra

// AllowedVoices lists accepted voices in display order
var AllowedVoices = []Voice{VoiceLucio, VoiceCristiano}

// AllowedInstruments lists accepted instruments in display order
var AllowedInstruments = []Instrument{InstrumentChitarra, InstrumentBasso}

// Song represents one piece in the repertoire
type Song struct {
	ID          string       `json:"id"`
	Author      string       `json:"author"`
	Title       string       `json:"title"`
	Voices      []Voice      `json:"voices"`
	Instruments []Instrument `json:"instruments"`
	KeyOffset   float64      `json:"keyOffset"`
}

// SongInput is a normalized song without its identifier
type SongInput struct {
	Author      string       `json:"author"`
	Title       string       `json:"title"`
	Voices      []Voice      `json:"voices"`
	Instruments []Instrument `json:"instruments"`
	KeyOffset   float64      `json:"keyOffset"`
}

// WithID builds a Song from the input and the given identifier
func (in SongInput) WithID(id string) Song {
	return Song{
		ID:          id,
		Author:      in.Author,
		Title:       in.Title,
		Voices:      append([]Voice{}, in.Voices...),
		Instruments: append([]Instrument{}, in.Instruments...),
		KeyOffset:   in.KeyOffset,
	}
}

// Input returns the song without its identifier
func (s Song) Input() SongInput {
	return SongInput{
		Author:      s.Author,
		Title:       s.Title,
		Voices:      append([]Voice{}, s.Voices...),
		Instruments: append([]Instrument{}, s.Instruments...),
		KeyOffset:   s.KeyOffset,
	}
}

package editor

import (
	"strconv"

	"github.com/kapu/socialforge-go/internal/domain"
)

const (
	captionGenerate   = "Auto-Generate"
	captionGenerating = "Magic working..."
)

// FormState is the model of the edit panel.
type FormState struct {
	Record          domain.Profile
	Busy            bool
	GenerateCaption string
	FriendsCount    string
	FollowersCount  string
	ArabicLayout    bool
	TextFields      []TextControl
}

// TextControl describes one plain text input. Detail inputs show Label as a
// placeholder instead of a heading.
type TextControl struct {
	Field     domain.Field
	Label     string
	Heading   bool
	Value     string
	Multiline bool
}

func (e *Editor) FormState() FormState {
	record := e.store.Get()
	busy := e.BioState() == BioGenerating

	caption := captionGenerate
	if busy {
		caption = captionGenerating
	}

	return FormState{
		Record:          record,
		Busy:            busy,
		GenerateCaption: caption,
		FriendsCount:    strconv.Itoa(record.FriendsCount),
		FollowersCount:  strconv.Itoa(record.FollowersCount),
		ArabicLayout:    record.Language.IsRTL(),
		TextFields: []TextControl{
			{Field: domain.FieldFullName, Label: "Full Name", Heading: true, Value: record.FullName},
			{Field: domain.FieldBio, Label: "Bio", Heading: true, Value: record.Bio, Multiline: true},
			{Field: domain.FieldWorkplace, Label: "Workplace", Value: record.Workplace},
			{Field: domain.FieldEducation, Label: "Education", Value: record.Education},
			{Field: domain.FieldLocation, Label: "Location", Value: record.Location},
		},
	}
}

package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kapu/socialforge-go/pkg/errors"
)

// Field names one Profile field, using the record's JSON names.
type Field string

const (
	FieldFullName        Field = "fullName"
	FieldBio             Field = "bio"
	FieldCoverPhotoURL   Field = "coverPhotoUrl"
	FieldProfilePhotoURL Field = "profilePhotoUrl"
	FieldLocation        Field = "location"
	FieldWorkplace       Field = "workplace"
	FieldEducation       Field = "education"
	FieldFriendsCount    Field = "friendsCount"
	FieldFollowersCount  Field = "followersCount"
	FieldJoinDate        Field = "joinDate"
	FieldIsVerified      Field = "isVerified"
	FieldLanguage        Field = "language"
)

// FieldKind groups fields by the control that edits them.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindText
	KindCount
	KindImage
	KindFlag
	KindLanguage
)

func (f Field) Kind() FieldKind {
	switch f {
	case FieldFullName, FieldBio, FieldLocation, FieldWorkplace, FieldEducation, FieldJoinDate:
		return KindText
	case FieldFriendsCount, FieldFollowersCount:
		return KindCount
	case FieldCoverPhotoURL, FieldProfilePhotoURL:
		return KindImage
	case FieldIsVerified:
		return KindFlag
	case FieldLanguage:
		return KindLanguage
	}
	return KindUnknown
}

// Edit is one user action on the record. Apply returns the old record with
// exactly one field replaced.
type Edit interface {
	Apply(p Profile) (Profile, error)
	Target() Field
}

type TextEdit struct {
	Field Field
	Value string
}

func (e TextEdit) Target() Field { return e.Field }

func (e TextEdit) Apply(p Profile) (Profile, error) {
	if e.Field.Kind() != KindText {
		return p, fieldKindError(e.Field, "text")
	}
	switch e.Field {
	case FieldFullName:
		p.FullName = e.Value
	case FieldBio:
		p.Bio = e.Value
	case FieldLocation:
		p.Location = e.Value
	case FieldWorkplace:
		p.Workplace = e.Value
	case FieldEducation:
		p.Education = e.Value
	case FieldJoinDate:
		p.JoinDate = e.Value
	}
	return p, nil
}

// CountEdit carries raw user input for a numeric field; Apply coerces it with ParseCount.
type CountEdit struct {
	Field Field
	Raw   string
}

func (e CountEdit) Target() Field { return e.Field }

func (e CountEdit) Apply(p Profile) (Profile, error) {
	n := ParseCount(e.Raw)
	switch e.Field {
	case FieldFriendsCount:
		p.FriendsCount = n
	case FieldFollowersCount:
		p.FollowersCount = n
	default:
		return p, fieldKindError(e.Field, "count")
	}
	return p, nil
}

// ImageEdit stores either a typed URL or a local blob reference.
type ImageEdit struct {
	Field Field
	Ref   string
}

func (e ImageEdit) Target() Field { return e.Field }

func (e ImageEdit) Apply(p Profile) (Profile, error) {
	switch e.Field {
	case FieldCoverPhotoURL:
		p.CoverPhotoURL = e.Ref
	case FieldProfilePhotoURL:
		p.ProfilePhotoURL = e.Ref
	default:
		return p, fieldKindError(e.Field, "image")
	}
	return p, nil
}

type ToggleVerified struct{}

func (ToggleVerified) Target() Field { return FieldIsVerified }

func (ToggleVerified) Apply(p Profile) (Profile, error) {
	p.IsVerified = !p.IsVerified
	return p, nil
}

type ToggleLanguage struct{}

func (ToggleLanguage) Target() Field { return FieldLanguage }

func (ToggleLanguage) Apply(p Profile) (Profile, error) {
	p.Language = p.Language.Toggle()
	return p, nil
}

type SetLanguage struct {
	Language Language
}

func (SetLanguage) Target() Field { return FieldLanguage }

func (e SetLanguage) Apply(p Profile) (Profile, error) {
	if !e.Language.Valid() {
		return p, errors.NewValidationError("language must be en or ar", string(FieldLanguage), e.Language)
	}
	p.Language = e.Language
	return p, nil
}

// ParseEdit decodes the wire form {field, value} into a typed edit. The flag
// and language fields take "toggle" (or empty) as well as an explicit value.
func ParseEdit(field, value string) (Edit, error) {
	f := Field(field)
	switch f.Kind() {
	case KindText:
		return TextEdit{Field: f, Value: value}, nil
	case KindCount:
		return CountEdit{Field: f, Raw: value}, nil
	case KindImage:
		return ImageEdit{Field: f, Ref: value}, nil
	case KindFlag:
		if value == "" || value == "toggle" {
			return ToggleVerified{}, nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, errors.NewValidationError("isVerified expects a boolean or \"toggle\"", field, value)
		}
		return SetVerified{Verified: b}, nil
	case KindLanguage:
		if value == "" || value == "toggle" {
			return ToggleLanguage{}, nil
		}
		lang, err := ParseLanguage(value)
		if err != nil {
			return nil, err
		}
		return SetLanguage{Language: lang}, nil
	}
	return nil, errors.NewValidationError(fmt.Sprintf("unknown field %q", field), field, value)
}

type SetVerified struct {
	Verified bool
}

func (SetVerified) Target() Field { return FieldIsVerified }

func (e SetVerified) Apply(p Profile) (Profile, error) {
	p.IsVerified = e.Verified
	return p, nil
}

// ParseCount reads the leading integer of raw ("12abc" -> 12, "1.9" -> 1).
// Unparseable input, negatives and overflow all yield 0.
func ParseCount(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || negative {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

func fieldKindError(f Field, kind string) error {
	return errors.NewValidationError(fmt.Sprintf("field %q is not a %s field", f, kind), string(f), nil)
}

package domain

import (
	"fmt"

	"github.com/kapu/socialforge-go/pkg/errors"
)

// Language selects text direction and the label table of the preview.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageArabic
}

// Toggle flips between the two supported languages.
func (l Language) Toggle() Language {
	if l == LanguageArabic {
		return LanguageEnglish
	}
	return LanguageArabic
}

func (l Language) IsRTL() bool {
	return l == LanguageArabic
}

// Dir returns the HTML dir attribute value.
func (l Language) Dir() string {
	if l.IsRTL() {
		return "rtl"
	}
	return "ltr"
}

func ParseLanguage(raw string) (Language, error) {
	lang := Language(raw)
	if !lang.Valid() {
		return "", errors.NewValidationError("language must be en or ar", string(FieldLanguage), raw)
	}
	return lang, nil
}

// Profile is the single record shown by both panels.
type Profile struct {
	FullName        string   `json:"fullName"`
	Bio             string   `json:"bio"`
	CoverPhotoURL   string   `json:"coverPhotoUrl"`
	ProfilePhotoURL string   `json:"profilePhotoUrl"`
	Location        string   `json:"location"`
	Workplace       string   `json:"workplace"`
	Education       string   `json:"education"`
	FriendsCount    int      `json:"friendsCount"`
	FollowersCount  int      `json:"followersCount"`
	JoinDate        string   `json:"joinDate"`
	IsVerified      bool     `json:"isVerified"`
	Language        Language `json:"language"`
}

// DefaultProfile is the record every session starts from.
func DefaultProfile() Profile {
	return Profile{
		FullName:        "Samir Al-Masri",
		Bio:             "Digital Artist & Coffee Enthusiast ☕ | Creating moments out of pixels.",
		CoverPhotoURL:   "https://picsum.photos/1200/400",
		ProfilePhotoURL: "https://picsum.photos/200/200",
		Location:        "Cairo, Egypt",
		Workplace:       "Freelance Designer",
		Education:       "Faculty of Fine Arts",
		FriendsCount:    1240,
		FollowersCount:  3500,
		JoinDate:        "September 2018",
		IsVerified:      true,
		Language:        LanguageEnglish,
	}
}

// Validate checks a full replacement record, e.g. one received over the JSON API.
func (p Profile) Validate() error {
	if !p.Language.Valid() {
		return errors.NewValidationError("language must be en or ar", string(FieldLanguage), p.Language)
	}
	if p.FriendsCount < 0 {
		return errors.NewValidationError("count must not be negative", string(FieldFriendsCount), p.FriendsCount)
	}
	if p.FollowersCount < 0 {
		return errors.NewValidationError("count must not be negative", string(FieldFollowersCount), p.FollowersCount)
	}
	return nil
}

// Tone steers the bio generator prompt.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFunny        Tone = "funny"
	TonePoetic       Tone = "poetic"
)

var AllTones = []Tone{ToneProfessional, ToneFunny, TonePoetic}

func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneFunny, TonePoetic:
		return true
	}
	return false
}

func ParseTone(raw string) (Tone, error) {
	if raw == "" {
		return ToneProfessional, nil
	}
	tone := Tone(raw)
	if !tone.Valid() {
		return "", errors.NewValidationError(fmt.Sprintf("unknown tone %q", raw), "tone", raw)
	}
	return tone, nil
}

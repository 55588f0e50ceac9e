// Package preview renders the read-only social profile page from the live record.
package preview

import (
	"fmt"

	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/util"
)

// Static mock content. None of it is derived from the record.
const (
	MockPostImage = "https://picsum.photos/id/237/800/600"
	MockLikes     = 12
	MockComments  = 0
	MockShares    = 0

	mutualFriendFirstID = 100
	mutualFriendCount   = 3
	galleryFirstID      = 50
	galleryCount        = 9
)

// IntroLine is one "works at" / "studied at" / "lives in" row.
type IntroLine struct {
	Kind   string
	Prefix string
	Value  string
}

type Post struct {
	Text     string
	Image    string
	Likes    int
	Comments int
	Shares   int
}

// Page is everything the preview template needs. Build is the only producer.
type Page struct {
	Lang            domain.Language
	Dir             string
	RTL             bool
	T               Strings
	FullName        string
	Bio             string
	CoverPhotoURL   string
	ProfilePhotoURL string
	Verified        bool
	Friends         string
	Followers       string
	Composer        string
	Tabs            []string
	Intro           []IntroLine
	MutualFriends   []string
	Gallery         []string
	Post            Post
	Footer          string
}

// Build derives the page from p. It never modifies p.
func Build(p domain.Profile, year int) Page {
	t := StringsFor(p.Language)

	var intro []IntroLine
	if p.Workplace != "" {
		intro = append(intro, IntroLine{Kind: "work", Prefix: t.Work, Value: p.Workplace})
	}
	if p.Education != "" {
		intro = append(intro, IntroLine{Kind: "study", Prefix: t.Study, Value: p.Education})
	}
	if p.Location != "" {
		intro = append(intro, IntroLine{Kind: "live", Prefix: t.Live, Value: p.Location})
	}

	return Page{
		Lang:            p.Language,
		Dir:             p.Language.Dir(),
		RTL:             p.Language.IsRTL(),
		T:               t,
		FullName:        p.FullName,
		Bio:             p.Bio,
		CoverPhotoURL:   p.CoverPhotoURL,
		ProfilePhotoURL: p.ProfilePhotoURL,
		Verified:        p.IsVerified,
		Friends:         FormatNumber(p.FriendsCount),
		Followers:       FormatNumber(p.FollowersCount),
		Composer:        t.Composer(util.FirstToken(p.FullName)),
		Tabs:            []string{t.Posts, t.About, t.Friends, t.Photos, t.Videos, t.More},
		Intro:           intro,
		MutualFriends:   picsumRange(mutualFriendFirstID, mutualFriendCount, 50),
		Gallery:         picsumRange(galleryFirstID, galleryCount, 300),
		Post: Post{
			Text:     t.MockPostText,
			Image:    MockPostImage,
			Likes:    MockLikes,
			Comments: MockComments,
			Shares:   MockShares,
		},
		Footer: fmt.Sprintf("SocialForge Facebook Clone © %d", year),
	}
}

func picsumRange(firstID, count, size int) []string {
	urls := make([]string, count)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://picsum.photos/id/%d/%d/%d", firstID+i, size, size)
	}
	return urls
}

package preview

import (
	"fmt"

	"github.com/kapu/socialforge-go/internal/domain"
)

// Strings is the label table of one language.
type Strings struct {
	Posts        string
	About        string
	Friends      string
	Photos       string
	Videos       string
	More         string
	AddFriend    string
	Message      string
	Intro        string
	Work         string
	Study        string
	Live         string
	Follow       string
	People       string
	FriendCount  string
	WhatsOnMind  string // format verb receives the first name
	LiveVideo    string
	PhotoVideo   string
	Reel         string
	JustNow      string
	MockPostText string
	Like         string
	Comment      string
	Share        string
	EditCover    string
	EditDetails  string
}

var english = Strings{
	Posts:        "Posts",
	About:        "About",
	Friends:      "Friends",
	Photos:       "Photos",
	Videos:       "Videos",
	More:         "More",
	AddFriend:    "Add Friend",
	Message:      "Message",
	Intro:        "Intro",
	Work:         "Works at",
	Study:        "Studied at",
	Live:         "Lives in",
	Follow:       "Followed by",
	People:       "people",
	FriendCount:  "friends",
	WhatsOnMind:  "What's on your mind, %s?",
	LiveVideo:    "Live video",
	PhotoVideo:   "Photo/video",
	Reel:         "Reel",
	JustNow:      "Just now",
	MockPostText: "Just updated my new profile layout! What do you guys think? #NewLook",
	Like:         "Like",
	Comment:      "Comment",
	Share:        "Share",
	EditCover:    "Edit cover photo",
	EditDetails:  "Edit details",
}

var arabic = Strings{
	Posts:        "منشورات",
	About:        "حول",
	Friends:      "الأصدقاء",
	Photos:       "صور",
	Videos:       "فيديو",
	More:         "المزيد",
	AddFriend:    "إضافة صديق",
	Message:      "مراسلة",
	Intro:        "مقدمة",
	Work:         "يعمل لدى",
	Study:        "درس في",
	Live:         "يقيم في",
	Follow:       "يتابعه",
	People:       "شخصاً",
	FriendCount:  "صديق",
	WhatsOnMind:  "بم تفكر يا %s؟",
	LiveVideo:    "فيديو مباشر",
	PhotoVideo:   "صورة/فيديو",
	Reel:         "ريلز",
	JustNow:      "الآن",
	MockPostText: "أحدثت تحديثاً جديداً لملفي الشخصي! ما رأيكم؟",
	Like:         "أعجبني",
	Comment:      "تعليق",
	Share:        "مشاركة",
	EditCover:    "تعديل صورة الغلاف",
	EditDetails:  "تعديل التفاصيل",
}

// StringsFor returns the Arabic table for ar and the English table otherwise.
func StringsFor(lang domain.Language) Strings {
	if lang == domain.LanguageArabic {
		return arabic
	}
	return english
}

// Composer renders the post composer placeholder for firstName.
func (s Strings) Composer(firstName string) string {
	return fmt.Sprintf(s.WhatsOnMind, firstName)
}

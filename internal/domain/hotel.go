package domain

import (
	"strings"
	"time"
)

// Hotel is maintained outside the webhook pipeline; the pipeline only reads it
// to resolve a vendor hotel id to the local one.
type Hotel struct {
	ID         int64
	Name       string
	City       string
	PMS        string // vendor name, e.g. "apaleo"
	PMSHotelID string // vendor-assigned id (UUID for apaleo)
}

type Language string

const (
	LangGerman     Language = "de"
	LangEnglish    Language = "en"
	LangSpanish    Language = "es"
	LangFrench     Language = "fr"
	LangItalian    Language = "it"
	LangDutch      Language = "nl"
	LangPolish     Language = "pl"
	LangPortuguese Language = "pt"
	LangRussian    Language = "ru"
	LangTurkish    Language = "tr"
	LangChinese    Language = "zh"
)

var Languages = []Language{
	LangGerman, LangEnglish, LangSpanish, LangFrench, LangItalian, LangDutch,
	LangPolish, LangPortuguese, LangRussian, LangTurkish, LangChinese,
}

// ParseLanguage matches s case-insensitively against the supported set.
func ParseLanguage(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Languages {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

type Guest struct {
	ID       int64
	Name     string
	Phone    string    // dedup key; may carry a disambiguation suffix
	Language *Language // nil when unknown
}

type StayStatus string

const (
	StayUnknown StayStatus = "UNKNOWN"
	StayBefore  StayStatus = "BEFORE"
	StayInStay  StayStatus = "INSTAY"
	StayAfter   StayStatus = "AFTER"
	StayCancel  StayStatus = "CANCEL"
)

type Stay struct {
	ID               int64
	HotelID          int64
	GuestID          int64
	PMSReservationID string // upsert key
	PMSGuestID       string
	Status           StayStatus
	CheckIn          time.Time
	CheckOut         time.Time
}

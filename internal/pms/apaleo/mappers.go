package apaleo

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotel_pms/internal/domain"
)

const dateLayout = "2006-01-02"

// maxPhoneLen leaves room in the phone column for disambiguation suffixes.
const maxPhoneLen = 32

var strictPhoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ()./-]{5,19}$`)

var statusTable = map[string]domain.StayStatus{
	"not_confirmed": domain.StayUnknown,
	"booked":        domain.StayBefore,
	"in_house":      domain.StayInStay,
	"checked_out":   domain.StayAfter,
	"cancelled":     domain.StayCancel,
	"no_show":       domain.StayUnknown,
}

// mapStatus maps a vendor status case-insensitively; unknown values are UNKNOWN.
func mapStatus(s string) domain.StayStatus {
	if st, ok := statusTable[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st
	}
	return domain.StayUnknown
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

// cleanPhone blanks phones that fail validation. Without strict mode only the
// length is checked.
func cleanPhone(s string, strict bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strict {
		if !strictPhoneRe.MatchString(s) {
			return ""
		}
		return s
	}
	if len(s) > maxPhoneLen {
		return ""
	}
	return s
}

func mapLanguage(country string) *domain.Language {
	if l, ok := domain.ParseLanguage(country); ok {
		return &l
	}
	return nil
}

// sameVendorID compares two vendor ids, as UUIDs when both parse.
func sameVendorID(a, b string) bool {
	ua, errA := uuid.Parse(strings.TrimSpace(a))
	ub, errB := uuid.Parse(strings.TrimSpace(b))
	if errA == nil && errB == nil {
		return ua == ub
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// lookupAny walks dot paths through nested maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupID returns the string or number at path as a string, or "".
func lookupID(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

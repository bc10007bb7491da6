package dedup

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Address is a raw listing address reduced to the components that
// identify a building: street name, house number and section (корпус
// or строение). All components are lowercase with type markers and
// punctuation stripped.
type Address struct {
	Street  string `json:"street"`
	House   string `json:"house"`
	Section string `json:"section"`
}

var (
	// "д. 10а", "дом 10", optionally with a glued section "д. 10 к. 2"
	houseRe = regexp.MustCompile(`(?:^|[\s,])(?:владение|дом|вл|д)[.\s]*(\d+[а-я]?)(?:[\s]*(?:корпус|корп|к)[.\s]*(\d+))?`)
	// "к. 2", "корп 2", "стр. 1"
	sectionRe = regexp.MustCompile(`(?:^|[\s,])(?:корпус|корп|строение|стр|к)[.\s]*(\d+)(?:[\s,]|$)`)
	// glued house and section: "10к2"
	gluedRe = regexp.MustCompile(`(?:^|[\s,])(\d+[а-я]?)к(\d+)(?:[\s,]|$)`)
	// a house number written without the "д." marker: "25", "25а"
	houseTokenRe = regexp.MustCompile(`^\d+[а-я]?$`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

var streetMarkers = markerSet(
	"улица", "ул", "проспект", "просп", "пр-т", "пр-кт", "пр",
	"переулок", "пер", "набережная", "наб", "бульвар", "бул", "б-р",
	"шоссе", "ш", "площадь", "пл", "проезд", "пр-д", "линия", "аллея", "тупик",
)

var localityMarkers = markerSet(
	"г", "город", "гор", "обл", "область", "р-н", "район",
	"мкр", "мкрн", "микрорайон", "пос", "поселок", "п", "село",
	"дер", "деревня", "снт",
)

// unitMarkers mark tokens that describe a unit inside the building and
// never belong to the street name.
var unitMarkers = markerSet(
	"кв", "квартира", "оф", "офис", "пом", "помещение", "эт", "этаж", "подъезд",
)

// majorCities are bare city-name parts that show up without a "г."
// marker in listing addresses.
var majorCities = markerSet(
	"москва", "санкт-петербург", "спб", "новосибирск", "екатеринбург",
	"казань", "нижний", "новгород", "челябинск", "самара", "омск",
	"ростов-на-дону", "уфа", "красноярск", "воронеж", "пермь", "волгоград",
)

func markerSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// NormalizeAddress parses a free-form Russian listing address. Source
// platforms format the same building differently ("ул. Ленина, д. 10"
// vs "Ленина улица 10"), so matching happens on the parsed components,
// never on the raw string.
func NormalizeAddress(raw string) Address {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "ё", "е")
	for _, q := range []string{"«", "»", `"`, "'", "(", ")"} {
		s = strings.ReplaceAll(s, q, " ")
	}
	s = strings.ReplaceAll(s, ".", ". ")
	s = spaceRe.ReplaceAllString(s, " ")

	var a Address
	if m := gluedRe.FindStringSubmatch(s); m != nil {
		a.House, a.Section = m[1], m[2]
		s = strings.Replace(s, m[0], " ", 1)
	}
	if m := houseRe.FindStringSubmatch(s); m != nil {
		if a.House == "" {
			a.House = m[1]
		}
		if a.Section == "" && m[2] != "" {
			a.Section = m[2]
		}
		s = strings.Replace(s, m[0], " ", 1)
	}
	if m := sectionRe.FindStringSubmatch(s); m != nil {
		if a.Section == "" {
			a.Section = m[1]
		}
		s = strings.Replace(s, m[0], " ", 1)
	}
	if a.House == "" {
		a.House = bareHouseNumber(s)
	}

	a.Street = extractStreet(s)
	return a
}

// bareHouseNumber finds a house number written without the "д." marker.
// It scans each comma part right to left so that unit numbers ("кв. 5")
// never shadow the house.
func bareHouseNumber(s string) string {
	for _, part := range strings.Split(s, ",") {
		tokens := strings.Fields(part)
		for i := len(tokens) - 1; i >= 0; i-- {
			tok := strings.Trim(tokens[i], ".")
			if !houseTokenRe.MatchString(tok) {
				continue
			}
			if i > 0 && unitMarkers[strings.Trim(tokens[i-1], ".")] {
				continue
			}
			return tok
		}
	}
	return ""
}

// extractStreet picks the street name from what remains after house and
// section markers were cut out. A part carrying an explicit street-type
// marker wins; otherwise the first part that is not a locality is used.
func extractStreet(s string) string {
	var fallback string
	for _, part := range strings.Split(s, ",") {
		tokens := strings.Fields(part)
		var words []string
		marked, locality := false, false
		for _, tok := range tokens {
			tok = strings.Trim(tok, ".")
			if tok == "" {
				continue
			}
			switch {
			case streetMarkers[tok]:
				marked = true
			case localityMarkers[tok], majorCities[tok]:
				locality = true
			case unitMarkers[tok]:
			case isNameToken(tok):
				words = append(words, tok)
			}
		}
		name := strings.Join(words, " ")
		if marked && name != "" {
			return name
		}
		if !locality && fallback == "" {
			fallback = name
		}
	}
	return fallback
}

// isNameToken keeps alphabetic tokens and drops everything carrying
// digits (house leftovers, unit numbers).
func isNameToken(tok string) bool {
	hasLetter := false
	for _, r := range tok {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

const (
	scoreStreetExact    = 60
	scoreStreetContains = 50
	scoreHouse          = 30
	scoreSectionAgree   = 10
	scoreSectionPartial = 5

	// minContainsRunes guards substring street matching against
	// trivially short names.
	minContainsRunes = 4
)

// matchAddresses scores two normalized addresses on a 0..100 scale.
// A missing component or a conflicting house or section makes the pair
// incomparable and returns ok=false.
func matchAddresses(a, b Address) (float64, bool) {
	if a.Street == "" || b.Street == "" || a.House == "" || b.House == "" {
		return 0, false
	}
	if a.House != b.House {
		return 0, false
	}
	if a.Section != "" && b.Section != "" && a.Section != b.Section {
		// different корпус means a different building
		return 0, false
	}

	var score float64
	switch {
	case a.Street == b.Street:
		score += scoreStreetExact
	case streetContains(a.Street, b.Street):
		score += scoreStreetContains
	default:
		return 0, false
	}

	score += scoreHouse

	switch {
	case a.Section == b.Section:
		score += scoreSectionAgree
	default:
		score += scoreSectionPartial
	}
	return score, true
}

func streetContains(a, b string) bool {
	short, long := a, b
	if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
		short, long = long, short
	}
	if utf8.RuneCountInString(short) < minContainsRunes {
		return false
	}
	return strings.Contains(long, short)
}

package jsonschema

import (
	"errors"
	"fmt"
	"net/netip"
	gourl "net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// formatEvaluator implements 'format'. By default the keyword only
// annotates the format name; it asserts when the validator or the
// dialect activates format assertion.
type formatEvaluator struct {
	name     string
	assert   bool
	validate func(string) error
}

func newFormatEvaluator(ctx *ParsingContext, v JsonNode) (Evaluator, error) {
	if !v.IsString() {
		return nil, &ParseIDError{Location: v.JsonPointer(), Reason: "format must be a string"}
	}
	name := v.AsString()
	validate := formatValidators[name]
	if name == "regex" {
		engine := ctx.parser.regexpEngine
		validate = func(s string) error {
			_, err := engine(s)
			return err
		}
	}
	assert := ctx.AssertFormat()
	if !assert {
		for vocab, enabled := range ctx.Dialect().DefaultVocabularies() {
			if enabled && vocab == vocab2020FormatAssertion {
				assert = true
			}
		}
	}
	return &formatEvaluator{name: name, assert: assert, validate: validate}, nil
}

func (e *formatEvaluator) Evaluate(ctx *EvaluationContext, v JsonNode) *EvaluationResult {
	if !e.assert || e.validate == nil || !v.IsString() {
		return SuccessWith(e.name)
	}
	if err := e.validate(v.AsString()); err != nil {
		return Failure("%s is not a valid %s: %v", quote(v.AsString()), e.name, err)
	}
	return SuccessWith(e.name)
}

var formatValidators = map[string]func(string) error{
	"date":                  validFormatDate,
	"time":                  validFormatTime,
	"date-time":             validFormatDateTime,
	"duration":              validFormatDuration,
	"email":                 validFormatEmail,
	"idn-email":             validFormatIdnEmail,
	"hostname":              validFormatHostname,
	"idn-hostname":          validFormatIdnHostname,
	"ipv4":                  validFormatIPv4,
	"ipv6":                  validFormatIPv6,
	"uri":                   validFormatURI,
	"iri":                   validFormatURI,
	"uri-reference":         validFormatURIReference,
	"iri-reference":         validFormatURIReference,
	"uri-template":          validFormatURITemplate,
	"uuid":                  validFormatUUID,
	"json-pointer":          validFormatJSONPointer,
	"relative-json-pointer": validFormatRelativeJSONPointer,
}

// rfc 3339 full-date
func validFormatDate(s string) error {
	_, err := time.Parse("2006-01-02", s)
	return err
}

// rfc 3339 full-time, including leap second handling which the
// time package lacks
func validFormatTime(s string) error {
	if len(s) < 9 {
		return errors.New("too short")
	}
	if s[2] != ':' || s[5] != ':' {
		return errors.New("colons misplaced")
	}
	h, err1 := strconv.Atoi(s[0:2])
	m, err2 := strconv.Atoi(s[3:5])
	sec, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || sec < 0 {
		return errors.New("invalid hour/min/sec")
	}
	if h > 23 || m > 59 || sec > 60 {
		return errors.New("hour/min/sec out of range")
	}
	rest := s[8:]

	if frac, ok := strings.CutPrefix(rest, "."); ok {
		digits := 0
		for digits < len(frac) && frac[digits] >= '0' && frac[digits] <= '9' {
			digits++
		}
		if digits == 0 {
			return errors.New("empty second fraction")
		}
		rest = frac[digits:]
	}

	if rest != "z" && rest != "Z" {
		if len(rest) != 6 || rest[3] != ':' {
			return errors.New("invalid offset")
		}
		var sign int
		switch rest[0] {
		case '+':
			sign = -1
		case '-':
			sign = +1
		default:
			return errors.New("offset must begin with plus/minus")
		}
		zh, err1 := strconv.Atoi(rest[1:3])
		zm, err2 := strconv.Atoi(rest[4:6])
		if err1 != nil || err2 != nil || zh < 0 || zm < 0 || zh > 23 || zm > 59 {
			return errors.New("offset hour/min out of range")
		}
		hm := h*60 + m + sign*(zh*60+zm)
		if hm < 0 {
			hm += 24 * 60
		}
		hm %= 24 * 60
		h, m = hm/60, hm%60
	}

	// a leap second is only valid at the very end of the utc day
	if sec == 60 && !(h == 23 && m == 59) {
		return errors.New("invalid leap second")
	}
	return nil
}

// rfc 3339 date-time
func validFormatDateTime(s string) error {
	if len(s) < 20 {
		return errors.New("too short")
	}
	if s[10] != 'T' && s[10] != 't' {
		return errors.New("date and time must be separated by T")
	}
	if err := validFormatDate(s[:10]); err != nil {
		return fmt.Errorf("invalid date: %v", err)
	}
	if err := validFormatTime(s[11:]); err != nil {
		return fmt.Errorf("invalid time: %v", err)
	}
	return nil
}

// rfc 3339 appendix-a duration
func validFormatDuration(s string) error {
	s, ok := strings.CutPrefix(s, "P")
	if !ok {
		return errors.New("must start with P")
	}
	if s == "" {
		return errors.New("nothing after P")
	}
	if weeks, ok := strings.CutSuffix(s, "W"); ok {
		if weeks == "" || !allDigits(weeks) {
			return errors.New("invalid week")
		}
		return nil
	}
	unitGroups := []string{"YMD", "HMS"}
	for i, part := range strings.Split(s, "T") {
		if i >= len(unitGroups) {
			return errors.New("more than one T")
		}
		if i != 0 && part == "" {
			return errors.New("no time elements after T")
		}
		units := unitGroups[i]
		for part != "" {
			digits := 0
			for digits < len(part) && part[digits] >= '0' && part[digits] <= '9' {
				digits++
			}
			if digits == 0 {
				return errors.New("missing number")
			}
			part = part[digits:]
			if part == "" {
				return errors.New("missing unit")
			}
			j := strings.IndexByte(units, part[0])
			if j == -1 {
				if strings.IndexByte(unitGroups[i], part[0]) != -1 {
					return fmt.Errorf("unit %q out of order", part[0])
				}
				return fmt.Errorf("invalid unit %q", part[0])
			}
			units = units[j+1:]
			part = part[1:]
		}
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validFormatIPv4(s string) error {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return errors.New("expected four decimals")
	}
	for _, group := range groups {
		if group == "" || len(group) > 1 && group[0] == '0' {
			return errors.New("empty or zero-padded decimal")
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return err
		}
		if n > 255 {
			return errors.New("decimal must be between 0 and 255")
		}
	}
	return nil
}

func validFormatIPv6(s string) error {
	if !strings.Contains(s, ":") {
		return errors.New("missing colon")
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return err
	}
	if addr.Zone() != "" {
		return errors.New("zone id is not part of an ipv6 address")
	}
	return nil
}

func validFormatHostname(s string) error {
	s = strings.TrimSuffix(s, ".")
	if len(s) > 253 {
		return errors.New("more than 253 characters long")
	}
	for _, label := range strings.Split(s, ".") {
		if err := validHostLabel(label, false); err != nil {
			return err
		}
	}
	return nil
}

func validHostLabel(label string, unicodeOK bool) error {
	length := len(label)
	if unicodeOK {
		length = utf8.RuneCountInString(label)
	}
	if length < 1 || length > 63 {
		return errors.New("label must be 1 to 63 characters long")
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return errors.New("label starts or ends with hyphen")
	}
	for _, ch := range label {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '-':
		case unicodeOK && (unicode.IsLetter(ch) || unicode.IsDigit(ch) || unicode.IsMark(ch)):
		default:
			return fmt.Errorf("invalid character %q", ch)
		}
	}
	return nil
}

// internationalized hostname. Labels must be nfc-normalized; the
// ascii subset follows the plain hostname rules.
func validFormatIdnHostname(s string) error {
	if !norm.NFC.IsNormalString(s) {
		return errors.New("not in unicode normal form C")
	}
	s = strings.TrimSuffix(s, ".")
	for _, label := range strings.Split(s, ".") {
		if err := validHostLabel(label, true); err != nil {
			return err
		}
	}
	return nil
}

func validFormatEmail(s string) error { return validEmail(s, false) }

func validFormatIdnEmail(s string) error { return validEmail(s, true) }

func validEmail(s string, unicodeOK bool) error {
	if len(s) > 254 {
		return errors.New("more than 254 characters long")
	}
	at := strings.LastIndexByte(s, '@')
	if at == -1 {
		return errors.New("missing @")
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > 64 {
		return errors.New("local part more than 64 characters long")
	}

	if len(local) > 1 && strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`) {
		quoted := local[1 : len(local)-1]
		if strings.ContainsAny(quoted, `\"`) {
			return errors.New("backslash and quote are not allowed within quoted local part")
		}
	} else {
		if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
			return errors.New("local part starts or ends with dot")
		}
		if strings.Contains(local, "..") {
			return errors.New("consecutive dots in local part")
		}
		for _, ch := range local {
			switch {
			case ch >= 'a' && ch <= 'z':
			case ch >= 'A' && ch <= 'Z':
			case ch >= '0' && ch <= '9':
			case strings.ContainsRune(".!#$%&'*+-/=?^_`{|}~", ch):
			case unicodeOK && ch > unicode.MaxASCII:
			default:
				return fmt.Errorf("invalid character %q", ch)
			}
		}
	}

	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		addr := domain[1 : len(domain)-1]
		if rem, ok := strings.CutPrefix(addr, "IPv6:"); ok {
			if err := validFormatIPv6(rem); err != nil {
				return fmt.Errorf("invalid ipv6 address: %v", err)
			}
			return nil
		}
		if err := validFormatIPv4(addr); err != nil {
			return fmt.Errorf("invalid ipv4 address: %v", err)
		}
		return nil
	}
	if unicodeOK {
		if err := validFormatIdnHostname(domain); err != nil {
			return fmt.Errorf("invalid domain: %v", err)
		}
		return nil
	}
	if err := validFormatHostname(domain); err != nil {
		return fmt.Errorf("invalid domain: %v", err)
	}
	return nil
}

func parseFormatURL(s string) (*gourl.URL, error) {
	// net/url lets spaces through, which no uri may contain
	for _, ch := range s {
		if ch <= ' ' || ch == 0x7f {
			return nil, fmt.Errorf("invalid character %q", ch)
		}
	}
	u, err := gourl.Parse(s)
	if err != nil {
		return nil, err
	}
	// net/url does not validate the ipv6 host itself
	host := u.Hostname()
	if strings.Contains(host, ":") {
		if !strings.Contains(u.Host, "[") || !strings.Contains(u.Host, "]") {
			return nil, errors.New("ipv6 address not enclosed in brackets")
		}
		if err := validFormatIPv6(host); err != nil {
			return nil, fmt.Errorf("invalid ipv6 address: %v", err)
		}
	}
	return u, nil
}

func validFormatURI(s string) error {
	u, err := parseFormatURL(s)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return errors.New("relative url")
	}
	return nil
}

func validFormatURIReference(s string) error {
	if strings.Contains(s, `\`) {
		return errors.New(`contains \`)
	}
	_, err := parseFormatURL(s)
	return err
}

func validFormatURITemplate(s string) error {
	u, err := parseFormatURL(s)
	if err != nil {
		return err
	}
	for _, tok := range strings.Split(u.RawPath, "/") {
		tok, err := gourl.PathUnescape(tok)
		if err != nil {
			return fmt.Errorf("percent decode failed: %v", err)
		}
		open := false
		for _, ch := range tok {
			switch ch {
			case '{':
				if open {
					return errors.New("nested curly braces")
				}
				open = true
			case '}':
				if !open {
					return errors.New("unbalanced curly braces")
				}
				open = false
			}
		}
		if open {
			return errors.New("no matching closing brace")
		}
	}
	return nil
}

func validFormatUUID(s string) error {
	groupLens := []int{8, 4, 4, 4, 12}
	groups := strings.Split(s, "-")
	if len(groups) != len(groupLens) {
		return fmt.Errorf("must have %d hyphen-separated groups", len(groupLens))
	}
	for i, group := range groups {
		if len(group) != groupLens[i] {
			return fmt.Errorf("group %d must be %d characters long", i+1, groupLens[i])
		}
		for _, ch := range group {
			switch {
			case ch >= '0' && ch <= '9':
			case ch >= 'a' && ch <= 'f':
			case ch >= 'A' && ch <= 'F':
			default:
				return fmt.Errorf("non-hex character %q", ch)
			}
		}
	}
	return nil
}

func validFormatJSONPointer(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "/") {
		return errors.New("not starting with /")
	}
	for _, tok := range strings.Split(s[1:], "/") {
		if _, ok := decodePointerToken(tok); !ok {
			return errors.New("~ must be followed by 0 or 1")
		}
	}
	return nil
}

func validFormatRelativeJSONPointer(s string) error {
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return errors.New("must start with a non-negative integer")
	}
	if digits > 1 && s[0] == '0' {
		return errors.New("integer starts with zero")
	}
	s = s[digits:]
	if s == "#" {
		return nil
	}
	return validFormatJSONPointer(s)
}

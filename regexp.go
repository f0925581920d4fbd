package jsonschema

import (
	"fmt"
	"regexp"
)

// Regexp is a compiled regular expression as needed by 'pattern',
// 'patternProperties' and the 'regex' format.
type Regexp interface {
	fmt.Stringer
	MatchString(string) bool
}

// RegexpEngine compiles a regular expression. The default engine
// is the standard library's regexp package; swap it for an
// ecma-262 compliant engine with [Validator.UseRegexpEngine] when
// schemas rely on lookarounds or backreferences.
type RegexpEngine func(string) (Regexp, error)

type goRegexp struct {
	re *regexp.Regexp
}

func (r goRegexp) String() string            { return r.re.String() }
func (r goRegexp) MatchString(s string) bool { return r.re.MatchString(s) }

func goRegexpCompile(pattern string) (Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return goRegexp{re}, nil
}

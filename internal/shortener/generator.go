package shortener

import (
	"fmt"
	"strings"

	"github.com/jaevor/go-nanoid"
)

const (
	// DefaultChars are the characters codes are drawn from unless configured otherwise.
	DefaultChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// DefaultLength is the length of generated codes unless configured otherwise.
	DefaultLength = 6
)

// CodeGenerator produces one candidate code per call. Candidates are not
// guaranteed to be distinct; the Service resolves collisions.
type CodeGenerator func() string

// Alphabet describes the shape of a valid short code.
type Alphabet struct {
	Chars  string
	Length int
}

// pathUnsafeChars cannot appear in codes, which travel as a URL path segment
// and are parsed back out of full short URLs.
const pathUnsafeChars = "/?#%\\"

// minNanoidLength is the shortest id nanoid.CustomASCII generates without
// stalling; shorter codes are cut from an id of this length.
const minNanoidLength = 5

// DefaultAlphabet returns six uppercase Latin letters.
func DefaultAlphabet() Alphabet {
	return Alphabet{Chars: DefaultChars, Length: DefaultLength}
}

// Check reports whether the alphabet can be used for generation.
func (a Alphabet) Check() error {
	if a.Length < 2 || a.Length > 255 {
		return fmt.Errorf("code length must be between 2 and 255, got %d", a.Length)
	}

	if len(a.Chars) < 2 || len(a.Chars) > 255 {
		return fmt.Errorf("alphabet must have between 2 and 255 characters, got %d", len(a.Chars))
	}

	seen := make(map[byte]struct{}, len(a.Chars))

	for i := range len(a.Chars) {
		c := a.Chars[i]
		if c <= ' ' || c > '~' {
			return fmt.Errorf("alphabet character %q is not printable ascii", c)
		}

		if strings.IndexByte(pathUnsafeChars, c) >= 0 {
			return fmt.Errorf("alphabet character %q is not allowed in a url path segment", c)
		}

		if _, dup := seen[c]; dup {
			return fmt.Errorf("alphabet character %q is repeated", c)
		}

		seen[c] = struct{}{}
	}

	return nil
}

// Validate reports whether code has the alphabet's length and characters.
func (a Alphabet) Validate(code Code) error {
	if len(code) != a.Length {
		return fmt.Errorf("%w: want %d characters, got %d", ErrInvalidCode, a.Length, len(code))
	}

	for i := range len(code) {
		if !a.contains(code[i]) || strings.IndexByte(pathUnsafeChars, code[i]) >= 0 {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidCode, code[i])
		}
	}

	return nil
}

func (a Alphabet) contains(c byte) bool {
	for i := range len(a.Chars) {
		if a.Chars[i] == c {
			return true
		}
	}

	return false
}

// NewCodeGenerator returns a generator drawing each character uniformly from
// the alphabet using crypto/rand.
func NewCodeGenerator(a Alphabet) (CodeGenerator, error) {
	if err := a.Check(); err != nil {
		return nil, err
	}

	length := a.Length

	gen, err := nanoid.CustomASCII(a.Chars, max(length, minNanoidLength))
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	if length >= minNanoidLength {
		return CodeGenerator(gen), nil
	}

	return func() string {
		return gen()[:length]
	}, nil
}

package domain

import "strings"

// ModeSeparator joins a key mode prefix to a token.
const ModeSeparator = ";"

// Augment returns a copy of s with every token prefixed by the mode, so
// that mode information survives when corpora of both modes are merged.
func Augment(mode KeyMode, s Sentence) Sentence {
	aug := make(Sentence, 0, len(s))
	for _, tok := range s {
		aug = append(aug, string(mode)+ModeSeparator+tok)
	}
	return aug
}

// StripMode removes a MAJOR/MINOR prefix. Tokens without one are returned
// unchanged.
func StripMode(tok Token) Token {
	for _, m := range []KeyMode{ModeMajor, ModeMinor} {
		if rest, ok := strings.CutPrefix(tok, string(m)+ModeSeparator); ok {
			return rest
		}
	}
	return tok
}

// ModeOf decodes the mode prefix of an augmented token.
func ModeOf(tok Token) KeyMode {
	for _, m := range []KeyMode{ModeMajor, ModeMinor} {
		if strings.HasPrefix(tok, string(m)+ModeSeparator) {
			return m
		}
	}
	return ModeUnspecified
}

package domain

import (
	"fmt"
	"strings"
)

var (
	accidentals    = strings.NewReplacer("b", "", "#", "")
	chordQualities = strings.NewReplacer(":MAJ", "", ":MIN", "", ":AUG", "", ":DIM", "")
)

// DefaultDegreeColours maps each root scale degree to a colour name.
var DefaultDegreeColours = map[string]string{
	"I":   "blue",
	"II":  "yellow",
	"III": "green",
	"IV":  "purple",
	"V":   "red",
	"VI":  "black",
	"VII": "pink",
}

// DefaultModeMarkers maps each key mode to a marker shape name.
var DefaultModeMarkers = map[KeyMode]string{
	ModeMajor:       "circle",
	ModeMinor:       "box",
	ModeUnspecified: "triangle",
}

// RootDegree reduces a chord token to its root scale degree numeral:
// "MAJOR;bVII:MAJ" becomes "VII".
func RootDegree(tok Token) string {
	out := StripMode(tok)
	out = accidentals.Replace(out)
	return chordQualities.Replace(out)
}

// DegreeColour looks up the colour of the token's root degree.
func DegreeColour(tok Token, colours map[string]string) (string, error) {
	if colours == nil {
		colours = DefaultDegreeColours
	}
	root := RootDegree(tok)
	colour, ok := colours[root]
	if !ok {
		return "", fmt.Errorf("%w: %q (from %q)", ErrUnknownDegree, root, tok)
	}
	return colour, nil
}

package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Guest struct {
	ID         string
	Name       string
	AssignedTo string // chair id, empty when unseated
}

func (g *Guest) Assigned() bool { return g.AssignedTo != "" }

func (g *Guest) AssignTo(chairID string) { g.AssignedTo = chairID }

func (g *Guest) ClearAssignment() { g.AssignedTo = "" }

// Initials returns up to two upper-case initials of the guest's name.
func (g *Guest) Initials() string {
	var out []rune
	for _, p := range strings.Fields(g.Name) {
		r, _ := utf8.DecodeRuneInString(p)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

func (g *Guest) Clone() *Guest {
	cp := *g
	return &cp
}

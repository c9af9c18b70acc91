// Package snapshot defines the persisted form of a floor plan and the
// migrations that bring older documents up to the current shape.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentVersion is written by Encode and is the shape Decode produces.
const CurrentVersion = 4

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrInvalid            = errors.New("invalid snapshot")
)

// Snapshot is the JSON-compatible tree stored locally, remotely and in history.
type Snapshot struct {
	Version  int      `json:"version"`
	Tables   []Table  `json:"tables"`
	Guests   []Guest  `json:"guests"`
	Settings Settings `json:"settings"`
}

type Table struct {
	ID            string  `json:"id"`
	Number        int     `json:"number"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Rotation      float64 `json:"rotation"`
	Description   string  `json:"description"`
	IsHead        bool    `json:"isHead"`
	HeadSeatCount int     `json:"headSeatCount"`
	Chairs        []Chair `json:"chairs"`
	GroupID       string  `json:"groupId"`
}

type Chair struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Side    string  `json:"side"`
	GuestID string  `json:"guestId,omitempty"`
}

type Guest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AssignedTo string `json:"assignedTo,omitempty"`
}

type Settings struct {
	Mode       string `json:"mode"`
	TableCount int    `json:"tableCount"`
}

// Clone returns a deep copy sharing no slices with s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Tables != nil {
		cp.Tables = make([]Table, len(s.Tables))
		for i, t := range s.Tables {
			if t.Chairs != nil {
				t.Chairs = append([]Chair{}, t.Chairs...)
			}
			cp.Tables[i] = t
		}
	}
	if s.Guests != nil {
		cp.Guests = append([]Guest{}, s.Guests...)
	}
	return &cp
}

// Encode serialises s in the current format.
func Encode(s *Snapshot) ([]byte, error) {
	const op = "snapshot.Encode"

	if s == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalid)
	}
	cp := *s
	cp.Version = CurrentVersion
	if cp.Tables == nil {
		cp.Tables = []Table{}
	}
	if cp.Guests == nil {
		cp.Guests = []Guest{}
	}

	b, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return b, nil
}

// Decode parses any supported snapshot version and returns it migrated
// to CurrentVersion. A missing version field is read as the current one.
func Decode(data []byte) (*Snapshot, error) {
	const op = "snapshot.Decode"

	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%s:%w: %v", op, ErrInvalid, err)
	}

	version := CurrentVersion
	if w.Version.valid {
		version = int(w.Version.value)
	}
	if version > CurrentVersion {
		return nil, fmt.Errorf("%s:%w: %d", op, ErrUnsupportedVersion, version)
	}
	if version < 1 {
		version = 1
	}

	for v := version; v < CurrentVersion; v++ {
		migrations[v](&w)
	}

	s, err := w.normalize()
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return s, nil
}

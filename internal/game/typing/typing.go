// Package typing defines the elemental types and the type effectiveness chart.
package typing

import (
	"fmt"
	"strings"
)

// Type is one of the 18 elemental types. The zero value None marks an absent
// second type.
type Type string

const (
	None     Type = ""
	Fighting Type = "fighting"
	Flying   Type = "flying"
	Poison   Type = "poison"
	Ground   Type = "ground"
	Rock     Type = "rock"
	Bug      Type = "bug"
	Ghost    Type = "ghost"
	Steel    Type = "steel"
	Fire     Type = "fire"
	Water    Type = "water"
	Grass    Type = "grass"
	Electric Type = "electric"
	Psychic  Type = "psychic"
	Ice      Type = "ice"
	Dragon   Type = "dragon"
	Dark     Type = "dark"
	Normal   Type = "normal"
	Fairy    Type = "fairy"
)

// gameMasterPrefix is the prefix the game master uses for type enums.
const gameMasterPrefix = "POKEMON_TYPE_"

var all = []Type{
	Fighting, Flying, Poison, Ground, Rock, Bug, Ghost, Steel, Fire,
	Water, Grass, Electric, Psychic, Ice, Dragon, Dark, Normal, Fairy,
}

// All returns the 18 elemental types in canonical order.
//
// Postcondition: Returns a fresh slice of length 18; callers may modify it.
func All() []Type {
	out := make([]Type, len(all))
	copy(out, all)
	return out
}

// Valid reports whether t is one of the 18 elemental types.
func (t Type) Valid() bool {
	for _, k := range all {
		if k == t {
			return true
		}
	}
	return false
}

// String returns the lower-case type name, or "none" for None.
func (t Type) String() string {
	if t == None {
		return "none"
	}
	return string(t)
}

// Parse converts a lower-case type name or a POKEMON_TYPE_X game master enum to a Type.
// The empty string parses to None.
//
// Postcondition: Returns a valid Type or None with a nil error, or a non-nil error.
func Parse(s string) (Type, error) {
	if s == "" {
		return None, nil
	}
	name := strings.ToLower(strings.TrimPrefix(s, gameMasterPrefix))
	t := Type(name)
	if !t.Valid() {
		return None, fmt.Errorf("unknown type %q", s)
	}
	return t, nil
}

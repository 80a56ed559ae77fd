// Package apioform generates names of apioform types.
package apioform

import (
	"math/rand/v2"
	"strings"

	"gitlab.com/zephyrtronium/pick"
)

var prefixes = pick.New([]pick.Case[string]{
	{E: "cryo", W: 10},
	{E: "pyro", W: 10},
	{E: "chrono", W: 10},
	{E: "meta", W: 10},
	{E: "anarcho", W: 6},
	{E: "arachno", W: 6},
	{E: "aqua", W: 8},
	{E: "hydro", W: 8},
	{E: "radio", W: 8},
	{E: "xeno", W: 10},
	{E: "morpho", W: 6},
	{E: "mecha", W: 8},
	{E: "neuro", W: 8},
	{E: "pseudo", W: 8},
	{E: "photo", W: 8},
	{E: "electro", W: 8},
	{E: "thermo", W: 8},
	{E: "gyro", W: 6},
	{E: "cyber", W: 8},
	{E: "quantum", W: 6},
	{E: "astro", W: 6},
	{E: "cosmo", W: 6},
	{E: "gravito", W: 4},
	{E: "poly", W: 8},
	{E: "nano", W: 8},
	{E: "hyper", W: 8},
	{E: "ultra", W: 6},
	{E: "proto", W: 6},
	{E: "necro", W: 4},
	{E: "omni", W: 4},
	{E: "endo", W: 4},
	{E: "exo", W: 4},
	{E: "bee", W: 1},
})

var suffixes = pick.New([]pick.Case[string]{
	{E: "form", W: 40},
	{E: "tope", W: 8},
	{E: "morph", W: 8},
	{E: "cyte", W: 6},
	{E: "pod", W: 6},
	{E: "phage", W: 6},
	{E: "vore", W: 6},
	{E: "troph", W: 4},
	{E: "zoan", W: 4},
	{E: "naut", W: 4},
	{E: "plex", W: 4},
	{E: "oid", W: 4},
	{E: "lith", W: 2},
	{E: "mancer", W: 2},
})

// Generate returns a new apioform type name, e.g. "Cryoxenoapioform".
func Generate() string {
	var b strings.Builder
	// Chain prefixes, each one less likely than the last.
	for n := uint(1); ; n++ {
		b.WriteString(prefixes.Pick(rand.Uint32()))
		if n >= 8 || rand.Uint64N(1<<n) != 0 {
			break
		}
	}
	b.WriteString("apio")
	b.WriteString(suffixes.Pick(rand.Uint32()))
	s := b.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Package materials normalizes the materials of a loaded scene so that every
// mesh renders with a consistent physically based look. Mesh names are
// classified by keyword and an ordered rule table picks the tuning profile.
package materials

import "strings"

// Category is the outcome of classification.
type Category int

const (
	Default Category = iota
	Grass
	Wood
	Metal
	Glass
	Fabric
)

var categoryNames = [...]string{"default", "grass", "wood", "metal", "glass", "fabric"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Flags holds one keyword match per category. Several may be set at once.
type Flags struct {
	Grass  bool
	Wood   bool
	Metal  bool
	Glass  bool
	Fabric bool
}

// Keywords lists the lowercase substrings that set each flag.
var Keywords = map[Category][]string{
	Grass:  {"grass", "ground", "lawn", "terrain", "plane", "floor"},
	Wood:   {"wood", "bamboo", "log", "tree", "branch"},
	Metal:  {"metal", "steel", "iron", "aluminum", "chrome"},
	Glass:  {"glass", "window", "transparent"},
	Fabric: {"fabric", "cloth", "curtain", "textile"},
}

// Classify derives category flags from a mesh name.
func Classify(name string) Flags {
	lower := strings.ToLower(name)
	has := func(c Category) bool {
		for _, kw := range Keywords[c] {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}
	return Flags{
		Grass:  has(Grass),
		Wood:   has(Wood),
		Metal:  has(Metal),
		Glass:  has(Glass),
		Fabric: has(Fabric),
	}
}

// Profile is the property table applied to one category.
type Profile struct {
	Category           Category
	Roughness          float32
	Metalness          float32
	Clearcoat          float32
	ClearcoatRoughness float32
	Sheen              float32
	SheenRoughness     float32
	EnvMapIntensity    float32

	// Transmission > 0 marks see-through materials; they also get Opacity
	// and are forced transparent.
	Transmission float32
	Opacity      float32

	DoubleSided bool

	// ReplaceZeroRoughness treats an explicit roughness of 0 as unset.
	ReplaceZeroRoughness bool
	// ReplaceZeroMetalness treats an explicit metalness of 0 as unset.
	ReplaceZeroMetalness bool
	// LiftDarkColor brightens untextured near-black base colors.
	LiftDarkColor bool
}

// Rule pairs a predicate with the profile it selects.
type Rule struct {
	Match   func(Flags) bool
	Profile Profile
}

// DefaultProfile applies when no rule matches.
var DefaultProfile = Profile{
	Category:           Default,
	Roughness:          0.7,
	ClearcoatRoughness: 0.1,
	EnvMapIntensity:    1.0,
}

// DefaultRules is evaluated top to bottom; the first match wins.
var DefaultRules = []Rule{
	{
		Match: func(f Flags) bool { return f.Grass },
		Profile: Profile{
			Category:             Grass,
			Roughness:            0.95,
			ClearcoatRoughness:   0.1,
			EnvMapIntensity:      1.0,
			DoubleSided:          true,
			ReplaceZeroRoughness: true,
			LiftDarkColor:        true,
		},
	},
	{
		Match: func(f Flags) bool { return f.Wood },
		Profile: Profile{
			Category:             Wood,
			Roughness:            0.8,
			Clearcoat:            0.3,
			ClearcoatRoughness:   0.3,
			EnvMapIntensity:      1.0,
			ReplaceZeroRoughness: true,
		},
	},
	{
		Match: func(f Flags) bool { return f.Metal },
		Profile: Profile{
			Category:             Metal,
			Roughness:            0.2,
			Metalness:            0.9,
			Clearcoat:            0.5,
			ClearcoatRoughness:   0.1,
			EnvMapIntensity:      1.5,
			ReplaceZeroRoughness: true,
			ReplaceZeroMetalness: true,
		},
	},
	{
		Match: func(f Flags) bool { return f.Glass },
		Profile: Profile{
			Category:             Glass,
			Roughness:            0.05,
			Clearcoat:            1.0,
			ClearcoatRoughness:   0.0,
			EnvMapIntensity:      2.0,
			Transmission:         0.95,
			Opacity:              0.1,
			DoubleSided:          true,
			ReplaceZeroRoughness: true,
		},
	},
	{
		Match: func(f Flags) bool { return f.Fabric },
		Profile: Profile{
			Category:             Fabric,
			Roughness:            0.9,
			ClearcoatRoughness:   0.1,
			Sheen:                0.3,
			SheenRoughness:       0.8,
			EnvMapIntensity:      1.0,
			ReplaceZeroRoughness: true,
		},
	},
}

// Resolve returns the profile of the first rule matching flags.
func Resolve(rules []Rule, flags Flags) Profile {
	for _, r := range rules {
		if r.Match(flags) {
			return r.Profile
		}
	}
	return DefaultProfile
}

// ProfileFor classifies name against DefaultRules.
func ProfileFor(name string) Profile {
	return Resolve(DefaultRules, Classify(name))
}

// Package names generates collision-resistant, human-readable worktree
// names.
//
// Names are drawn from two fixed word lists as "adjective-noun"
// (e.g., swift-falcon, lunar-willow). When a plain name collides with an
// existing branch or directory, callers can fall back to the suffixed form
// "adjective-noun-a3f9", which appends four hex characters of fresh UUID
// entropy. Generation is pure — no persistence, no external state.
package names

import (
	"math/rand"

	"github.com/google/uuid"
)

var adjectives = []string{
	"swift", "happy", "cool", "brave", "bright", "calm", "clever", "eager",
	"fair", "fierce", "gentle", "grand", "keen", "kind", "lively", "mighty",
	"noble", "proud", "quick", "quiet", "rapid", "sharp", "sleek", "smart",
	"solid", "steady", "strong", "true", "vivid", "warm", "wild", "wise",
	"agile", "bold", "crisp", "deft", "epic", "fast", "golden", "humble",
	"jolly", "lunar", "merry", "neat", "olive", "prime", "royal", "silky",
	"tidy", "ultra", "vital", "witty", "young", "zesty", "azure", "coral",
}

var nouns = []string{
	"falcon", "tiger", "wolf", "eagle", "hawk", "bear", "lion", "fox",
	"deer", "owl", "swan", "crane", "raven", "dove", "heron", "finch",
	"panda", "koala", "otter", "whale", "shark", "dolphin", "seal",
	"penguin", "cedar", "maple", "oak", "pine", "birch", "willow", "elm",
	"ash", "river", "ocean", "mountain", "valley", "forest", "meadow",
	"canyon", "island", "comet", "nova", "star", "moon", "nebula",
	"aurora", "galaxy", "quasar", "flame", "storm", "thunder", "breeze",
	"frost", "mist", "cloud", "rain",
}

// Generate returns a random "adjective-noun" name.
func Generate() string {
	return adjectives[rand.Intn(len(adjectives))] + "-" + nouns[rand.Intn(len(nouns))]
}

// WithSuffix appends four hex characters of UUID entropy to a name,
// producing the collision-resistant three-token form.
func WithSuffix(name string) string {
	return name + "-" + uuid.NewString()[:4]
}

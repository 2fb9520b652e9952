package agent

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

// ActionSignature identifies one tool invocation by name and canonicalized
// arguments, so textually different but semantically identical calls coalesce.
type ActionSignature struct {
	Tool string
	Args string
}

// NewActionSignature canonicalizes the raw JSON arguments (round-trip through
// a map sorts the keys) before hashing.
func NewActionSignature(tool, rawArgs string) ActionSignature {
	canonical := strings.TrimSpace(rawArgs)
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(rawArgs), &parsed); err == nil {
		if b, err := json.Marshal(parsed); err == nil {
			canonical = string(b)
		}
	}
	return ActionSignature{Tool: tool, Args: canonical}
}

// Hash returns a deterministic short hash of the signature.
func (s ActionSignature) Hash() string {
	sum := sha256.Sum256([]byte(s.Tool + "\x00" + s.Args))
	return fmt.Sprintf("%x", sum[:8])
}

func (s ActionSignature) String() string {
	return fmt.Sprintf("%s(%s)", s.Tool, s.Args)
}

// ActionCache remembers completed tool invocations for the current run so a
// looping model gets the cached result instead of re-executing the tool.
type ActionCache struct {
	cache *lru.Cache
}

func NewActionCache(size int) (*ActionCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ActionCache{cache: c}, nil
}

// Add records a successful tool result.
func (c *ActionCache) Add(sig ActionSignature, result string) {
	c.cache.Add(sig.Hash(), result)
}

// Get returns the cached result for a signature, if present.
func (c *ActionCache) Get(sig ActionSignature) (string, bool) {
	v, ok := c.cache.Get(sig.Hash())
	if !ok {
		return "", false
	}
	result, ok := v.(string)
	return result, ok
}

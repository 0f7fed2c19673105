package reading

import (
	"encoding/json"
	"strconv"
)

// LocationIndex is a precomputed mapping from location tokens to the
// fraction of the book they fall at. It is built once per document (CFI
// lists come from the renderer, page lists are derived from the page count)
// and cached, since generation is expensive.
type LocationIndex struct {
	tokens  []string
	byToken map[string]int
}

// NewLocationIndex builds an index from the ordered token list.
func NewLocationIndex(tokens []string) *LocationIndex {
	idx := &LocationIndex{
		tokens:  tokens,
		byToken: make(map[string]int, len(tokens)),
	}
	for i, t := range tokens {
		if _, seen := idx.byToken[t]; !seen {
			idx.byToken[t] = i
		}
	}
	return idx
}

// Ready reports whether the index holds enough tokens to resolve positions.
func (x *LocationIndex) Ready() bool {
	return x != nil && len(x.tokens) > 1
}

// Len returns the number of indexed tokens.
func (x *LocationIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.tokens)
}

// PercentageOf resolves a token to its fraction through the book, in [0,1].
// Unknown tokens report false.
func (x *LocationIndex) PercentageOf(token string) (float64, bool) {
	if !x.Ready() {
		return 0, false
	}
	i, ok := x.byToken[token]
	if !ok {
		return 0, false
	}
	return float64(i) / float64(len(x.tokens)-1), true
}

// MarshalJSON serializes the ordered token list so the index survives a
// round trip through the disk cache.
func (x *LocationIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.tokens)
}

// UnmarshalJSON restores an index from its serialized token list.
func (x *LocationIndex) UnmarshalJSON(data []byte) error {
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return err
	}
	*x = *NewLocationIndex(tokens)
	return nil
}

// PageIndex builds an index of page tokens "1".."n" for paginated formats.
func PageIndex(pages int) *LocationIndex {
	if pages < 1 {
		return NewLocationIndex(nil)
	}
	tokens := make([]string, pages)
	for i := range tokens {
		tokens[i] = strconv.Itoa(i + 1)
	}
	return NewLocationIndex(tokens)
}

package chunker

import "strings"

const (
	defaultChunkSize    = 700
	defaultChunkOverlap = 100
)

// separators are tried coarsest first: paragraph breaks, then line breaks,
// then spaces, then arbitrary character boundaries as a last resort.
var separators = []string{"\n\n", "\n", " ", ""}

// Chunker splits text into overlapping segments bounded by a maximum size,
// preferring to cut at the coarsest separator that keeps segments under the
// limit. Sizes are measured in runes.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

func New(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 7
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split returns the ordered chunks of text. Output is deterministic and
// non-empty for non-empty input; a text that fits within the maximum size
// comes back as a single chunk. Separator-free runs longer than the maximum
// are tiled at fixed rune windows, so no chunk ever exceeds it.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return c.split(text, separators)
}

func (c *Chunker) split(text string, seps []string) []string {
	if runeLen(text) <= c.chunkSize {
		return []string{text}
	}

	sep, rest := pickSeparator(text, seps)
	if sep == "" {
		// No separator left: cut at fixed rune windows with overlap.
		return c.windowSplit(text)
	}

	parts := strings.Split(text, sep)

	// Any part still over the limit is re-split with finer separators
	// before merging.
	var pieces []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if runeLen(p) > c.chunkSize {
			pieces = append(pieces, c.split(p, rest)...)
		} else {
			pieces = append(pieces, p)
		}
	}
	return c.merge(pieces, sep)
}

// merge packs adjacent pieces into chunks up to chunkSize, carrying a tail
// of up to chunkOverlap runes into the next chunk.
func (c *Chunker) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.Join(current, sep)
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		// Keep a trailing window of pieces as overlap for the next chunk.
		var kept []string
		keptLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			pl := runeLen(current[i]) + sepLen
			if keptLen+pl > c.chunkOverlap {
				break
			}
			kept = append([]string{current[i]}, kept...)
			keptLen += pl
		}
		current = kept
		currentLen = keptLen
	}

	for _, p := range pieces {
		pl := runeLen(p)
		if currentLen+pl+sepLen > c.chunkSize && currentLen > 0 {
			flush()
			// Shrink the carried overlap until the incoming piece fits, so
			// the size bound holds even when a large piece follows a tail.
			for len(current) > 0 && currentLen+pl+sepLen > c.chunkSize {
				currentLen -= runeLen(current[0]) + sepLen
				current = current[1:]
			}
		}
		current = append(current, p)
		currentLen += pl + sepLen
	}
	if len(current) > 0 {
		chunk := strings.Join(current, sep)
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// windowSplit tiles separator-free text into fixed rune windows with overlap.
func (c *Chunker) windowSplit(text string) []string {
	runes := []rune(text)
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = c.chunkSize
	}
	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// pickSeparator returns the first separator present in text, plus the finer
// separators after it. The empty separator always matches.
func pickSeparator(text string, seps []string) (string, []string) {
	for i, s := range seps {
		if s == "" {
			return "", nil
		}
		if strings.Contains(text, s) {
			return s, seps[i+1:]
		}
	}
	return "", nil
}

func runeLen(s string) int {
	return len([]rune(s))
}

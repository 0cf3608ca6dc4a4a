package chunker

import "unicode"

// tokenSpans splits by token count. A token is a maximal run of non-space
// runes; each token's span absorbs the whitespace that follows it (and the
// first token absorbs leading whitespace), so token spans partition the text
// and chunk concatenation loses nothing. Size and overlap are token counts.
func tokenSpans(text string, size, overlap int) []span {
	var starts []int
	inToken := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inToken = false
			continue
		}
		if !inToken {
			starts = append(starts, i)
			inToken = true
		}
	}
	if len(starts) == 0 {
		// whitespace-only document
		return []span{{0, len(text)}}
	}

	n := len(starts)
	tokStart := func(i int) int {
		if i == 0 {
			return 0
		}
		return starts[i]
	}
	tokEnd := func(i int) int {
		if i == n-1 {
			return len(text)
		}
		return starts[i+1]
	}

	step := size - overlap // > 0: Config.Validate enforces size > overlap
	var chunks []span
	for i := 0; ; i += step {
		last := i + size - 1
		if last >= n {
			last = n - 1
		}
		chunks = append(chunks, span{tokStart(i), tokEnd(last)})
		if last == n-1 {
			break
		}
	}
	return chunks
}

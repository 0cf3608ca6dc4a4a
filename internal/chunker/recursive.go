package chunker

import "strings"

// recursiveSeparators are tried in priority order: section break, line
// break, sentence end, word boundary.
var recursiveSeparators = []string{"\n\n", "\n", ". ", " "}

// splitOversized recursively splits [start, end) into contiguous atoms of at
// most size bytes. Separators stay attached to the preceding atom so the
// atoms partition the range exactly. A run with no usable separator is
// hard-split at size boundaries.
func splitOversized(text string, start, end, size int) []span {
	if end-start <= size {
		return []span{{start, end}}
	}

	for _, sep := range recursiveSeparators {
		pieces := splitAt(text, start, end, sep)
		if len(pieces) < 2 {
			continue
		}
		atoms := make([]span, 0, len(pieces))
		for _, p := range pieces {
			atoms = append(atoms, splitOversized(text, p.start, p.end, size)...)
		}
		return atoms
	}

	atoms := make([]span, 0, (end-start+size-1)/size)
	for s := start; s < end; s += size {
		e := s + size
		if e > end {
			e = end
		}
		atoms = append(atoms, span{s, e})
	}
	return atoms
}

// splitAt splits [start, end) after every occurrence of sep. A trailing
// separator does not produce an empty piece.
func splitAt(text string, start, end int, sep string) []span {
	var pieces []span
	cur := start
	for cur < end {
		i := strings.Index(text[cur:end], sep)
		if i < 0 {
			pieces = append(pieces, span{cur, end})
			break
		}
		cut := cur + i + len(sep)
		pieces = append(pieces, span{cur, cut})
		cur = cut
	}
	return pieces
}

// mergeSpans greedily merges adjacent atoms up to the size budget and
// carries overlap bytes from the tail of the previous chunk into the next.
func mergeSpans(atoms []span, size, overlap int) []span {
	if len(atoms) == 0 {
		return nil
	}

	var chunks []span
	curStart := atoms[0].start
	i := 0
	for i < len(atoms) {
		j := i
		for j+1 < len(atoms) && atoms[j+1].end-curStart <= size {
			j++
		}
		end := atoms[j].end
		chunks = append(chunks, span{curStart, end})
		if j == len(atoms)-1 {
			break
		}
		next := end - overlap
		if next <= curStart {
			// chunk shorter than the overlap budget; still advance
			next = curStart + 1
		}
		i = j + 1
		if atoms[i].end-next > size {
			// carrying the full overlap would push the next chunk past
			// the size budget; shrink the carry instead. Atoms are at
			// most size bytes, so this never skips past the atom start.
			next = atoms[i].end - size
		}
		curStart = next
	}
	return chunks
}

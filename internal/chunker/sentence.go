package chunker

// sentenceSpans groups whole sentences until adding the next would exceed
// the size budget. The next group re-includes trailing sentences of the
// previous group as long as the re-included text fits the overlap budget.
// Operates on [base, limit) so the statute strategy can reuse it per
// article.
func sentenceSpans(text string, base, limit, size, overlap int) []span {
	sents := splitSentences(text, base, limit)
	if len(sents) == 0 {
		return nil
	}

	var groups []span
	prevFirst := -1
	fresh := 0
	for fresh < len(sents) {
		first := fresh
		for first > 0 && first-1 > prevFirst && sents[fresh].start-sents[first-1].start <= overlap {
			first--
		}
		last := fresh
		for last+1 < len(sents) && sents[last+1].end-sents[first].start <= size {
			last++
		}
		groups = append(groups, span{sents[first].start, sents[last].end})
		prevFirst = first
		fresh = last + 1
	}
	return groups
}

// splitSentences partitions [base, limit) into sentence spans. A sentence
// ends after a run of terminators plus the whitespace that follows, so the
// spans are contiguous and cover the range.
func splitSentences(text string, base, limit int) []span {
	var sents []span
	start := base
	i := base
	for i < limit {
		if !isTerminator(text[i]) {
			i++
			continue
		}
		for i < limit && isTerminator(text[i]) {
			i++
		}
		for i < limit && isSpaceByte(text[i]) {
			i++
		}
		sents = append(sents, span{start, i})
		start = i
	}
	if start < limit {
		sents = append(sents, span{start, limit})
	}
	return sents
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

package chunker

import (
	"regexp"
	"sort"
	"strings"

	"huurrag/pkg/types"
)

var (
	// Matches statute article headings: "Artikel 244", "Artikel 244a",
	// "Artikel 7:244".
	articleRe = regexp.MustCompile(`(?mi)^[ \t]*Artikel[ \t]+((?:\d+:)?\d+[a-z]?)\b`)
	// Matches markdown headings of any level.
	headingRe = regexp.MustCompile(`(?m)^#{1,6}[ \t]`)
	// Extracts the civil-code book number from a source path like
	// "laws/Boek7/titel4.txt".
	bookRe = regexp.MustCompile(`(?i)boek(\d+)`)
)

// section is a statutory article or markdown section of the document.
type section struct {
	span
	article string
}

// statuteSpans splits preferentially at heading and article-number
// boundaries so no chunk straddles two articles. An article longer than the
// size budget falls back to recursive splitting within the article. Chunks
// from a labelled article carry "article" (and "book") metadata.
func statuteSpans(doc types.Document, cfg Config) ([]span, []map[string]string) {
	text := doc.RawText
	book := ""
	if m := bookRe.FindStringSubmatch(doc.SourcePath); m != nil {
		book = m[1]
	}

	var spans []span
	var labels []map[string]string
	for _, sec := range statuteSections(text) {
		var meta map[string]string
		if sec.article != "" {
			article := sec.article
			if book != "" && !strings.Contains(article, ":") {
				article = book + ":" + article
			}
			meta = map[string]string{"article": article}
			if book != "" {
				meta["book"] = book
			}
		}
		var pieces []span
		if sec.end-sec.start <= cfg.Size {
			pieces = []span{sec.span}
		} else {
			pieces = mergeSpans(splitOversized(text, sec.start, sec.end, cfg.Size), cfg.Size, cfg.Overlap)
		}
		for _, p := range pieces {
			spans = append(spans, p)
			labels = append(labels, meta)
		}
	}
	return spans, labels
}

// statuteSections partitions the text at article and markdown-heading
// boundaries. Text before the first boundary becomes an unlabelled section.
func statuteSections(text string) []section {
	type boundary struct {
		pos     int
		article string
	}
	var bs []boundary
	for _, m := range articleRe.FindAllStringSubmatchIndex(text, -1) {
		bs = append(bs, boundary{m[0], text[m[2]:m[3]]})
	}
	for _, m := range headingRe.FindAllStringIndex(text, -1) {
		bs = append(bs, boundary{m[0], ""})
	}
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].pos != bs[j].pos {
			return bs[i].pos < bs[j].pos
		}
		return bs[i].article > bs[j].article
	})

	var secs []section
	if len(bs) == 0 || bs[0].pos > 0 {
		end := len(text)
		if len(bs) > 0 {
			end = bs[0].pos
		}
		secs = append(secs, section{span{0, end}, ""})
	}
	for i, b := range bs {
		if i > 0 && b.pos == bs[i-1].pos {
			continue
		}
		end := len(text)
		for j := i + 1; j < len(bs); j++ {
			if bs[j].pos > b.pos {
				end = bs[j].pos
				break
			}
		}
		if b.pos >= end {
			continue
		}
		secs = append(secs, section{span{b.pos, end}, b.article})
	}
	return secs
}

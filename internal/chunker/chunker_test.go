package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huurrag/pkg/types"
)

func testDoc(id, text string) types.Document {
	return types.Document{ID: id, SourcePath: id, RawText: text, DocType: types.DocText}
}

// reconstruct rebuilds the original document from chunk spans, dropping the
// overlap each chunk shares with its predecessor. A gap between consecutive
// chunks makes the result differ from the source text.
func reconstruct(t *testing.T, doc types.Document, chunks []types.Chunk) string {
	t.Helper()
	var b strings.Builder
	prevEnd := 0
	for _, c := range chunks {
		require.LessOrEqual(t, c.StartOffset, prevEnd, "gap before chunk %d", c.SequenceIndex)
		if c.EndOffset <= prevEnd {
			continue
		}
		skip := prevEnd - c.StartOffset
		b.WriteString(c.Text[skip:])
		prevEnd = c.EndOffset
	}
	return b.String()
}

func TestChunk_InvalidConfig(t *testing.T) {
	doc := testDoc("d", "some text")
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero size", Config{Strategy: StrategyRecursive, Size: 0, Overlap: 0}},
		{"negative overlap", Config{Strategy: StrategyRecursive, Size: 100, Overlap: -1}},
		{"overlap equals size", Config{Strategy: StrategyTokens, Size: 50, Overlap: 50}},
		{"overlap exceeds size", Config{Strategy: StrategySentence, Size: 50, Overlap: 60}},
		{"unknown strategy", Config{Strategy: "semantic", Size: 100, Overlap: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Chunk(doc, tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidConfig))
		})
	}
}

func TestChunk_EmptyDocument(t *testing.T) {
	for _, s := range AllStrategies {
		chunks, err := Chunk(testDoc("d", ""), Config{Strategy: s, Size: 100, Overlap: 10})
		require.NoError(t, err, "strategy %s", s)
		assert.Empty(t, chunks, "strategy %s", s)
	}
}

func TestChunk_ShorterThanSize(t *testing.T) {
	text := "Een korte alinea over huurrecht."
	for _, s := range AllStrategies {
		chunks, err := Chunk(testDoc("d", text), Config{Strategy: s, Size: 500, Overlap: 50})
		require.NoError(t, err, "strategy %s", s)
		require.Len(t, chunks, 1, "strategy %s", s)
		assert.Equal(t, 0, chunks[0].SequenceIndex)
		assert.Equal(t, 0, chunks[0].StartOffset)
		assert.Equal(t, len(text), chunks[0].EndOffset)
		assert.Equal(t, text, chunks[0].Text)
		assert.Equal(t, "d:0", chunks[0].ID)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := buildCorpusText(40)
	doc := testDoc("laws/Boek7/titel4.txt", text)
	for _, s := range AllStrategies {
		cfg := Config{Strategy: s, Size: 200, Overlap: 30}
		first, err := Chunk(doc, cfg)
		require.NoError(t, err)
		second, err := Chunk(doc, cfg)
		require.NoError(t, err)
		assert.Equal(t, first, second, "strategy %s", s)
	}
}

func TestChunk_CoverageAndInvariants(t *testing.T) {
	text := buildCorpusText(60)
	doc := testDoc("laws/Boek7/titel4.txt", text)
	for _, s := range AllStrategies {
		t.Run(string(s), func(t *testing.T) {
			chunks, err := Chunk(doc, Config{Strategy: s, Size: 180, Overlap: 25})
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			prevSeq := -1
			for _, c := range chunks {
				require.NoError(t, c.Validate())
				assert.Less(t, c.StartOffset, c.EndOffset)
				assert.LessOrEqual(t, c.EndOffset, len(text))
				assert.Greater(t, c.SequenceIndex, prevSeq)
				prevSeq = c.SequenceIndex
				assert.Equal(t, text[c.StartOffset:c.EndOffset], c.Text)
			}
			assert.Equal(t, 0, chunks[0].StartOffset)
			assert.Equal(t, len(text), chunks[len(chunks)-1].EndOffset)
			assert.Equal(t, text, reconstruct(t, doc, chunks))
		})
	}
}

func TestChunk_RecursiveOverlapBounded(t *testing.T) {
	text := buildCorpusText(50)
	chunks, err := Chunk(testDoc("d", text), Config{Strategy: StrategyRecursive, Size: 150, Overlap: 40})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		shared := chunks[i-1].EndOffset - chunks[i].StartOffset
		assert.GreaterOrEqual(t, shared, 0, "chunk %d", i)
		assert.LessOrEqual(t, shared, 40, "chunk %d", i)
	}
}

func TestChunk_RecursiveChunkLengthBounded(t *testing.T) {
	// An unbroken run hard-splits into atoms of exactly the size budget;
	// carrying the full overlap on top of such an atom must not produce a
	// chunk longer than the budget.
	text := strings.Repeat("a", 5000)
	chunks, err := Chunk(testDoc("d", text), Config{Strategy: StrategyRecursive, Size: 1000, Overlap: 200})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 1000, "chunk %d", c.SequenceIndex)
	}
	assert.Equal(t, text, reconstruct(t, testDoc("d", text), chunks))

	// Same bound on a natural-language corpus.
	text = buildCorpusText(80)
	chunks, err = Chunk(testDoc("d", text), Config{Strategy: StrategyRecursive, Size: 150, Overlap: 40})
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 150, "chunk %d", c.SequenceIndex)
	}
}

func TestChunk_RecursivePrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("aap noot mies ", 8)
	para2 := strings.Repeat("wim zus jet ", 8)
	text := para1 + "\n\n" + para2
	chunks, err := Chunk(testDoc("d", text), Config{Strategy: StrategyRecursive, Size: len(para1) + 2, Overlap: 0})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, para1+"\n\n", chunks[0].Text)
	assert.Equal(t, para2, chunks[1].Text)
}

func TestChunk_TokensCountsAndOverlap(t *testing.T) {
	// 10 words, 4 per chunk, 1 token overlap -> windows 0-3, 3-6, 6-9
	words := make([]string, 10)
	for i := range words {
		words[i] = fmt.Sprintf("woord%d", i)
	}
	text := strings.Join(words, " ")
	chunks, err := Chunk(testDoc("d", text), Config{Strategy: StrategyTokens, Size: 4, Overlap: 1})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "woord0"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(chunks[1].Text), "woord3"))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(chunks[2].Text), "woord6"))
	assert.True(t, strings.HasSuffix(chunks[2].Text, "woord9"))
}

func TestChunk_SentenceGrouping(t *testing.T) {
	text := "Eerste zin hier. Tweede zin volgt. Derde zin sluit af. Vierde zin nog."
	chunks, err := Chunk(testDoc("d", text), Config{Strategy: StrategySentence, Size: 40, Overlap: 0})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		// groups never split a sentence: each chunk ends at a sentence end
		trimmed := strings.TrimRight(c.Text, " \n")
		if c.EndOffset < len(text) {
			assert.Equal(t, byte('.'), trimmed[len(trimmed)-1], "chunk %d: %q", c.SequenceIndex, c.Text)
		}
	}
	assert.Equal(t, text, reconstruct(t, testDoc("d", text), chunks))
}

func TestChunk_SentenceOverlapReincludesTail(t *testing.T) {
	text := "Zin een is kort. Zin twee is kort. Zin drie is kort. Zin vier is kort."
	chunks, err := Chunk(testDoc("d", text), Config{Strategy: StrategySentence, Size: 40, Overlap: 20})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		shared := chunks[i-1].EndOffset - chunks[i].StartOffset
		assert.GreaterOrEqual(t, shared, 0)
		assert.LessOrEqual(t, shared, 20)
	}
}

func TestChunk_StatuteSingleArticle(t *testing.T) {
	text := "Artikel 7:244 regelt de huurprijs. De huurder en verhuurder komen de prijs overeen bij aanvang van de huur."
	chunks, err := Chunk(testDoc("laws/Boek7/titel4.txt", text), Config{Strategy: StrategyStatute, Size: 500, Overlap: 50})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].SequenceIndex)
	assert.Equal(t, "7:244", chunks[0].Metadata["article"])
}

func TestChunk_StatuteNoStraddling(t *testing.T) {
	art244 := "Artikel 244\nDe huurprijs wordt bij aanvang overeengekomen.\n"
	art245 := "Artikel 245\nDe verhuurder mag de huurprijs jaarlijks aanpassen.\n"
	art246 := "Artikel 246\nDe huurcommissie toetst de redelijkheid van de prijs.\n"
	text := art244 + art245 + art246

	chunks, err := Chunk(testDoc("laws/Boek7/titel4.txt", text), Config{Strategy: StrategyStatute, Size: 100, Overlap: 10})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "7:244", chunks[0].Metadata["article"])
	assert.Equal(t, "7:245", chunks[1].Metadata["article"])
	assert.Equal(t, "7:246", chunks[2].Metadata["article"])
	assert.Equal(t, "7", chunks[0].Metadata["book"])
	for _, c := range chunks {
		assert.Equal(t, 1, strings.Count(c.Text, "Artikel"), "chunk %d straddles articles", c.SequenceIndex)
	}
}

func TestChunk_StatuteOversizedArticleFallsBack(t *testing.T) {
	body := strings.Repeat("De huurder geniet bescherming tegen opzegging. ", 20)
	text := "Artikel 271\n" + body
	chunks, err := Chunk(testDoc("laws/Boek7/afd5.txt", text), Config{Strategy: StrategyStatute, Size: 200, Overlap: 20})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.Equal(t, "7:271", c.Metadata["article"], "chunk %d", c.SequenceIndex)
	}
	assert.Equal(t, text, reconstruct(t, testDoc("d", text), chunks))
}

func TestChunk_StatuteMarkdownHeadings(t *testing.T) {
	text := "# Huurprijs\nDe huurprijs is vrij overeen te komen.\n# Opzegging\nOpzegging vereist een geldige grond.\n"
	chunks, err := Chunk(testDoc("portal/huren.md", text), Config{Strategy: StrategyStatute, Size: 80, Overlap: 0})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "# Huurprijs"))
	assert.True(t, strings.HasPrefix(chunks[1].Text, "# Opzegging"))
}

func TestChunk_MetadataPropagated(t *testing.T) {
	doc := types.Document{
		ID:       "d",
		RawText:  "Een stuk tekst over huur.",
		DocType:  types.DocText,
		Metadata: map[string]string{"category": "laws", "source_rel": "laws/d.txt"},
	}
	chunks, err := Chunk(doc, Config{Strategy: StrategyRecursive, Size: 100, Overlap: 0})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "laws", chunks[0].Metadata["category"])
	assert.Equal(t, "laws/d.txt", chunks[0].Metadata["source_rel"])
}

// buildCorpusText produces a multi-paragraph Dutch-ish text with sentence
// punctuation so every strategy has boundaries to work with.
func buildCorpusText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "Zin nummer %d gaat over de huurovereenkomst en de rechten van de huurder. ", i)
		if i%5 == 4 {
			b.WriteString("\n\n")
		}
	}
	return strings.TrimRight(b.String(), " \n")
}

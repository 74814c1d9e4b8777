package words

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	rows      []WordRow
	topics    []Topic
	topicMap  map[string][]string
	wordsErr  error
	topicErr  error
	topicsErr error
}

func (f *fakeCatalog) EnabledWords(_ context.Context, lengths []int) ([]WordRow, error) {
	if f.wordsErr != nil {
		return nil, f.wordsErr
	}
	var out []WordRow
	for _, r := range f.rows {
		for _, l := range lengths {
			if r.Length == l {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) TopicWords(_ context.Context, id string) ([]string, error) {
	if f.topicErr != nil {
		return nil, f.topicErr
	}
	return f.topicMap[id], nil
}

func (f *fakeCatalog) Topics(context.Context) ([]Topic, error) {
	if f.topicsErr != nil {
		return nil, f.topicsErr
	}
	return f.topics, nil
}

func mustFallback(t *testing.T) *Fallback {
	t.Helper()
	fb, err := LoadFallback("")
	require.NoError(t, err)
	return fb
}

func TestLoadFallbackEmbedded(t *testing.T) {
	fb := mustFallback(t)
	for _, l := range SupportedLengths {
		ps := fb.Puzzles(l)
		assert.NotEmpty(t, ps, "length %d", l)
		for _, p := range ps {
			assert.Len(t, p.Word, l)
			assert.NotEmpty(t, p.Hints)
		}
	}
	apple := fb.Puzzles(5)[0]
	assert.Equal(t, "APPLE", apple.Word)
	assert.Equal(t, "A crunchy fruit that can be red or green.", apple.Hints[0])
	assert.Contains(t, fb.Words(), "BOOK")
}

func TestLoadFallbackFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	body := "# test list\nsun | hot\nmoon\nfrog\nhello | greeting\nbad1\ntoolong\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	fb, err := LoadFallback(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SUN", "MOON", "FROG", "HELLO"}, fb.Words())
	assert.Equal(t, []string{"hot"}, fb.Puzzles(3)[0].Hints)
	assert.Len(t, fb.Puzzles(4)[0].Hints, 2)

	require.NoError(t, os.WriteFile(path, []byte("sun\n"), 0o644))
	_, err = LoadFallback(path)
	assert.Error(t, err)
}

func TestReadLinesSkipsBlanksAndComments(t *testing.T) {
	lines, err := readLines(strings.NewReader("  # header\n\nCAT | pet \n\t\n#DOG\nBOOK\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CAT | pet", "BOOK"}, lines)
}

func TestLoadFallbackMissingFile(t *testing.T) {
	_, err := LoadFallback(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWordsFallsBackOnError(t *testing.T) {
	checker := NewChecker(nil, nil)
	r := NewResolver(&fakeCatalog{wordsErr: errors.New("connection refused")}, mustFallback(t), checker)

	for _, l := range SupportedLengths {
		pool := r.LoadWords(context.Background(), l, "")
		assert.Equal(t, SourceFallback, pool.Source)
		assert.NotZero(t, pool.Size())
		assert.Contains(t, pool.Detail, "connection refused")
		assert.Contains(t, pool.Detail, "(using fallback list)")
		for _, p := range pool.Puzzles {
			assert.True(t, checker.Known().Has(l, p.Word))
		}
	}
}

func TestLoadWordsWithoutCatalog(t *testing.T) {
	r := NewResolver(nil, mustFallback(t), NewChecker(nil, nil))
	pool := r.LoadWords(context.Background(), 4, "animals")
	assert.Equal(t, SourceFallback, pool.Source)
	assert.NotZero(t, pool.Size())
}

func TestLoadWordsEmptyResult(t *testing.T) {
	r := NewResolver(&fakeCatalog{}, mustFallback(t), NewChecker(nil, nil))

	pool := r.LoadWords(context.Background(), 5, "")
	assert.Equal(t, SourceFallback, pool.Source)
	assert.Equal(t, "No words returned from the catalog.", pool.Detail)

	pool = r.LoadWords(context.Background(), 5, "space")
	assert.Equal(t, SourceFallback, pool.Source)
	assert.Equal(t, "No words available for this pack right now.", pool.Detail)
}

func TestLoadWordsRemote(t *testing.T) {
	cat := &fakeCatalog{
		rows: []WordRow{
			{Text: "frog", Length: 4}, {Text: "bear", Length: 4}, {Text: "Frog", Length: 4},
			{Text: "b4r", Length: 4}, {Text: "lion", Length: 5}, {Text: "owl", Length: 3},
		},
		topicMap: map[string][]string{"pond": {"FROG", "duck"}},
	}
	checker := NewChecker(nil, nil)
	r := NewResolver(cat, mustFallback(t), checker)

	pool := r.LoadWords(context.Background(), 4, "")
	require.Equal(t, SourceRemote, pool.Source)
	var got []string
	for _, p := range pool.Puzzles {
		got = append(got, p.Word)
		assert.Len(t, p.Hints, 2)
	}
	assert.Equal(t, []string{"FROG", "BEAR"}, got)
	assert.True(t, checker.Known().Has(4, "BEAR"))
	assert.Empty(t, pool.Detail)

	pool = r.LoadWords(context.Background(), 4, "pond")
	require.Equal(t, SourceRemote, pool.Source)
	require.Equal(t, 1, pool.Size())
	assert.Equal(t, "FROG", pool.Puzzles[0].Word)
	assert.Equal(t, "pond", pool.Topic.ID)
}

func TestLoadWordsTopicQueryFails(t *testing.T) {
	cat := &fakeCatalog{rows: []WordRow{{Text: "frog", Length: 4}}, topicErr: errors.New("boom")}
	r := NewResolver(cat, mustFallback(t), NewChecker(nil, nil))

	pool := r.LoadWords(context.Background(), 4, "pond")
	assert.Equal(t, SourceFallback, pool.Source)
	assert.Contains(t, pool.Detail, "boom")
}

func TestResolveTopic(t *testing.T) {
	cat := &fakeCatalog{topics: []Topic{{ID: "animals", Name: "Animals"}, {ID: "", Name: "broken"}}}
	r := NewResolver(cat, mustFallback(t), nil)
	ctx := context.Background()

	assert.Equal(t, Topic{ID: "animals", Name: "Animals"}, r.ResolveTopic(ctx, ""))
	assert.Equal(t, Topic{ID: "animals", Name: "Animals"}, r.ResolveTopic(ctx, "animals"))
	assert.Equal(t, Topic{ID: "space", Name: "space"}, r.ResolveTopic(ctx, "space"))

	cat.topicsErr = errors.New("down")
	assert.Equal(t, RandomTopic, r.ResolveTopic(ctx, ""))

	cat.topicsErr = nil
	cat.topics = nil
	assert.Equal(t, RandomTopic, r.ResolveTopic(ctx, ""))
}

func TestLoadSurpriseFailureIsUnfiltered(t *testing.T) {
	cat := &fakeCatalog{
		rows:      []WordRow{{Text: "frog", Length: 4}},
		topicsErr: errors.New("down"),
	}
	r := NewResolver(cat, mustFallback(t), nil)

	pool := r.Load(context.Background(), 4, "")
	assert.Equal(t, SourceRemote, pool.Source)
	assert.Equal(t, "Random", pool.Topic.Name)
	assert.Equal(t, 1, pool.Size())
}

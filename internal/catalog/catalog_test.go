package catalog

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glitchhunt/glitchhunt-backend/internal/engine"
)

func TestSelectFiles_AlwaysAtLeastTwo(t *testing.T) {
	cases := [][]string{
		{"csharp"},
		{"c"},
		{"python"},
		{"csharp", "python"},
		{"klingon"}, // unknown language falls back
		nil,
	}
	for seed := int64(0); seed < 20; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		for _, langs := range cases {
			files := SelectFiles(langs, "", rnd)
			assert.GreaterOrEqual(t, len(files), engine.MinFiles,
				"languages=%v seed=%d", langs, seed)
		}
	}
}

func TestSelectFiles_HonorsMapID(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	files := SelectFiles([]string{"csharp"}, "calculator", rnd)

	require.NotEmpty(t, files)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "MathOps.cs")
	assert.Contains(t, names, "Program.cs")
}

func TestSelectFiles_UnknownMapFallsBackToFirst(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	files := SelectFiles([]string{"python"}, "no-such-map", rnd)
	require.GreaterOrEqual(t, len(files), engine.MinFiles)
	for _, f := range files {
		assert.Equal(t, "python", f.Language)
	}
}

func TestSelectFiles_PaddingUsesSyntheticNames(t *testing.T) {
	// A single-file pool must still yield two files via duplication.
	files := padCase(t)
	require.GreaterOrEqual(t, len(files), engine.MinFiles)

	padded := 0
	seen := make(map[string]bool)
	for _, f := range files {
		assert.False(t, seen[f.Name], "padded names must stay unique")
		seen[f.Name] = true
		if strings.HasPrefix(f.Name, "copy-") {
			padded++
		}
	}
	assert.Greater(t, padded, 0)
}

func padCase(t *testing.T) []engine.FileContent {
	t.Helper()
	// Exercise the padding branch directly through the exported surface:
	// fallback templates with a nearly empty pool are the realistic path,
	// so synthesize one via a map id that resolves to a one-file template.
	one := []engine.FileContent{{Name: "only.py", Content: "x = 1\n", Language: "python"}}
	files := padFiles(one)
	return files
}

func TestMaps_KnownLanguagesHaveMaps(t *testing.T) {
	for _, lang := range []string{"csharp", "c", "python"} {
		maps := Maps(lang)
		require.NotEmpty(t, maps, lang)
		for _, m := range maps {
			assert.NotEmpty(t, m.ID)
			require.NotEmpty(t, m.Files)
			for _, f := range m.Files {
				assert.Equal(t, lang, f.Language)
				assert.NotEmpty(t, f.Content)
			}
		}
	}
}

func TestMapFiles_ReturnsCopies(t *testing.T) {
	a := MapFiles("python", "calculator")
	b := MapFiles("python", "calculator")
	require.NotEmpty(t, a)
	a[0].Content = "mutated"
	assert.NotEqual(t, a[0].Content, b[0].Content, "callers must not share backing arrays")
}

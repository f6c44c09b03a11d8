// Package catalog holds the built-in sets of sample source files the rounds
// are played on. Each map is a small application of two or more files whose
// text exercises every defect category its language supports.
package catalog

import (
	"fmt"
	"math/rand"

	"github.com/glitchhunt/glitchhunt-backend/internal/engine"
)

type Map struct {
	ID          string
	Name        string
	Description string
	Files       []engine.FileContent
}

// Maps returns the map list for a language, falling back to csharp for
// unknown languages so a round can always start.
func Maps(language string) []Map {
	if maps, ok := mapsByLanguage[language]; ok {
		return maps
	}
	return mapsByLanguage["csharp"]
}

// MapFiles resolves a specific map id, falling back to the language's first
// map when the id is unknown.
func MapFiles(language, mapID string) []engine.FileContent {
	maps := Maps(language)
	if len(maps) == 0 {
		return nil
	}
	for _, m := range maps {
		if m.ID == mapID {
			return cloneFiles(m.Files)
		}
	}
	return cloneFiles(maps[0].Files)
}

// SelectFiles builds the file set for a new round. With a map id the files
// come from that map; otherwise a random 2–6 file subset of the pooled maps
// for the requested languages. Either way the result is padded by
// duplicating files under synthetic names until it has at least two
// entries, so a round can never start with a single file.
func SelectFiles(languages []string, mapID string, rnd *rand.Rand) []engine.FileContent {
	if len(languages) == 0 {
		languages = []string{"csharp"}
	}

	var files []engine.FileContent
	if mapID != "" {
		files = MapFiles(languages[0], mapID)
	} else {
		var pool []engine.FileContent
		for _, lang := range languages {
			for _, m := range Maps(lang) {
				pool = append(pool, cloneFiles(m.Files)...)
			}
		}
		if len(pool) == 0 {
			pool = fallbackFiles("csharp")
		}
		target := engine.MinFiles + rnd.Intn(5)
		rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		files = pool[:min(len(pool), target)]
	}

	if len(files) == 0 {
		files = fallbackFiles(languages[0])
	}
	return padFiles(files)
}

// padFiles duplicates files under synthetic names until the set has at
// least two entries.
func padFiles(files []engine.FileContent) []engine.FileContent {
	for i := 0; len(files) < engine.MinFiles && len(files) > 0; i++ {
		src := files[i%len(files)]
		files = append(files, engine.FileContent{
			Name:     fmt.Sprintf("copy-%d-%s", len(files), src.Name),
			Content:  src.Content,
			Language: src.Language,
		})
	}
	return files
}

func cloneFiles(files []engine.FileContent) []engine.FileContent {
	out := make([]engine.FileContent, len(files))
	copy(out, files)
	return out
}

func fallbackFiles(language string) []engine.FileContent {
	if files, ok := fallbackTemplates[language]; ok {
		return cloneFiles(files)
	}
	return cloneFiles(fallbackTemplates["csharp"])
}

package main

import (
	"os"
	"sort"
	"strings"

	"github.com/d2verb/zokuzoku/internal/config"
	"github.com/posener/complete"
)

// defaultStoryTypes are offered even before any story has been edited.
var defaultStoryTypes = []string{"story", "home", "race"}

// nonStoryDirs hold other localized data and are never story types.
var nonStoryDirs = map[string]bool{"lyrics": true, "mdb": true}

// newStoryTypePredictor returns a predictor for story types.
// It suggests the defaults plus the directories already present in the
// localized data directory.
func newStoryTypePredictor() complete.Predictor {
	return complete.PredictFunc(func(args complete.Args) []string {
		dataDir := ""
		if paths, err := getPaths(); err == nil {
			if cfg, err := config.Load(paths.Config); err == nil {
				dataDir = cfg.LocalizedDataDir
			}
		}
		return completeStoryTypes(dataDir, args.Last)
	})
}

// completeStoryTypes returns story types starting with partial.
func completeStoryTypes(dataDir, partial string) []string {
	seen := make(map[string]bool)
	for _, t := range defaultStoryTypes {
		seen[t] = true
	}

	if dataDir != "" {
		entries, err := os.ReadDir(dataDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && !strings.HasPrefix(e.Name(), ".") && !nonStoryDirs[e.Name()] {
					seen[e.Name()] = true
				}
			}
		}
	}

	var results []string
	for t := range seen {
		if strings.HasPrefix(t, partial) {
			results = append(results, t)
		}
	}
	sort.Strings(results)
	return results
}

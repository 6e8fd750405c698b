package memedb

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Brief is one trend record produced by the trend-scraping collaborator,
// stored as meme_briefs/brief_N.json.
type Brief struct {
	Search        string   `json:"search"`
	Explanation   string   `json:"explanation"`
	StartTrending string   `json:"start_trending"`
	EndTrending   string   `json:"end_trending"`
	ImagePrompt   []string `json:"image_prompt"`
}

// LoadBriefs reads all brief_*.json files from dir in filename order.
// Files that fail to load are skipped with a log line; a missing directory
// yields an empty list, not an error.
func LoadBriefs(dir string) ([]Brief, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read briefs directory: %w", err)
	}

	var briefs []Brief
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "brief_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("Skipping brief %s: %v", name, err)
			continue
		}
		var brief Brief
		if err := json.Unmarshal(data, &brief); err != nil {
			log.Printf("Skipping unparsable brief %s: %v", name, err)
			continue
		}
		briefs = append(briefs, brief)
	}
	return briefs, nil
}

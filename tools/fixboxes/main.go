// Command fixboxes repairs overlapping bounding boxes in the template db.
// It reports every issue the auditor finds, runs the overlap resolver on
// each template, and writes the repaired set to a sibling file so the
// live log is never rewritten in place.
package main

import (
	"flag"
	"log"
	"math"

	"github.com/ridge/must/v2"

	"github.com/coinmeme-project/coinmeme/pkg/layout"
	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	"github.com/coinmeme-project/coinmeme/pkg/utils"
)

func main() {
	dbPath := flag.String("db", "memedb.jsonl", "path to the template db")
	outPath := flag.String("out", "memedb_fixed.jsonl", "path for the repaired db")
	flag.Parse()

	templates := must.OK1(memedb.Load(*dbPath))
	log.Printf("Analyzing %d templates for bounding box issues", len(templates))

	issues := layout.Audit(utils.Map(templates, memedb.Template.AuditView))
	for _, issue := range issues {
		log.Printf("%s: %s", issue.Template, issue.Detail)
	}

	overlaps := utils.Filter(issues, func(issue layout.Issue) bool {
		return issue.Kind == layout.IssueOverlap
	})
	if len(overlaps) == 0 {
		log.Printf("No overlapping bounding boxes found")
		return
	}
	log.Printf("Fixing %d overlapping bounding box pairs", len(overlaps))

	for i, template := range templates {
		if len(template.BoundingBoxes) == 0 {
			continue
		}
		fixed := layout.Resolve(template.BoundingBoxes)
		reportMoves(template.Name, template.BoundingBoxes, fixed)
		templates[i].BoundingBoxes = fixed
	}

	must.OK(memedb.WriteAll(*outPath, templates))
	log.Printf("Fixed bounding boxes saved to %s", *outPath)
	log.Printf("To apply changes, run: mv %s %s", *outPath, *dbPath)
}

// reportMoves logs every box whose center moved more than a millipixel of
// the unit frame, with before and after centers.
func reportMoves(templateName string, before, after map[string]layout.Box) {
	for _, field := range utils.SortedKeys(before) {
		orig := before[field]
		fixed := after[field]
		if math.Abs(orig.X-fixed.X) > 0.001 || math.Abs(orig.Y-fixed.Y) > 0.001 {
			log.Printf("Fixed %s.%s: (%.3f, %.3f) -> (%.3f, %.3f)",
				templateName, field, orig.X, orig.Y, fixed.X, fixed.Y)
		}
	}
}

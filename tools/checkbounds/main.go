// Command checkbounds reports bounding boxes that extend outside the
// unit image frame. Read-only; intended as an offline data-quality gate.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/ridge/must/v2"

	"github.com/coinmeme-project/coinmeme/pkg/layout"
	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	"github.com/coinmeme-project/coinmeme/pkg/utils"
)

func main() {
	dbPath := flag.String("db", "memedb.jsonl", "path to the template db")
	flag.Parse()

	templates := must.OK1(memedb.Load(*dbPath))
	log.Printf("Checking bounding box bounds for %d templates", len(templates))

	issues := utils.Filter(
		layout.Audit(utils.Map(templates, memedb.Template.AuditView)),
		func(issue layout.Issue) bool { return issue.Kind == layout.IssueOutOfBounds },
	)

	if len(issues) == 0 {
		log.Printf("All bounding boxes are within image bounds")
		return
	}

	log.Printf("Found %d bounding box issues:", len(issues))
	for _, issue := range issues {
		log.Printf("  %s.%s", issue.Template, issue.Detail)
	}
	os.Exit(1)
}

package layout

import (
	"fmt"
	"math"

	"github.com/coinmeme-project/coinmeme/pkg/utils"
)

type IssueKind string

const (
	IssueOutOfBounds IssueKind = "out_of_bounds"
	IssueOverlap     IssueKind = "overlap"
)

// Issue is one data-quality finding for a template's boxes.
type Issue struct {
	Template string
	Kind     IssueKind
	// Detail is human-readable, e.g.
	// "top_text: left edge at -0.050 (< 0)" or
	// "top_text overlaps with bottom_text (area: 0.0123)".
	Detail string
}

// TemplateBoxes is the auditor's view of one template record.
type TemplateBoxes struct {
	Name  string
	Boxes map[string]Box
}

// Audit scans template box sets and reports out-of-bounds edges and
// overlapping pairs. It never modifies its input; repairing is the
// resolver's job.
func Audit(templates []TemplateBoxes) []Issue {
	var issues []Issue
	for _, template := range templates {
		issues = append(issues, auditTemplate(template)...)
	}
	return issues
}

func auditTemplate(template TemplateBoxes) []Issue {
	var issues []Issue

	names := utils.SortedKeys(template.Boxes)
	for _, name := range names {
		box := template.Boxes[name]
		for _, edge := range boundsViolations(name, box) {
			issues = append(issues, Issue{Template: template.Name, Kind: IssueOutOfBounds, Detail: edge})
		}
	}

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a := template.Boxes[names[i]]
			b := template.Boxes[names[j]]
			if !Overlaps(a, b) {
				continue
			}
			area := math.Round(OverlapArea(a, b)*1e4) / 1e4
			issues = append(issues, Issue{
				Template: template.Name,
				Kind:     IssueOverlap,
				Detail:   fmt.Sprintf("%s overlaps with %s (area: %g)", names[i], names[j], area),
			})
		}
	}
	return issues
}

// One violation per edge outside the unit frame, with the overshoot.
func boundsViolations(name string, box Box) []string {
	var violations []string
	if box.Left() < 0 {
		violations = append(violations, fmt.Sprintf("%s: left edge at %.3f (< 0)", name, box.Left()))
	}
	if box.Right() > 1 {
		violations = append(violations, fmt.Sprintf("%s: right edge at %.3f (> 1)", name, box.Right()))
	}
	if box.Top() < 0 {
		violations = append(violations, fmt.Sprintf("%s: top edge at %.3f (< 0)", name, box.Top()))
	}
	if box.Bottom() > 1 {
		violations = append(violations, fmt.Sprintf("%s: bottom edge at %.3f (> 1)", name, box.Bottom()))
	}
	return violations
}

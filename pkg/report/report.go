// Package report renders profiling snapshots as the fixed-column textual report.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/sectionprof/internal/constants"
	"github.com/hyp3rd/sectionprof/pkg/stats"
)

// Render writes the report for root's children. root itself is the registry's
// anonymous root node and is not printed.
func Render(w io.Writer, root stats.Snapshot) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, constants.ReportHeader)

	for _, node := range root.Children {
		renderNode(bw, node, "", node.Total)
	}

	fmt.Fprintln(bw, constants.ReportFooter)

	err := bw.Flush()
	if err != nil {
		return ewrap.Wrap(err, "failed to write report")
	}

	return nil
}

// String renders the report into a string.
func String(root stats.Snapshot) string {
	var sb strings.Builder

	_ = Render(&sb, root) // strings.Builder never fails

	return sb.String()
}

func renderNode(w io.Writer, node stats.Snapshot, indent string, parentTotal float64) {
	if !node.Completed() {
		return
	}

	fmt.Fprintf(w,
		"%s%-*s  Total: %10.3f ms  Avg: %8.3f ms  Min: %8.3f ms  Max: %8.3f ms  StdDev: %8.3f ms  %6.2f%% of parent\n",
		indent, constants.NameColumnWidth, node.Name,
		node.Total, node.Avg(), node.Min, node.Max, node.StdDev(),
		node.Percent(parentTotal),
	)

	for _, child := range node.Children {
		renderNode(w, child, indent+constants.ReportIndent, node.Total)
	}
}

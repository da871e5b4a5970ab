package compare

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines kept around each hunk
const contextLines = 3

// lineOp is a single line of a line-level diff
type lineOp struct {
	op   diffmatchpatch.Operation
	text string
}

// splitLineOps expands line-mode diffs into per-line operations
func splitLineOps(diffs []diffmatchpatch.Diff) []lineOp {
	var ops []lineOp
	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if strings.HasSuffix(d.Text, "\n") {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			ops = append(ops, lineOp{op: d.Type, text: line})
		}
	}
	return ops
}

// countLines returns the number of inserted and deleted lines
func countLines(ops []lineOp) (added, removed int) {
	for _, o := range ops {
		switch o.op {
		case diffmatchpatch.DiffInsert:
			added++
		case diffmatchpatch.DiffDelete:
			removed++
		}
	}
	return added, removed
}

// hunk is a contiguous run of line operations with surrounding context
type hunk struct {
	aStart, aCount int
	bStart, bCount int
	ops            []lineOp
}

// renderUnified renders per-line diff operations as a unified diff with
// standard ---/+++ headers and @@ hunk markers.
func renderUnified(aName, bName string, ops []lineOp) string {
	hunks := buildHunks(ops)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", aName)
	fmt.Fprintf(&sb, "+++ %s\n", bName)

	for _, h := range hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.aStart, h.aCount, h.bStart, h.bCount)
		for _, o := range h.ops {
			switch o.op {
			case diffmatchpatch.DiffDelete:
				sb.WriteString("-")
			case diffmatchpatch.DiffInsert:
				sb.WriteString("+")
			default:
				sb.WriteString(" ")
			}
			sb.WriteString(o.text)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// buildHunks groups changed lines into hunks, merging changes separated by
// at most 2*contextLines unchanged lines.
func buildHunks(ops []lineOp) []hunk {
	// Track the line number each op starts at on both sides.
	aLine := make([]int, len(ops))
	bLine := make([]int, len(ops))
	a, b := 1, 1
	for i, o := range ops {
		aLine[i] = a
		bLine[i] = b
		switch o.op {
		case diffmatchpatch.DiffDelete:
			a++
		case diffmatchpatch.DiffInsert:
			b++
		default:
			a++
			b++
		}
	}

	var hunks []hunk
	i := 0
	for i < len(ops) {
		if ops[i].op == diffmatchpatch.DiffEqual {
			i++
			continue
		}

		// Found a change; extend the window over nearby changes.
		start := i
		end := i
		j := i + 1
		gap := 0
		for j < len(ops) {
			if ops[j].op == diffmatchpatch.DiffEqual {
				gap++
				if gap > 2*contextLines {
					break
				}
			} else {
				end = j
				gap = 0
			}
			j++
		}

		// Pad with leading and trailing context.
		from := start - contextLines
		if from < 0 {
			from = 0
		}
		to := end + contextLines
		if to > len(ops)-1 {
			to = len(ops) - 1
		}

		h := hunk{ops: ops[from : to+1]}
		h.aStart = aLine[from]
		h.bStart = bLine[from]
		for _, o := range h.ops {
			switch o.op {
			case diffmatchpatch.DiffDelete:
				h.aCount++
			case diffmatchpatch.DiffInsert:
				h.bCount++
			default:
				h.aCount++
				h.bCount++
			}
		}
		if h.aCount == 0 {
			h.aStart--
		}
		if h.bCount == 0 {
			h.bStart--
		}
		hunks = append(hunks, h)

		i = to + 1
	}

	return hunks
}

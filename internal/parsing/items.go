package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

// LineItem is one row of the invoice's line-item table, in table encounter
// order. Quantity defaults to 1 when the row carries no distinct quantity
// token.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// tableState is the extractor's position relative to the line-item table.
type tableState int

const (
	seekingHeader tableState = iota
	inTable
	tableDone
)

var (
	moneyToken = regexp.MustCompile(`\d[\d,]*(?:\.\d{1,2})?`)
	// A distinct integer token sitting directly before the monetary tail.
	quantityTail = regexp.MustCompile(`(?:^|\s)(\d{1,4})\s*$`)
	// Keywords that end the table region. "total (...)" covers totals that
	// carry a currency label, e.g. "TOTAL (Rs.)".
	terminator = regexp.MustCompile(`(?i)\b(?:sub\s*-?\s*total|grand\s+total|total\s+tax|balance\s+due|total\s*\([^)]*\))`)
)

// isHeaderLine reports whether a line enumerates the table's column captions.
// OCR mangles spacing and column order, so this checks caption presence
// rather than a fixed layout.
func isHeaderLine(line string) bool {
	l := strings.ToLower(line)
	if !strings.Contains(l, "description") {
		return false
	}
	if !strings.Contains(l, "qty") && !strings.Contains(l, "quantity") {
		return false
	}
	return strings.Contains(l, "price") && strings.Contains(l, "total")
}

// ExtractLineItems isolates the line-item table from normalized text and
// parses its rows. Lines before the header and at or after a terminator are
// never attributed to an item. When no header line exists the result is
// empty; header-field extraction is unaffected.
//
// Inside the table, a line with at least two recoverable monetary tokens is
// an item row: the two rightmost tokens are unit price and line total (extra
// monetary tokens further left are ignored; this is a deliberate heuristic,
// not a column-layout model). A non-empty line without a monetary pair is
// wrapped description text: it extends the previous item, or is held and
// prefixed to the next row when no item has been emitted yet.
func ExtractLineItems(text string) []LineItem {
	items := []LineItem{}
	state := seekingHeader
	pending := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch state {
		case seekingHeader:
			if isHeaderLine(line) {
				state = inTable
			}
		case inTable:
			if terminator.MatchString(line) {
				state = tableDone
				continue
			}
			item, ok := parseItemLine(line, pending)
			if !ok {
				// Wrapped description text.
				if len(items) > 0 && pending == "" {
					items[len(items)-1].Description += " " + line
				} else if pending != "" {
					pending += " " + line
				} else {
					pending = line
				}
				continue
			}
			pending = ""
			if item.Description == "" {
				continue
			}
			items = append(items, item)
		case tableDone:
			return items
		}
	}
	return items
}

// parseItemLine parses one candidate table row. pending is held description
// text from preceding wrapped lines.
func parseItemLine(line, pending string) (LineItem, bool) {
	locs := moneyToken.FindAllStringIndex(line, -1)
	if len(locs) < 2 {
		return LineItem{}, false
	}

	unitLoc, totalLoc := locs[len(locs)-2], locs[len(locs)-1]
	unitPrice, err := Amount(line[unitLoc[0]:unitLoc[1]])
	if err != nil {
		return LineItem{}, false
	}
	lineTotal, err := Amount(line[totalLoc[0]:totalLoc[1]])
	if err != nil {
		return LineItem{}, false
	}

	prefix := line[:unitLoc[0]]
	quantity := 1
	if m := quantityTail.FindStringSubmatchIndex(prefix); m != nil {
		if q, err := strconv.Atoi(prefix[m[2]:m[3]]); err == nil && q > 0 {
			quantity = q
			prefix = prefix[:m[2]]
		}
	}

	desc := strings.Trim(strings.TrimSpace(prefix), " -:")
	if pending != "" {
		desc = strings.TrimSpace(pending + " " + desc)
	}
	// OCR tends to leave a dangling "as" when it wraps mid-phrase.
	if strings.HasSuffix(strings.ToLower(desc), " as") {
		desc = strings.TrimSpace(desc[:len(desc)-3])
	}

	return LineItem{
		Description: desc,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   lineTotal,
	}, true
}

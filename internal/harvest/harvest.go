// Package harvest collects raw HTML table candidates from a loaded page and
// all of its frames. It only gathers data; ranking and record building live in
// the table package.
package harvest

import (
	"encoding/json"
	"time"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog/log"
)

// RawTable describes one HTML table found in a document frame. It is built
// once per table element and discarded after selection.
type RawTable struct {
	Caption  string     `json:"caption"`
	ID       string     `json:"id"`
	Classes  string     `json:"classes"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"rowCount"`
	ColCount int        `json:"colCount"`
	Score    float64    `json:"score"`
	FrameURL string     `json:"frameUrl"`
}

// Harvester yields the raw table candidates of a page. Each call harvests
// fresh, since the DOM may still be populating between calls.
type Harvester interface {
	Harvest() []RawTable
}

// collectTablesJS extracts every <table> of a document into RawTable shape.
// Cell text comes from innerText so only rendered content is captured, trimmed
// and with internal whitespace runs collapsed.
const collectTablesJS = `() => {
  function getText(cell) {
    return cell.innerText.trim().replace(/\s+/g, ' ');
  }

  const results = [];
  const nodeTables = Array.from(document.querySelectorAll('table'));
  for (const tbl of nodeTables) {
    const caption = tbl.caption ? getText(tbl.caption) : '';
    const id = tbl.id || '';
    const classes = tbl.className || '';

    const headerRows = Array.from(tbl.querySelectorAll('thead tr'));
    let headers = [];
    let headerTr = null;
    if (headerRows.length) {
      // The last header row is usually the most detailed one.
      headerTr = headerRows[headerRows.length - 1];
      headers = Array.from(headerTr.cells).map(getText);
    } else {
      const th = tbl.querySelector('tr th');
      if (th) {
        headerTr = th.parentElement;
        headers = Array.from(headerTr.cells).map(getText);
      }
    }

    let bodyTrs = Array.from(tbl.querySelectorAll('tbody tr'));
    if (bodyTrs.length === 0) {
      bodyTrs = Array.from(tbl.querySelectorAll('tr'));
    }
    // The parser wraps bare rows in a synthesized <tbody>, so the header
    // row can sit among the body rows. Exclude it by identity.
    if (headerTr) {
      bodyTrs = bodyTrs.filter(tr => tr !== headerTr);
    }

    const rows = bodyTrs
      .map(tr => Array.from(tr.cells).map(getText))
      .filter(r => r.length);

    const colCount = rows[0] ? rows[0].length : (headers.length || 0);
    const rowCount = rows.length;
    const score = rowCount * (colCount || 1) + (headers.length ? 5 : 0);
    results.push({ caption, id, classes, headers, rows, rowCount, colCount, score });
  }
  return results;
}`

const (
	frameEvalTimeout = 10 * time.Second
	// Frames nested deeper than this are almost certainly ad or tracking
	// content, and a cycle guard is needed anyway.
	maxFrameDepth = 3
)

// PageHarvester harvests tables from a live rod page and its iframes.
type PageHarvester struct {
	page *rod.Page
}

// NewPageHarvester creates a PageHarvester over an already navigated page.
func NewPageHarvester(page *rod.Page) *PageHarvester {
	return &PageHarvester{page: page}
}

// Harvest walks the main document and every reachable iframe document and
// returns all table candidates found across them.
func (h *PageHarvester) Harvest() []RawTable {
	var out []RawTable
	for _, fr := range collectFrames(h.page, 0) {
		out = append(out, tablesInFrame(fr)...)
	}
	return out
}

// collectFrames returns the page itself followed by every attached iframe
// document, depth-first, up to maxFrameDepth.
func collectFrames(p *rod.Page, depth int) []*rod.Page {
	frames := []*rod.Page{p}
	if depth >= maxFrameDepth {
		return frames
	}
	els, err := p.Timeout(5 * time.Second).Elements("iframe, frame")
	if err != nil {
		log.Debug().Err(err).Msg("frame enumeration failed")
		return frames
	}
	for _, el := range els {
		child, err := el.Frame()
		if err != nil {
			log.Debug().Err(err).Msg("cannot attach to frame")
			continue
		}
		frames = append(frames, collectFrames(child, depth+1)...)
	}
	return frames
}

// tablesInFrame evaluates the collection script inside one frame. Evaluation
// failures (detached frame, navigation mid-flight, cross-origin restriction)
// never propagate: the frame first falls back to static parsing of its HTML
// and otherwise contributes zero tables. The fallback reads markup text
// rather than rendered innerText, so script-hidden content may surface there;
// both paths apply the same trim-and-collapse whitespace rule.
func tablesInFrame(p *rod.Page) []RawTable {
	url := frameURL(p)

	res, err := p.Timeout(frameEvalTimeout).Eval(collectTablesJS)
	if err != nil {
		log.Debug().Err(err).Str("frame", url).Msg("table evaluation failed in frame")
		return staticFallback(p, url)
	}
	data, err := res.Value.MarshalJSON()
	if err != nil {
		log.Debug().Err(err).Str("frame", url).Msg("cannot serialize evaluation result")
		return staticFallback(p, url)
	}
	var tables []RawTable
	if err := json.Unmarshal(data, &tables); err != nil {
		log.Debug().Err(err).Str("frame", url).Msg("cannot decode table candidates")
		return staticFallback(p, url)
	}
	for i := range tables {
		tables[i].FrameURL = url
	}
	log.Debug().Int("tables", len(tables)).Str("frame", url).Msg("frame harvested")
	return tables
}

// staticFallback parses the frame's HTML snapshot without script evaluation.
func staticFallback(p *rod.Page, url string) []RawTable {
	html, err := p.Timeout(5 * time.Second).HTML()
	if err != nil {
		log.Debug().Err(err).Str("frame", url).Msg("cannot snapshot frame HTML")
		return nil
	}
	tables := ParseDocument(html, url)
	log.Debug().Int("tables", len(tables)).Str("frame", url).Msg("frame harvested statically")
	return tables
}

func frameURL(p *rod.Page) string {
	res, err := p.Timeout(3 * time.Second).Eval(`() => location.href`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

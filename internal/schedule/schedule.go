// Package schedule drives one extraction run: open the page, poll for the
// best table across frames, normalize it into records and apply the type
// filter.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"

	"github.com/manuiageek/CruiseWatch-Tahiti/internal/browser"
	"github.com/manuiageek/CruiseWatch-Tahiti/internal/export"
	"github.com/manuiageek/CruiseWatch-Tahiti/internal/harvest"
	"github.com/manuiageek/CruiseWatch-Tahiti/internal/table"
)

// ErrNoTable is returned when no plausible table shows up on the page or in
// its frames after all polling attempts.
var ErrNoTable = errors.New("no table detected on the page or in its frames")

// Options configure one scrape run.
type Options struct {
	URL          string
	Timeout      time.Duration
	Headful      bool
	ProxyURL     string
	TypeOnly     string
	NoTypeFilter bool
}

const (
	// The schedule table is often injected after load; poll a few times.
	selectAttempts = 4
	selectDelay    = time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Scrape launches a browser, extracts the ship forecast table from opts.URL
// and returns the export bundle. Browser and page are released on every exit
// path. A navigation timeout is tolerated: the page may be partially
// populated and still carry the table.
func Scrape(ctx context.Context, opts Options) (*export.Bundle, error) {
	b, err := browser.New(browser.Config{
		Headless: !opts.Headful,
		ProxyURL: opts.ProxyURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()

	log.Info().Bool("headless", !opts.Headful).Msg("chromium started")

	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	preparePage(page)

	log.Info().Str("url", opts.URL).Msg("navigating")
	if err := page.Timeout(opts.Timeout).Navigate(opts.URL); err != nil {
		log.Warn().Err(err).Msg("navigation did not finish in time; attempting extraction anyway")
	}
	waitSettled(page, opts.Timeout)

	best, ranked := pollBestTable(ctx, harvest.NewPageHarvester(page), selectAttempts, selectDelay)
	if best == nil {
		log.Error().Msg("no table detected on the page or in its iframes")
		return nil, ErrNoTable
	}
	log.Info().
		Str("id", best.ID).
		Str("classes", best.Classes).
		Int("rows", best.RowCount).
		Int("cols", best.ColCount).
		Msg("table selected")
	log.Debug().Int("candidates", len(ranked)).Str("frame", best.FrameURL).Msg("candidates ranked")

	headers, records := table.Normalize(*best, table.DefaultIgnoredHeaders)
	log.Info().Int("records", len(records)).Msg("extraction finished")

	records = applyTypeFilter(records, headers, opts)

	return &export.Bundle{
		Meta: export.Meta{
			SourceURL:    opts.URL,
			FrameURL:     best.FrameURL,
			Headers:      headers,
			RowCount:     len(records),
			TableID:      best.ID,
			TableClasses: best.Classes,
			TableCaption: best.Caption,
		},
		Records: records,
	}, nil
}

// preparePage sets a desktop user agent with French locale and hides the
// webdriver marker before navigation.
func preparePage(page *rod.Page) {
	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      userAgent,
		AcceptLanguage: "fr-FR,fr;q=0.9",
	})
	_, _ = page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`)
}

// waitSettled waits for load plus network idle, best effort. Timeouts are
// logged and swallowed: extraction is attempted regardless.
func waitSettled(page *rod.Page, timeout time.Duration) {
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		log.Warn().Err(err).Msg("page load wait timed out; attempting extraction anyway")
		return
	}
	wait := page.Timeout(timeout).WaitRequestIdle(
		500*time.Millisecond, nil, nil,
		[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
	)
	wait()
}

// pollBestTable harvests and selects fresh on each attempt, with a fixed
// pause between attempts, until a table qualifies or attempts run out.
// Cancelling ctx aborts the poll early.
func pollBestTable(ctx context.Context, h harvest.Harvester, attempts int, delay time.Duration) (*harvest.RawTable, []harvest.RawTable) {
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, nil
			case <-time.After(delay):
			}
		}
		log.Debug().Int("attempt", i+1).Msg("searching for tables in the page and its iframes")
		best, ranked := table.Select(h.Harvest())
		if best != nil {
			return best, ranked
		}
	}
	return nil, nil
}

// applyTypeFilter keeps only records matching the configured vessel type.
// A missing type column downgrades filtering to a warning, never an error.
func applyTypeFilter(records []table.Record, headers []string, opts Options) []table.Record {
	field, ok := table.TypeField(headers)
	if !ok {
		log.Warn().Msg("no header containing 'type' detected: filtering skipped")
		return records
	}
	log.Debug().Str("field", field).Msg("type column detected")

	if opts.NoTypeFilter {
		return records
	}
	want := strings.ToUpper(strings.TrimSpace(opts.TypeOnly))
	if want == "" {
		log.Debug().Msg("empty target type: no filtering applied")
		return records
	}
	before := len(records)
	records = table.FilterByType(records, field, opts.TypeOnly)
	log.Info().
		Str("type", want).
		Int("before", before).
		Int("after", len(records)).
		Msg("type filter applied")
	return records
}

package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/recruit-pilot/internal/fetch"
)

// BoardSource scrapes an HTML job-board search page. Selectors target the
// board's current markup and break silently when it changes; the ingestor
// treats that as zero results, which is the intended failure mode.
type BoardSource struct {
	name       string
	searchURL  string // format: query, location, page start
	cardSel    string
	titleSel   string
	companySel string
	locSel     string
	linkSel    string
	pageSize   int
	useBrowser bool
}

// NewIndeedSource returns a source scraping Indeed's public search pages
func NewIndeedSource(useBrowser bool) *BoardSource {
	return &BoardSource{
		name:       "indeed",
		searchURL:  "https://www.indeed.com/jobs?q=%s&l=%s&start=%d",
		cardSel:    "div.job_seen_beacon, td.resultContent",
		titleSel:   "h2.jobTitle span[title], h2.jobTitle a, a.jcs-JobTitle",
		companySel: `[data-testid="company-name"], span.companyName`,
		locSel:     `[data-testid="text-location"], div.companyLocation`,
		linkSel:    "h2.jobTitle a, a.jcs-JobTitle",
		pageSize:   10,
		useBrowser: useBrowser,
	}
}

// NewRemotiveSource returns a source scraping Remotive's remote-job listings
func NewRemotiveSource() *BoardSource {
	return &BoardSource{
		name:       "remotive",
		searchURL:  "https://remotive.com/remote-jobs/search?search=%s&location=%s&page=%d",
		cardSel:    "li.tw-cursor-pointer, div.job-tile",
		titleSel:   "a.job-title, span.remotive-bold",
		companySel: "span.company, p.company-name",
		locSel:     "span.location, span.job-location",
		linkSel:    "a.job-title, a[href*='/remote-jobs/']",
		pageSize:   1,
		useBrowser: false,
	}
}

// Name identifies the board
func (s *BoardSource) Name() string {
	return s.name
}

// Fetch scrapes up to pageCount result pages for the query/location pair
func (s *BoardSource) Fetch(ctx context.Context, query, location string, pageCount int) ([]RawPosting, error) {
	if pageCount <= 0 {
		pageCount = 1
	}

	var postings []RawPosting
	for page := 0; page < pageCount; page++ {
		pageURL := fmt.Sprintf(s.searchURL,
			url.QueryEscape(query), url.QueryEscape(location), page*s.pageSize)

		html, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			// Later pages failing just truncates the result set
			break
		}

		pagePostings, err := s.parseListing(html)
		if err != nil {
			return nil, err
		}
		if len(pagePostings) == 0 {
			break
		}
		postings = append(postings, pagePostings...)
	}

	return postings, nil
}

// fetchPage retrieves one search page, escalating to a headless browser
// when the plain HTTP response looks like an unrendered SPA shell.
func (s *BoardSource) fetchPage(ctx context.Context, pageURL string) (string, error) {
	result, err := fetch.URL(ctx, pageURL, nil)
	if err == nil {
		text, extractErr := fetch.ExtractText(result.HTML)
		if extractErr == nil && !fetch.ShouldUseBrowser(text) {
			return result.HTML, nil
		}
	}

	if !s.useBrowser {
		if err != nil {
			return "", err
		}
		return result.HTML, nil
	}

	return fetch.WithBrowser(ctx, pageURL, 45*time.Second, false)
}

// parseListing extracts postings from a search-results page
func (s *BoardSource) parseListing(html string) ([]RawPosting, error) {
	doc, err := fetch.Document(html)
	if err != nil {
		return nil, err
	}

	var postings []RawPosting
	doc.Find(s.cardSel).Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, s.titleSel)
		if title == "" {
			return
		}

		posting := RawPosting{
			Title:    title,
			Company:  firstText(card, s.companySel),
			Location: firstText(card, s.locSel),
		}

		if link := card.Find(s.linkSel).First(); link.Length() > 0 {
			if href, ok := link.Attr("href"); ok {
				posting.URL = absoluteURL(s.searchURL, href)
			}
			if id, ok := link.Attr("data-jk"); ok {
				posting.ExternalID = id
			}
		}

		postings = append(postings, posting)
	})

	return postings, nil
}

// firstText returns the trimmed text of the first element matching selector
func firstText(sel *goquery.Selection, selector string) string {
	node := sel.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	if title, ok := node.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(node.Text())
}

// absoluteURL resolves href against the board's host
func absoluteURL(searchURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(searchURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

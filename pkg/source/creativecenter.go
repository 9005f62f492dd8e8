package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const creativeCenterURL = "https://ads.tiktok.com/business/creativecenter/inspiration/popular/hashtag/pc/en"

// CreativeCenter collects the popular-hashtag leaderboard from TikTok's
// Creative Center. The page is server-rendered enough to expose the
// hashtag cards; authenticated sessions see the full leaderboard, so an
// exported cookie file can optionally be attached to every request.
type CreativeCenter struct {
	client      *http.Client
	pageURL     string
	cookiesFile string
}

// NewCreativeCenter creates a new Creative Center collector.
func NewCreativeCenter(pageURL, cookiesFile string) *CreativeCenter {
	if pageURL == "" {
		pageURL = creativeCenterURL
	}
	return &CreativeCenter{
		client:      &http.Client{Timeout: 30 * time.Second},
		pageURL:     pageURL,
		cookiesFile: cookiesFile,
	}
}

func (c *CreativeCenter) Name() SourceType { return SourceCreativeCenter }

func (c *CreativeCenter) Collect(ctx context.Context) ([]TrendRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create creative center request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/115.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://ads.tiktok.com/")

	if c.cookiesFile != "" {
		if cookies, err := loadCookieHeader(c.cookiesFile); err != nil {
			return nil, fmt.Errorf("load cookies %s: %w", c.cookiesFile, err)
		} else if cookies != "" {
			req.Header.Set("Cookie", cookies)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch creative center: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("creative center status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse creative center page: %w", err)
	}

	var records []TrendRecord
	now := time.Now().UTC()

	doc.Find("#hashtagItemContainer div[class*=CardPc_detail]").Each(func(i int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("h3").First().Text())
		if title == "" {
			return
		}
		views := strings.TrimSpace(card.Find("span[class*=CardPc_number]").First().Text())
		href, _ := card.Find("a").First().Attr("href")
		fullURL := ""
		if href != "" {
			if strings.HasPrefix(href, "http") {
				fullURL = href
			} else {
				fullURL = "https://ads.tiktok.com" + href
			}
		}

		rank := i + 1
		records = append(records, TrendRecord{
			Name:            strings.TrimPrefix(title, "#"),
			URL:             fullURL,
			Views:           views,
			LeaderboardRank: &rank,
			Source:          SourceCreativeCenter,
			CollectedAt:     now,
		})
	})

	return records, nil
}

// loadCookieHeader reads a browser cookie export of the form
// `cookies = {"name": "value", ...}` and flattens it into a Cookie
// header value. Missing file content yields an empty header.
func loadCookieHeader(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	payload := string(raw)
	if idx := strings.Index(payload, "= "); idx >= 0 {
		payload = payload[idx+2:]
	}

	var cookies map[string]string
	if err := json.Unmarshal([]byte(payload), &cookies); err != nil {
		return "", fmt.Errorf("parse cookie file: %w", err)
	}

	var pairs []string
	for name, value := range cookies {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, "; "), nil
}

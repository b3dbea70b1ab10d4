package feedwatch

import (
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedItem is one entry from the Federal Register presidential
// documents feed.
type FeedItem struct {
	Title       string
	Link        string
	GUID        string
	PublishedAt time.Time
}

// FetchFeed fetches the feed at feedURL. If limit is greater than 0,
// only the first limit items are returned.
func FetchFeed(feedURL string, limit int) ([]FeedItem, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	fp := gofeed.NewParser()
	fp.Client = httpClient

	feed, err := fp.ParseURL(feedURL)
	if err != nil {
		return nil, err
	}

	var items []FeedItem
	for _, item := range feed.Items {
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		items = append(items, FeedItem{
			Title:       item.Title,
			Link:        item.Link,
			GUID:        item.GUID,
			PublishedAt: published,
		})
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// Watcher polls the feed and reports items it has not seen before.
// Seen state is kept in memory; a restart re-reports the current feed
// contents, which downstream refresh handling tolerates.
type Watcher struct {
	feedURL string
	seen    map[string]struct{}
}

func NewWatcher(feedURL string) *Watcher {
	return &Watcher{
		feedURL: feedURL,
		seen:    make(map[string]struct{}),
	}
}

// Poll fetches the feed and returns items not seen on earlier polls.
// On the first poll all current items count as new.
func (w *Watcher) Poll() ([]FeedItem, error) {
	items, err := FetchFeed(w.feedURL, 0)
	if err != nil {
		return nil, err
	}

	var fresh []FeedItem
	for _, item := range items {
		key := item.GUID
		if key == "" {
			key = item.Link
		}
		if _, ok := w.seen[key]; ok {
			continue
		}
		w.seen[key] = struct{}{}
		fresh = append(fresh, item)
	}

	return fresh, nil
}

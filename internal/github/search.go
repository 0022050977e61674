package github

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// StyleTopic tags repositories that publish a keyfit style pack.
const StyleTopic = "keyfit-style"

// SearchResult represents a repository found via search.
type SearchResult struct {
	Owner       string
	Repo        string
	Description string
	Stars       int
	Topics      []string
	URL         string
}

// FullName returns the owner/repo string.
func (r *SearchResult) FullName() string {
	return r.Owner + "/" + r.Repo
}

type searchResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Stars       int      `json:"stargazers_count"`
		Topics      []string `json:"topics"`
		HTMLURL     string   `json:"html_url"`
		Owner       struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"items"`
}

// SearchStyles finds repositories tagged with StyleTopic, most starred first.
func (c *Client) SearchStyles(ctx context.Context, query string) ([]SearchResult, error) {
	q := "topic:" + StyleTopic
	if query != "" {
		q += " " + query
	}

	endpoint := fmt.Sprintf("search/repositories?q=%s&sort=stars&order=desc&per_page=30", url.QueryEscape(q))

	var response searchResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(response.Items))
	for _, item := range response.Items {
		results = append(results, SearchResult{
			Owner:       item.Owner.Login,
			Repo:        item.Name,
			Description: item.Description,
			Stars:       item.Stars,
			Topics:      item.Topics,
			URL:         item.HTMLURL,
		})
	}
	return results, nil
}

// languageAliases maps content-language variations to topic names.
var languageAliases = map[string]string{
	"ko":  "korean",
	"kr":  "korean",
	"kor": "korean",
	"한국어": "korean",
	"en":  "english",
	"eng": "english",
	"ja":  "japanese",
	"jp":  "japanese",
	"zh":  "chinese",
	"cn":  "chinese",
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(lang)
	if canonical, ok := languageAliases[lang]; ok {
		return canonical
	}
	return lang
}

// FilterByLanguage keeps results whose topics name the given content language.
// Aliases such as "ko" or "en" are accepted on both sides.
func FilterByLanguage(results []SearchResult, lang string) []SearchResult {
	if lang == "" {
		return results
	}

	lang = normalizeLanguage(lang)
	filtered := make([]SearchResult, 0)
	for _, r := range results {
		for _, topic := range r.Topics {
			if normalizeLanguage(topic) == lang {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered
}

// SortByStars sorts results by star count (descending).
func SortByStars(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Stars > results[j].Stars
	})
}

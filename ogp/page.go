package ogp

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// pageMeta is the scrape-relevant subset of an HTML document: meta tag
// contents keyed by property or name (first occurrence wins), the document
// title, and the best icon link.
type pageMeta struct {
	meta  map[string]string
	title string
	icon  string
}

func (p pageMeta) first(keys ...string) string {
	for _, k := range keys {
		if v := p.meta[k]; v != "" {
			return v
		}
	}
	return ""
}

var iconRels = []string{"icon", "shortcut icon", "apple-touch-icon"}

func parsePage(r io.Reader) (pageMeta, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return pageMeta{}, err
	}

	page := pageMeta{meta: map[string]string{}}
	icons := map[string]string{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				key := attr(n, "property")
				if key == "" {
					key = attr(n, "name")
				}
				content := strings.TrimSpace(attr(n, "content"))
				if key != "" && content != "" {
					if _, seen := page.meta[key]; !seen {
						page.meta[key] = content
					}
				}
			case "title":
				if page.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					page.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "link":
				rel := strings.ToLower(strings.TrimSpace(attr(n, "rel")))
				href := strings.TrimSpace(attr(n, "href"))
				if href != "" {
					if _, seen := icons[rel]; !seen {
						icons[rel] = href
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, rel := range iconRels {
		if href := icons[rel]; href != "" {
			page.icon = href
			break
		}
	}
	return page, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

package model

import (
	"time"
)

// MediaLinkKind tells where on a page a media link was found
type MediaLinkKind string

const (
	MediaLinkAudio  MediaLinkKind = "audio"
	MediaLinkVideo  MediaLinkKind = "video"
	MediaLinkSource MediaLinkKind = "source"
	MediaLinkAnchor MediaLinkKind = "anchor"
)

// MediaLink is a candidate direct file URL found on an HTML page
type MediaLink struct {
	URL   string        `json:"url"`
	Kind  MediaLinkKind `json:"kind"`
	Label string        `json:"label,omitempty"` // link text or title attribute
}

// PageInspection is what inspecting an HTML page found. It only suggests
// links; nothing is downloaded.
type PageInspection struct {
	URL       string       `json:"url"`
	Title     string       `json:"title"`
	Links     []*MediaLink `json:"links"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewPageInspection creates an empty inspection for url
func NewPageInspection(url string) *PageInspection {
	return &PageInspection{
		URL:       url,
		Links:     make([]*MediaLink, 0),
		CreatedAt: time.Now(),
	}
}

// AddLink adds link unless the same URL was already found
func (p *PageInspection) AddLink(link *MediaLink) bool {
	for _, existing := range p.Links {
		if existing.URL == link.URL {
			return false
		}
	}
	p.Links = append(p.Links, link)
	return true
}

// LinksOfKind returns the links found in elements of the given kind
func (p *PageInspection) LinksOfKind(kind MediaLinkKind) []*MediaLink {
	var links []*MediaLink
	for _, link := range p.Links {
		if link.Kind == kind {
			links = append(links, link)
		}
	}
	return links
}

// HasLinks reports whether any candidate was found
func (p *PageInspection) HasLinks() bool {
	return len(p.Links) > 0
}

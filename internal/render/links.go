package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

var (
	wikiLink      = regexp.MustCompile(`\[\[([^\[\]|]+)(\|((?:[^\[\]]|\[\[[^\[\]]*\]\])*))?\]\]([a-z]*)`)
	bracketedLink = regexp.MustCompile(`\[((?:https?:)?//[^\s\[\]<>"]+)(?:[ \t]+([^\]\n]*))?\]`)
	freeLink      = regexp.MustCompile(`(^|[\s(>])(https?://[^\s<>\[\]"]+[^\s<>\[\]".,;:!?)])`)
)

func (s *wikiState) wikiLinks(text string) string {
	return wikiLink.ReplaceAllStringFunc(text, func(m string) string {
		sub := wikiLink.FindStringSubmatch(m)
		return s.wikiLink(m, sub[1], sub[2] != "", sub[3], sub[4])
	})
}

func (s *wikiState) wikiLink(raw, target string, piped bool, label, trail string) string {
	forced := strings.HasPrefix(strings.TrimSpace(target), ":")
	target = strings.TrimPrefix(strings.TrimSpace(target), ":")
	t, err := s.r.site.Parse(target)
	if err != nil {
		return html.EscapeString(raw)
	}
	if piped {
		label = s.wikiLinks(label)
	}

	if !forced {
		switch {
		case t.IsExternal() && s.r.site.IsLanguagePrefix(t.Interwiki):
			link := t.Interwiki + ":" + t.PrefixedText()
			if t.Fragment != "" {
				link += "#" + t.Fragment
			}
			if s.once("lang:" + t.Interwiki) {
				s.out.LanguageLinks = append(s.out.LanguageLinks, link)
			}
			return trail
		case !t.IsExternal() && t.Namespace == titles.NSCategory:
			name := strings.ReplaceAll(t.Text, " ", "_")
			if s.once("cat:" + name) {
				s.out.Categories = append(s.out.Categories, interfaces.CategoryLink{Name: name, SortKey: label})
			}
			return trail
		case !t.IsExternal() && t.Namespace == titles.NSFile:
			return s.image(t, label) + trail
		}
	}

	if !piped {
		label = target
	} else if label == "" {
		label = t.Text
	}
	label += trail

	switch {
	case t.IsExternal():
		if s.once("iw:" + t.Interwiki + ":" + t.PrefixedText()) {
			s.out.InterwikiLinks = append(s.out.InterwikiLinks, interfaces.InterwikiLink{Prefix: t.Interwiki, Title: t.PrefixedText()})
		}
		return s.anchor(label, "href", s.r.site.FullURL(t), "class", "extiw", "title", t.Interwiki+":"+t.PrefixedText())
	case t.Text == "" && t.Fragment != "":
		return s.anchor(label, "href", "#"+titles.Anchor(t.Fragment))
	case t.Namespace == titles.NSMedia:
		s.recordImage(t.Text)
		href := s.r.uploadPath + "/" + strings.ReplaceAll(t.Text, " ", "_")
		return s.anchor(label, "href", href, "class", "internal")
	case t.Equals(s.title) && t.Fragment == "":
		return s.anchor(label, "class", "mw-selflink selflink")
	}

	if t.CanExist() && s.once(fmt.Sprintf("link:%d:%s", t.Namespace, t.Text)) {
		s.out.Links = append(s.out.Links, interfaces.LinkTarget{Namespace: t.Namespace, Title: t.Text})
	}
	return s.anchor(label, "href", s.r.site.LocalURL(t), "title", t.PrefixedText())
}

// anchor holds the link markup so later passes only see label.
func (s *wikiState) anchor(label string, attrs ...string) string {
	return s.hold(startTag("a", attrs...)) + label + s.hold(endTag("a"))
}

func (s *wikiState) recordImage(name string) {
	key := strings.ReplaceAll(name, " ", "_")
	if s.once("img:" + key) {
		s.out.Images = append(s.out.Images, key)
	}
}

// image renders [[File:Name|thumb|caption]] as a plain image, with a figure
// wrapper when a frame option is given.
func (s *wikiState) image(t titles.Title, label string) string {
	s.recordImage(t.Text)
	src := s.r.uploadPath + "/" + strings.ReplaceAll(t.Text, " ", "_")

	var caption, width string
	framed := false
	for _, part := range splitPipes(label) {
		opt := strings.TrimSpace(part)
		switch {
		case opt == "":
		case opt == "thumb" || opt == "thumbnail" || opt == "frame":
			framed = true
		case opt == "left" || opt == "right" || opt == "center" || opt == "none":
		case strings.HasSuffix(opt, "px"):
			if _, err := strconv.Atoi(strings.TrimSuffix(opt, "px")); err == nil {
				width = strings.TrimSuffix(opt, "px")
			}
		default:
			caption = opt
		}
	}

	alt := caption
	if alt == "" {
		alt = t.Text
	}
	imgAttrs := []string{"alt", html.UnescapeString(stripTags(alt)), "src", src}
	if width != "" {
		imgAttrs = append(imgAttrs, "width", width)
	}
	link := s.anchor(s.hold(voidTag("img", imgAttrs...)), "href", s.r.site.LocalURL(t), "class", "image")
	if !framed {
		return link
	}
	return s.hold(startTag("figure", "class", "mw-default-size", "typeof", "mw:File/Thumb")) + link +
		s.hold(startTag("figcaption")) + caption + s.hold(endTag("figcaption")+endTag("figure"))
}

func (s *wikiState) externalLinks(text string) string {
	text = bracketedLink.ReplaceAllStringFunc(text, func(m string) string {
		sub := bracketedLink.FindStringSubmatch(m)
		href := sub[1]
		s.recordExternal(href)
		label := strings.TrimSpace(sub[2])
		class := "external text"
		if label == "" {
			s.extLinks++
			label = "[" + strconv.Itoa(s.extLinks) + "]"
			class = "external autonumber"
		}
		return s.anchor(label, "rel", "nofollow", "class", class, "href", href)
	})
	return freeLink.ReplaceAllStringFunc(text, func(m string) string {
		sub := freeLink.FindStringSubmatch(m)
		href := sub[2]
		s.recordExternal(href)
		return sub[1] + s.hold(element("a", html.EscapeString(href), "rel", "nofollow", "class", "external free", "href", href))
	})
}

func (s *wikiState) recordExternal(href string) {
	if s.once("ext:" + href) {
		s.out.ExternalLinks = append(s.out.ExternalLinks, href)
	}
}

var anyTag = regexp.MustCompile(`<[^<>]*>`)

func stripTags(text string) string {
	return anyTag.ReplaceAllString(text, "")
}

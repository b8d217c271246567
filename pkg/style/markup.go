package style

import (
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type markupTag struct {
	name    string
	pattern *regexp.Regexp
	style   lipgloss.Style
}

// MarkupParser renders inline tags like "[repo]openstax/biology[/repo]".
type MarkupParser struct {
	tags []markupTag
}

// NewMarkupParser returns a parser with the bookops tag set.
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{}
	for name, st := range map[string]lipgloss.Style{
		"title":   TitleStyle,
		"success": SuccessStyle,
		"error":   ErrorStyle,
		"warning": WarningStyle,
		"info":    InfoStyle,
		"path":    PathStyle,
		"muted":   MutedStyle,
		"bold":    lipgloss.NewStyle().Bold(true),
		"italic":  lipgloss.NewStyle().Italic(true),
		"repo":    RepoStyle,
		"branch":  BranchStyle,
		"tag":     TagStyle,
	} {
		p.AddStyle(name, st)
	}
	return p
}

// AddStyle registers or replaces a tag.
func (p *MarkupParser) AddStyle(name string, st lipgloss.Style) {
	tag := markupTag{
		name:    name,
		pattern: regexp.MustCompile(`\[` + regexp.QuoteMeta(name) + `\](.*?)\[/` + regexp.QuoteMeta(name) + `\]`),
		style:   st,
	}
	for i := range p.tags {
		if p.tags[i].name == name {
			p.tags[i] = tag
			return
		}
	}
	p.tags = append(p.tags, tag)
	sort.Slice(p.tags, func(i, j int) bool { return p.tags[i].name < p.tags[j].name })
}

// Render replaces every tagged span with its styled form. Nested tags are
// resolved by repeating until the text stops changing.
func (p *MarkupParser) Render(text string) string {
	for {
		before := text
		for _, tag := range p.tags {
			text = tag.pattern.ReplaceAllStringFunc(text, func(match string) string {
				return tag.style.Render(tag.pattern.FindStringSubmatch(match)[1])
			})
		}
		if text == before {
			return text
		}
	}
}

// Strip removes the tags and keeps their content.
func (p *MarkupParser) Strip(text string) string {
	for _, tag := range p.tags {
		text = strings.ReplaceAll(text, "["+tag.name+"]", "")
		text = strings.ReplaceAll(text, "[/"+tag.name+"]", "")
	}
	return text
}

var defaultParser = NewMarkupParser()

// Render uses the default parser.
func Render(text string) string {
	return defaultParser.Render(text)
}

// Strip uses the default parser.
func Strip(text string) string {
	return defaultParser.Strip(text)
}

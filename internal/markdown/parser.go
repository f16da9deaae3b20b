package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

var ErrNoFrontmatter = errors.New("profile has no frontmatter")

// Profile is an animal profile imported from a markdown file. The
// frontmatter holds the fields; the body is the journey story.
type Profile struct {
	Name     string
	Status   string
	Bio      string
	Admitted time.Time
	Story    string
}

type Parser struct {
	md goldmark.Markdown
}

// NewParser builds a renderer for journey stories. Raw HTML in stories is
// dropped (goldmark's default, unsafe mode is off).
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Parser) ParseProfile(source []byte) (*Profile, error) {
	meta, ok := p.extractFrontmatter(source)
	if !ok {
		return nil, ErrNoFrontmatter
	}

	profile := &Profile{
		Story: strings.TrimSpace(string(stripFrontmatter(source))),
	}

	name, ok := meta["name"].(string)
	if ok {
		profile.Name = strings.TrimSpace(name)
	}

	status, ok := meta["status"].(string)
	if ok {
		profile.Status = strings.TrimSpace(status)
	}

	bio, ok := meta["bio"].(string)
	if ok {
		profile.Bio = strings.TrimSpace(bio)
	}

	switch v := meta["admitted"].(type) {
	case time.Time:
		profile.Admitted = v
	case string:
		admitted, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("invalid admitted date %q: %w", v, err)
		}
		profile.Admitted = admitted
	}

	return profile, nil
}

func (p *Parser) extractFrontmatter(source []byte) (map[string]any, bool) {
	context := parser.NewContext()
	p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))

	data := frontmatter.Get(context)
	if data == nil {
		return nil, false
	}

	var meta map[string]any
	err := data.Decode(&meta)
	if err != nil || meta == nil {
		return nil, false
	}
	return meta, true
}

// stripFrontmatter returns the document after its "---" (YAML) or "+++"
// (TOML) block. Documents without one are returned unchanged.
func stripFrontmatter(source []byte) []byte {
	normalized := bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))

	for _, delim := range []string{"---", "+++"} {
		if !bytes.HasPrefix(normalized, []byte(delim+"\n")) {
			continue
		}
		rest := normalized[len(delim)+1:]
		end := bytes.Index(rest, []byte("\n"+delim))
		if end < 0 {
			return normalized
		}
		body := rest[end+1+len(delim):]
		// drop the remainder of the closing delimiter line
		if i := bytes.IndexByte(body, '\n'); i >= 0 {
			return body[i+1:]
		}
		return nil
	}

	return normalized
}

package advice

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var patterns = struct {
	heading1   *regexp.Regexp
	heading2   *regexp.Regexp
	heading3   *regexp.Regexp
	numbered   *regexp.Regexp
	hashPrefix *regexp.Regexp
}{
	heading1:   regexp.MustCompile(`^#\s+\*\*(.+?)\*\*\s*$`),
	heading2:   regexp.MustCompile(`^##\s+\*\*(.+?)\*\*\s*$`),
	heading3:   regexp.MustCompile(`^\*\*(.+?)\*\*:?\s*$`),
	numbered:   regexp.MustCompile(`^\d+\.`),
	hashPrefix: regexp.MustCompile(`^#+\s+`),
}

const byteOrderMark = "\ufeff"

// Parse classifies text line by line and returns the resulting blocks in
// source order. It never fails; empty input yields an empty, non-nil slice.
func Parse(text string) []Block {
	p := &parser{blocks: make([]Block, 0)}
	text = strings.TrimPrefix(text, byteOrderMark)
	if text == "" {
		return p.blocks
	}
	p.lines = strings.Split(text, "\n")
	p.run()
	return p.blocks
}

type parser struct {
	lines  []string
	pos    int
	blocks []Block
}

func (p *parser) run() {
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if isBlank(line) {
			p.pos++
			continue
		}

		if m := patterns.heading1.FindStringSubmatch(line); m != nil {
			p.emit(Heading1(m[1]))
			p.pos++
			continue
		}
		if m := patterns.heading2.FindStringSubmatch(line); m != nil {
			p.emit(Heading2(m[1]))
			p.pos++
			continue
		}
		if m := patterns.heading3.FindStringSubmatch(line); m != nil {
			p.emit(Heading3(m[1]))
			p.pos++
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case isBullet(trimmed):
			p.bulletRun()
		case isNumbered(trimmed):
			p.numberedRun()
		default:
			p.paragraph(trimmed)
			p.pos++
		}
	}
}

// bulletRun consumes bullet lines starting at p.pos. Items ending in a colon
// become sub-headings and split the run into separate lists.
func (p *parser) bulletRun() {
	var items []string
	for {
		trimmed, ok := p.nextRunLine(isBullet)
		if !ok {
			break
		}
		item := bulletItem(trimmed)
		if strings.HasSuffix(item, ":") {
			if len(items) > 0 {
				p.emit(BulletList(items...))
				items = items[:0]
			}
			p.emit(SubHeading(strings.TrimSpace(strings.TrimSuffix(item, ":"))))
			continue
		}
		items = append(items, item)
	}
	if len(items) > 0 {
		p.emit(BulletList(items...))
	}
}

func (p *parser) numberedRun() {
	var items []string
	for {
		trimmed, ok := p.nextRunLine(isNumbered)
		if !ok {
			break
		}
		items = append(items, numberedItem(trimmed))
	}
	if len(items) > 0 {
		p.emit(NumberedList(items...))
	}
}

// nextRunLine looks past blank lines for the next line accepted by match.
// On success it consumes everything up to and including that line. On
// failure p.pos is left untouched so the main loop classifies the line.
func (p *parser) nextRunLine(match func(string) bool) (string, bool) {
	i := p.pos
	for i < len(p.lines) && isBlank(p.lines[i]) {
		i++
	}
	if i >= len(p.lines) {
		return "", false
	}
	trimmed := strings.TrimSpace(p.lines[i])
	if !match(trimmed) {
		return "", false
	}
	p.pos = i + 1
	return trimmed, true
}

func (p *parser) paragraph(trimmed string) {
	text := patterns.hashPrefix.ReplaceAllString(trimmed, "")
	text = StripEmphasis(text)
	if text == "" {
		return
	}
	p.emit(Paragraph(text))
}

func (p *parser) emit(block Block) {
	p.blocks = append(p.blocks, block)
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isBullet(trimmed string) bool {
	return strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "•")
}

func isNumbered(trimmed string) bool {
	return patterns.numbered.MatchString(trimmed)
}

func bulletItem(trimmed string) string {
	_, size := utf8.DecodeRuneInString(trimmed)
	return StripEmphasis(strings.TrimSpace(trimmed[size:]))
}

func numberedItem(trimmed string) string {
	loc := patterns.numbered.FindStringIndex(trimmed)
	if loc == nil {
		return StripEmphasis(trimmed)
	}
	return StripEmphasis(strings.TrimSpace(trimmed[loc[1]:]))
}

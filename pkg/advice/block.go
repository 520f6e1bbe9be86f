package advice

// Kind discriminates the Block variants.
type Kind string

const (
	KindHeading1     Kind = "heading1"
	KindHeading2     Kind = "heading2"
	KindHeading3     Kind = "heading3"
	KindSubHeading   Kind = "subheading"
	KindBulletList   Kind = "bullet_list"
	KindNumberedList Kind = "numbered_list"
	KindParagraph    Kind = "paragraph"
)

// Block is one classified unit of advice text. Headings, sub-headings and
// paragraphs carry Text; lists carry Items. Blocks never contain markup.
type Block struct {
	Kind  Kind     `json:"kind"`
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

func Heading1(text string) Block   { return Block{Kind: KindHeading1, Text: text} }
func Heading2(text string) Block   { return Block{Kind: KindHeading2, Text: text} }
func Heading3(text string) Block   { return Block{Kind: KindHeading3, Text: text} }
func SubHeading(text string) Block { return Block{Kind: KindSubHeading, Text: text} }
func Paragraph(text string) Block  { return Block{Kind: KindParagraph, Text: text} }

// BulletList copies items so callers cannot mutate the block afterwards.
func BulletList(items ...string) Block {
	return Block{Kind: KindBulletList, Items: cloneItems(items)}
}

// NumberedList copies items so callers cannot mutate the block afterwards.
func NumberedList(items ...string) Block {
	return Block{Kind: KindNumberedList, Items: cloneItems(items)}
}

// IsHeading reports whether the block is one of the three heading levels.
func (b Block) IsHeading() bool {
	switch b.Kind {
	case KindHeading1, KindHeading2, KindHeading3:
		return true
	default:
		return false
	}
}

// IsList reports whether the block carries Items.
func (b Block) IsList() bool {
	return b.Kind == KindBulletList || b.Kind == KindNumberedList
}

// Level returns the outline depth: 1-3 for headings, 4 for sub-headings and
// 0 for everything else.
func (b Block) Level() int {
	switch b.Kind {
	case KindHeading1:
		return 1
	case KindHeading2:
		return 2
	case KindHeading3:
		return 3
	case KindSubHeading:
		return 4
	default:
		return 0
	}
}

// Kinds projects a block sequence onto its discriminators.
func Kinds(blocks []Block) []Kind {
	out := make([]Kind, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, block.Kind)
	}
	return out
}

func cloneItems(items []string) []string {
	if items == nil {
		return []string{}
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}

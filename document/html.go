package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML serializes the document. Consecutive list items of the same kind are
// grouped into one list; consecutive quote and code lines are grouped into
// one blockquote or pre element.
func (d *Document) HTML() string {
	return RenderHTML(d.blocks)
}

// RenderHTML serializes blocks the same way Document.HTML does.
func RenderHTML(blocks []Block) string {
	var (
		out       []*html.Node
		group     *html.Node
		groupKind BlockKind
		code      *html.Node
	)
	flush := func() {
		if group != nil {
			out = append(out, group)
		}
		group, code = nil, nil
	}
	open := func(kind BlockKind, n *html.Node) {
		if group != nil && groupKind == kind {
			return
		}
		flush()
		group, groupKind = n, kind
	}

	for _, b := range blocks {
		switch b.Kind {
		case Heading:
			flush()
			out = append(out, withInline(element("h"+strconv.Itoa(normalizeLevel(Heading, b.Level))), b.Cells))
		case BulletList:
			open(b.Kind, element("ul"))
			group.AppendChild(withInline(element("li"), b.Cells))
		case OrderedList:
			open(b.Kind, element("ol"))
			group.AppendChild(withInline(element("li"), b.Cells))
		case TaskList:
			open(b.Kind, element("ul", attr("data-type", "taskList")))
			li := element("li", attr("data-type", "taskItem"), attr("data-checked", strconv.FormatBool(b.Checked)))
			group.AppendChild(withInline(li, b.Cells))
		case Quote:
			open(b.Kind, element("blockquote"))
			group.AppendChild(withInline(element("p"), b.Cells))
		case CodeBlock:
			if group == nil || groupKind != CodeBlock {
				pre := element("pre")
				open(b.Kind, pre)
				code = element("code")
				pre.AppendChild(code)
			} else {
				code.AppendChild(&html.Node{Type: html.TextNode, Data: "\n"})
			}
			if t := b.Text(); t != "" {
				code.AppendChild(&html.Node{Type: html.TextNode, Data: t})
			}
		case Divider:
			flush()
			out = append(out, element("hr"))
		default:
			flush()
			out = append(out, withInline(element("p"), b.Cells))
		}
	}
	flush()

	var sb strings.Builder
	for _, n := range out {
		_ = html.Render(&sb, n)
	}
	return sb.String()
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

var markTags = []struct {
	mark Mark
	tag  string
}{
	{MarkBold, "strong"},
	{MarkItalic, "em"},
	{MarkStrike, "s"},
	{MarkUnderline, "u"},
	{MarkCode, "code"},
}

// withInline appends runs of equally formatted cells to parent. Links wrap
// the formatting elements.
func withInline(parent *html.Node, cells []Cell) *html.Node {
	for start := 0; start < len(cells); {
		end := start + 1
		for end < len(cells) && cells[end].Marks == cells[start].Marks && cells[end].Href == cells[start].Href {
			end++
		}

		outer := parent
		if href := cells[start].Href; href != "" {
			a := element("a", attr("href", href))
			outer.AppendChild(a)
			outer = a
		}
		for _, mt := range markTags {
			if cells[start].Marks.Has(mt.mark) {
				el := element(mt.tag)
				outer.AppendChild(el)
				outer = el
			}
		}
		outer.AppendChild(&html.Node{Type: html.TextNode, Data: cellsText(cells[start:end])})
		start = end
	}
	return parent
}

// FromHTML parses HTML produced by HTML (or a compatible rich-text editor)
// into a document. Unknown elements are unwrapped.
func FromHTML(s string, opt Options) (*Document, error) {
	blocks, err := ParseHTML(s)
	if err != nil {
		return nil, err
	}
	return newFromBlocks(blocks, opt), nil
}

// ParseHTML parses an HTML fragment into blocks.
func ParseHTML(s string) ([]Block, error) {
	gd, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var blocks []Block
	gd.Find("body").Contents().Each(func(_ int, sel *goquery.Selection) {
		blocks = appendBlocks(blocks, sel)
	})
	return blocks, nil
}

func appendBlocks(blocks []Block, sel *goquery.Selection) []Block {
	if len(sel.Nodes) == 0 {
		return blocks
	}
	n := sel.Nodes[0]
	if n.Type == html.TextNode {
		text := collapseSpace(n.Data)
		if strings.TrimSpace(text) == "" {
			return blocks
		}
		return append(blocks, Block{Kind: Paragraph, Cells: makeCells(strings.TrimSpace(text), 0, "")})
	}
	if n.Type != html.ElementNode {
		return blocks
	}

	switch tag := goquery.NodeName(sel); tag {
	case "p":
		return append(blocks, Block{Kind: Paragraph, Cells: trimCells(inlineCells(n, 0, "", nil))})
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(tag[1:])
		return append(blocks, Block{
			Kind:  Heading,
			Level: normalizeLevel(Heading, level),
			Cells: trimCells(inlineCells(n, 0, "", nil)),
		})
	case "ul", "ol":
		return appendListItems(blocks, sel, tag)
	case "blockquote":
		paras := sel.ChildrenFiltered("p")
		if paras.Length() == 0 {
			return append(blocks, Block{Kind: Quote, Cells: trimCells(inlineCells(n, 0, "", nil))})
		}
		paras.Each(func(_ int, p *goquery.Selection) {
			blocks = append(blocks, Block{Kind: Quote, Cells: trimCells(inlineCells(p.Nodes[0], 0, "", nil))})
		})
		return blocks
	case "pre":
		text := strings.TrimSuffix(sel.Text(), "\n")
		for _, line := range strings.Split(text, "\n") {
			blocks = append(blocks, Block{Kind: CodeBlock, Cells: makeCells(line, 0, "")})
		}
		return blocks
	case "hr":
		return append(blocks, Block{Kind: Divider})
	default:
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			blocks = appendBlocks(blocks, child)
		})
		return blocks
	}
}

func appendListItems(blocks []Block, list *goquery.Selection, tag string) []Block {
	kind := BulletList
	if tag == "ol" {
		kind = OrderedList
	}
	if t, _ := list.Attr("data-type"); t == "taskList" {
		kind = TaskList
	}

	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		b := Block{Kind: kind, Cells: trimCells(inlineCells(li.Nodes[0], 0, "", nil))}
		if checked, ok := li.Attr("data-checked"); ok {
			b.Kind = TaskList
			b.Checked = checked == "true"
		}
		blocks = append(blocks, b)
		li.ChildrenFiltered("ul, ol").Each(func(_ int, nested *goquery.Selection) {
			blocks = appendListItems(blocks, nested, goquery.NodeName(nested))
		})
	})
	return blocks
}

func inlineCells(n *html.Node, marks Mark, href string, out []Cell) []Cell {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			out = append(out, makeCells(collapseSpace(c.Data), marks, href)...)
		case html.ElementNode:
			switch c.Data {
			case "strong", "b":
				out = inlineCells(c, marks|MarkBold, href, out)
			case "em", "i":
				out = inlineCells(c, marks|MarkItalic, href, out)
			case "s", "del", "strike":
				out = inlineCells(c, marks|MarkStrike, href, out)
			case "u":
				out = inlineCells(c, marks|MarkUnderline, href, out)
			case "code":
				out = inlineCells(c, marks|MarkCode, href, out)
			case "a":
				link := href
				for _, a := range c.Attr {
					if a.Key == "href" {
						link = a.Val
					}
				}
				out = inlineCells(c, marks, link, out)
			case "br":
				out = append(out, Cell{Text: " ", Marks: marks, Href: href})
			case "ul", "ol":
			default:
				out = inlineCells(c, marks, href, out)
			}
		}
	}
	return out
}

// collapseSpace folds HTML whitespace runs into single spaces.
func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\n', '\t', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

func trimCells(cells []Cell) []Cell {
	for len(cells) > 0 && cells[0].Text == " " {
		cells = cells[1:]
	}
	for len(cells) > 0 && cells[len(cells)-1].Text == " " {
		cells = cells[:len(cells)-1]
	}
	return cells
}

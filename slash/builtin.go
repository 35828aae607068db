package slash

import "github.com/iw2rmb/quill/document"

// Builtin returns the default block commands in palette order.
func Builtin() []Command {
	return []Command{
		blockCommand("text", "Text", "¶", document.Paragraph, 0, "paragraph", "body", "p"),
		blockCommand("heading1", "Heading", "H1", document.Heading, 1, "h1", "big", "large"),
		blockCommand("heading2", "Subheading", "H2", document.Heading, 2, "h2", "medium", "subtitle"),
		blockCommand("heading3", "Small Title", "H3", document.Heading, 3, "h3", "small", "title"),
		blockCommand("task_list", "To-do List", "☐", document.TaskList, 0, "todo", "task", "checkbox"),
		blockCommand("bullet_list", "Bullet List", "•", document.BulletList, 0, "unordered", "ul", "point"),
		blockCommand("ordered_list", "Numbered List", "1.", document.OrderedList, 0, "ordered", "ol", "number"),
		blockCommand("quote", "Quote", "❝", document.Quote, 0, "blockquote", "citation"),
		blockCommand("code_block", "Code", "<>", document.CodeBlock, 0, "codeblock", "snippet", "pre"),
		blockCommand("divider", "Divider", "──", document.Divider, 0, "hr", "rule", "separator", "line"),
		{
			ID:       "clear_formatting",
			Label:    "Clear Formatting",
			Keywords: []string{"clear", "reset", "unformat", "strip"},
			Icon:     "⌫",
			Execute: func(ctx *Context) error {
				return ctx.Doc.ClearFormatting(ctx.Trigger.Block)
			},
		},
	}
}

// ContinueWriting returns the AI command. It emits a GenerateRequest at the
// trigger position; the host owns the generation.
func ContinueWriting(prompt string) Command {
	return Command{
		ID:       "continue_writing",
		Label:    "Continue Writing",
		Keywords: []string{"ai", "generate", "complete", "write"},
		Icon:     "✦",
		Execute: func(ctx *Context) error {
			ctx.Emit(GenerateRequest{At: ctx.Trigger, Prompt: prompt})
			return nil
		},
	}
}

func blockCommand(id, label, icon string, kind document.BlockKind, level int, keywords ...string) Command {
	return Command{
		ID:       id,
		Label:    label,
		Keywords: keywords,
		Icon:     icon,
		Execute: func(ctx *Context) error {
			return ctx.Doc.SetBlockType(ctx.Trigger.Block, kind, level)
		},
	}
}

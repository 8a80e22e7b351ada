package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a range of text in a source code. It is typically used for
// errors that can be associated with a part of the source code, like parse
// errors and a traceback entry.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

// Position returns the position of the start of the range. It returns the
// zero Position if the range is unknown or invalid.
func (c *Context) Position() Position {
	if c.checkPosition() != nil {
		return Position{}
	}
	return PositionOf(c.Source, c.From)
}

// PositionOf returns the position of the byte offset i within source.
func PositionOf(source string, i int) Position {
	before := source[:i]
	line := strings.Count(before, "\n") + 1
	col := utf8.RuneCountInString(before[strings.LastIndexByte(before, '\n')+1:]) + 1
	return Position{line, col}
}

// Describe returns a short description of the location, like "name:1:6".
func (c *Context) Describe() string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.Name + ":" + c.Position().String()
}

// Show shows the context on two lines: a header with the line range, and the
// relevant source.
func (c *Context) Show(sourceIndent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.Name + ", " + c.lineRange() + "\n" + sourceIndent + c.relevantSource(sourceIndent)
}

// ShowCompact shows the context with no line break between the position and
// the relevant source.
func (c *Context) ShowCompact(sourceIndent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.Describe() + ": "
	descIndent := strings.Repeat(" ", utf8.RuneCountInString(desc))
	return desc + c.relevantSource(sourceIndent+descIndent)
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func (c *Context) culprit() string {
	culprit := c.Source[c.From:c.To]
	return strings.TrimSuffix(culprit, "\n")
}

func (c *Context) lineRange() string {
	begin := strings.Count(c.Source[:c.From], "\n") + 1
	end := begin + strings.Count(c.culprit(), "\n")
	if begin == end {
		return fmt.Sprintf("line %d:", begin)
	}
	return fmt.Sprintf("line %d-%d:", begin, end)
}

func (c *Context) relevantSource(sourceIndent string) string {
	before := c.Source[:c.From]
	head := before[strings.LastIndexByte(before, '\n')+1:]
	culprit := c.culprit()
	var tail string
	if !strings.HasSuffix(c.Source[c.From:c.To], "\n") {
		tail = firstLine(c.Source[c.To:])
	}

	var sb strings.Builder
	sb.WriteString(head)
	if culprit == "" {
		culprit = culpritPlaceHolder
	}
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(sourceIndent)
		}
		sb.WriteString(culpritStart + line + culpritEnd)
	}
	sb.WriteString(tail)
	return sb.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

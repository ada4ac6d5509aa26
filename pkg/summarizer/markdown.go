package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Decode Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))

	f.section(&b, t("Input"), [][2]string{
		{t("Path"), s.Input.Path},
		{t("Size"), formatBytes(s.Input.Size)},
		{t("Container"), f.yesNo(s.Input.Container)},
		{t("Chunks"), fmt.Sprintf("%d × %s", s.Input.Chunks, formatBytes(int64(s.Input.ChunkSize)))},
	})

	depth := fmt.Sprintf("%d", s.Image.BitsPerSample)
	if s.Image.Float {
		depth += " (float)"
	}
	f.section(&b, t("Image"), [][2]string{
		{t("Dimensions"), fmt.Sprintf("%dx%d", s.Image.Width, s.Image.Height)},
		{t("Bits per Sample"), depth},
		{t("Channels"), fmt.Sprintf("%d + %d", s.Image.ColorChannels, s.Image.ExtraChannels)},
		{t("Orientation"), fmt.Sprintf("%d", s.Image.Orientation)},
		{t("Color Space"), s.Image.ColorSpace},
		{t("Transfer Function"), s.Image.Transfer},
	})

	rows := [][2]string{
		{t("Groups"), fmt.Sprintf("%d (%d px)", s.Decode.Groups, s.Decode.GroupDim)},
		{t("Workers"), fmt.Sprintf("%d", s.Decode.Workers)},
		{t("Pixel Format"), s.Decode.PixelFormat},
		{t("Duration"), fmt.Sprintf("%d ms", s.Decode.DurationMs)},
	}
	if len(s.Decode.Events) > 0 {
		rows = append(rows, [2]string{t("Events"), strings.Join(s.Decode.Events, " → ")})
	}
	f.section(&b, t("Decoding"), rows)

	if s.Output.Path != "" {
		f.section(&b, t("Output"), [][2]string{
			{t("Path"), s.Output.Path},
			{t("Format"), s.Output.Format},
			{t("Dimensions"), fmt.Sprintf("%dx%d", s.Output.Width, s.Output.Height)},
			{t("File Size"), formatBytes(s.Output.FileSize)},
		})
	}

	b.WriteString("---\n\n")
	if f.version != "" {
		fmt.Fprintf(&b, "%s jxlstream %s\n", t("Generated by"), f.version)
	} else {
		fmt.Fprintf(&b, "%s jxlstream\n", t("Generated by"))
	}
	return b.String()
}

func (f *MarkdownFormatter) section(b *strings.Builder, title string, rows [][2]string) {
	fmt.Fprintf(b, "## %s\n\n", title)
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", f.translate("Item"), f.translate("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], r[1])
	}
	b.WriteString("\n")
}

func (f *MarkdownFormatter) yesNo(v bool) string {
	if v {
		return f.translate("Yes")
	}
	return f.translate("No")
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

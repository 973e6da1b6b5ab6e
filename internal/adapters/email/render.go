package email

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderMarkdown converts a markdown document to HTML. Raw HTML in the
// source is not passed through.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// ReminderEmail builds the daily meal reminder for one recipient.
// missing lists the unset slots of today, e.g. ["lunch", "dinner"].
// PRE: to is a valid address; missing is non-empty
// POST: the request carries matching text and HTML bodies
func ReminderEmail(to, name, date, appURL string, missing []string) (Message, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Don't forget to set today's meals (**%s**).\n\n", date)
	b.WriteString("Still unset:\n\n")
	for _, m := range missing {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	fmt.Fprintf(&b, "\n[Open MyDayLog](%s)\n", appURL)

	text := b.String()
	body, err := RenderMarkdown(text)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{to},
		Subject:  "Don't forget to set today's meals",
		HTML:     body,
		Text:     text,
		Category: "meal_reminder",
	}, nil
}

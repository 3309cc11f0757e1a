// Package utils holds small markdown formatting helpers for notification
// text.
package utils

func H2(text string) string {
	return "## " + text
}

func H3(text string) string {
	return "### " + text
}

func Bold(text string) string {
	return "**" + text + "**"
}

func Italic(text string) string {
	return "_" + text + "_"
}

func InlineCode(text string) string {
	return "`" + text + "`"
}

func Bullet(text string) string {
	return "- " + text
}

func Link(text, url string) string {
	return "[" + text + "](" + url + ")"
}

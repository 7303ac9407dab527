package render

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Markdown converts a rendered HTML fragment to Markdown.
func Markdown(html string) (string, error) {
	return htmltomarkdown.ConvertString(html)
}

// Package parser turns raw document bodies into plain text for the
// summarizer. The Federal Register serves full text as XHTML, so the
// extraction chain is trafilatura first, readability as fallback, GoOse
// as a last resort. Plain-text bodies pass through untouched.
package parser

import (
	"errors"
	"strings"

	"github.com/advancedlogic/GoOse/pkg/goose"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var ErrEmptyDocument = errors.New("parser: document yielded no text")

// ExtractPlainText returns the readable text of a raw document body.
func ExtractPlainText(raw string, contentType string) (string, error) {
	if !isHTML(raw, contentType) {
		text := strings.TrimSpace(raw)
		if text == "" {
			return "", ErrEmptyDocument
		}
		return text, nil
	}

	if text, err := extractWithTrafilatura(raw); err == nil && text != "" {
		return text, nil
	}
	if text, err := extractWithReadability(raw); err == nil && text != "" {
		return text, nil
	}
	if text, err := extractWithGoose(raw); err == nil && text != "" {
		return text, nil
	}
	return "", ErrEmptyDocument
}

func isHTML(raw string, contentType string) bool {
	if strings.Contains(contentType, "html") || strings.Contains(contentType, "xml") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(raw))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

func extractWithTrafilatura(htmlStr string) (string, error) {
	result, err := trafilatura.Extract(strings.NewReader(htmlStr), trafilatura.Options{})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.ContentText), nil
}

func extractWithReadability(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.TextContent), nil
}

func extractWithGoose(htmlStr string) (string, error) {
	g := goose.New()
	article, err := g.ExtractFromRawHTML(htmlStr, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.CleanedText), nil
}

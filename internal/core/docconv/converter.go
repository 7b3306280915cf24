// Package docconv adapts the document conversion service: raw document
// bytes in, ordered page-aware text blocks out.
package docconv

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sajari "code.sajari.com/docconv"

	"github.com/mediora-ai/mediora/internal/core"
	"github.com/mediora-ai/mediora/internal/tokens"
)

// Converter implements core.DocumentConverter using sajari/docconv.
type Converter struct {
	targetTokens   int
	useReadability bool
	counter        tokens.Counter
}

var _ core.DocumentConverter = (*Converter)(nil)

func NewConverter(targetTokens int, useReadability bool, counter tokens.Counter) *Converter {
	if targetTokens <= 0 {
		targetTokens = 500
	}
	if counter == nil {
		counter = tokens.ApproxCounter
	}
	return &Converter{targetTokens: targetTokens, useReadability: useReadability, counter: counter}
}

// ConvertAndChunk extracts text and groups it into token-bounded blocks.
// Page numbers come from the form-feed separators the converter emits
// between pages; formats without page structure yield blocks on page 1.
func (c *Converter) ConvertAndChunk(ctx context.Context, doc []byte, contentType string) ([]core.DocumentBlock, error) {
	res, err := sajari.Convert(bytes.NewReader(doc), contentType, c.useReadability)
	if err != nil {
		return nil, core.Terminal(fmt.Errorf("docconv: conversion failed for %q: %w", contentType, err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []core.DocumentBlock
	for pageIdx, pageText := range strings.Split(res.Body, "\f") {
		page := pageIdx + 1
		out = append(out, c.chunkPage(pageText, page)...)
	}
	return out, nil
}

// chunkPage groups a page's non-empty lines into blocks of roughly
// targetTokens each, preserving document order.
func (c *Converter) chunkPage(text string, page int) []core.DocumentBlock {
	var (
		out    []core.DocumentBlock
		buf    []string
		tokSum int
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		out = append(out, core.DocumentBlock{
			Text:  strings.Join(buf, "\n"),
			Pages: []int{page},
		})
		buf = buf[:0]
		tokSum = 0
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		buf = append(buf, line)
		tokSum += c.counter(line)
		if tokSum >= c.targetTokens {
			flush()
		}
	}
	flush()
	return out
}

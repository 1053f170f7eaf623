package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestFirstText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<a href="/x">report.pdf<span class="color999">(2.1M)</span></a>`,
	))
	require.NoError(t, err)

	anchor := doc.Find("a").Nodes[0]
	require.Equal(t, "report.pdf", FirstText(anchor))
	require.Equal(t, "report.pdf(2.1M)", GetText(anchor))
}

func TestFirstTextNoTextChild(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<a href="/x"><span>wrapped</span></a>`,
	))
	require.NoError(t, err)

	require.Equal(t, "", FirstText(doc.Find("a").Nodes[0]))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "Zhang San", CleanText("  Zhang \n\t San "))
}

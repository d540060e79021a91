package dom

import (
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Markdown converts the subtree rooted at n to Markdown. Document nodes are
// converted whole. For any other node only its children are converted,
// which suits the <div> roots returned by ParseFragment.
func Markdown(n *html.Node) (string, error) {
	src := InnerHTML(n)
	if n.Type == html.DocumentNode {
		src = OuterHTML(n)
	}
	md, err := mdConverter.ConvertString(src)
	if err != nil {
		return "", fmt.Errorf("dom: markdown: %w", err)
	}
	return md, nil
}

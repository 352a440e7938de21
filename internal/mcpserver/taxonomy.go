package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/scholarsync/internal/classifier"
)

// TaxonomyDoc renders the classifier rules as Markdown. Earlier rules win
// when an email matches more than one category.
func TaxonomyDoc(t *classifier.Taxonomy) string {
	var sb strings.Builder
	sb.WriteString("# ScholarSync Alert Taxonomy\n\n")
	sb.WriteString("Subject and body are joined and lowercased; the first rule with a matching phrase wins.\n\n")
	for i, r := range t.Rules() {
		fmt.Fprintf(&sb, "%d. **%s** (%s, urgency %s): ", i+1,
			classifier.TitleFor(r.Category), r.Category, classifier.UrgencyFor(r.Category))
		quoted := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			quoted[j] = "`" + kw + "`"
		}
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s *Server) readTaxonomyResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      taxonomyURI,
			MIMEType: "text/markdown",
			Text:     TaxonomyDoc(classifier.DefaultTaxonomy()),
		},
	}, nil
}

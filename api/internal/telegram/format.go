package telegram

import (
	"fmt"
	"strings"

	"agribazaar/api/internal/cart"
	"agribazaar/api/internal/catalog"
	"agribazaar/api/internal/diagnosis"
	"agribazaar/api/internal/util"
)

const (
	noMatchesText   = "No matching products found."
	noDiagnosisText = "No diagnosis found."
	failureText     = "Error during diagnosis."
	maxMessageLen   = 3900
)

func formatCatalog(st browseState, products []catalog.Product) string {
	var b strings.Builder
	b.WriteString("🌾 ")
	b.WriteString(st.Category.Title())
	if st.Term != "" {
		fmt.Fprintf(&b, " · search: %q", st.Term)
	}
	b.WriteString("\n\n")
	if len(products) == 0 {
		b.WriteString(noMatchesText)
		return b.String()
	}
	for _, p := range products {
		fmt.Fprintf(&b, "• %s (%s) %s\n", p.Name, p.Category, p.Price)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCart(c cart.Cart) string {
	if c.Len() == 0 {
		return "🧺 Your cart is empty."
	}
	var b strings.Builder
	b.WriteString("🧺 Your cart\n\n")
	for _, l := range c.Lines() {
		fmt.Fprintf(&b, "%s × %d = %s\n", l.Name, l.Quantity, catalog.FormatPrice(l.UnitPrice*l.Quantity))
	}
	fmt.Fprintf(&b, "\nTotal: %s (%d items)", catalog.FormatPrice(c.Total()), c.Count())
	return b.String()
}

// formatDiagnosis — карточка результата. Таксономия печатается только
// для присутствующих рангов.
func formatDiagnosis(r diagnosis.Result) string {
	switch r.Kind {
	case diagnosis.KindNotFound:
		return noDiagnosisText
	case diagnosis.KindFailure:
		return failureText
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌿 %s\n", r.Name)
	fmt.Fprintf(&b, "Common names: %s\n", r.CommonNames)
	fmt.Fprintf(&b, "Confidence: %s\n", r.ConfidencePercent)
	if v, ok := r.Taxonomy.Family(); ok {
		fmt.Fprintf(&b, "Family: %s\n", v)
	}
	if v, ok := r.Taxonomy.Genus(); ok {
		fmt.Fprintf(&b, "Genus: %s\n", v)
	}
	if v, ok := r.Taxonomy.Order(); ok {
		fmt.Fprintf(&b, "Order: %s\n", v)
	}
	b.WriteString("\n")
	b.WriteString(r.Description)
	return util.Truncate(b.String(), maxMessageLen)
}

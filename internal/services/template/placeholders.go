package template

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
)

type Placeholder struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

var orderPlaceholders = []Placeholder{
	{"{store_name}", "Store name"},
	{"{store_url}", "Store URL"},
	{"{order_id}", "Order number"},
	{"{date_added}", "Order date (dd-mm-yyyy hh:mm)"},
	{"{payment_method}", "Payment method"},
	{"{payment_code}", "Payment method code"},
	{"{email}", "Customer e-mail"},
	{"{telephone}", "Customer phone"},
	{"{firstname}", "Customer first name"},
	{"{lastname}", "Customer last name"},
	{"{total}", "Order total"},
	{"{products_ids}", "Comma separated order item IDs"},
	{"{products_names}", "Comma separated product names"},
	{"{products_names_prices}", "Comma separated product names with prices"},
}

var customerPlaceholders = []Placeholder{
	{"{store_name}", "Store name"},
	{"{store_url}", "Store URL"},
	{"{customer_id}", "Customer ID"},
	{"{email}", "Customer e-mail"},
	{"{firstname}", "Customer first name"},
	{"{lastname}", "Customer last name"},
	{"{telephone}", "Customer phone"},
}

func OrderPlaceholders() []Placeholder {
	return append([]Placeholder(nil), orderPlaceholders...)
}

func CustomerPlaceholders() []Placeholder {
	return append([]Placeholder(nil), customerPlaceholders...)
}

// HelpMarkdown renders placeholders as a markdown bullet list.
func HelpMarkdown(title string, list []Placeholder) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("**" + title + "**\n\n")
	}
	for _, p := range list {
		b.WriteString("- `" + p.Tag + "` " + p.Description + "\n")
	}
	return b.String()
}

// HelpHTML renders the placeholder list to HTML for the settings screens.
func HelpHTML(title string, list []Placeholder) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(HelpMarkdown(title, list)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

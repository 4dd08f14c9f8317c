package ai

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a helpful assistant for a used-book marketplace.
Answer the buyer's question about the listed book concisely, using only the listing data below.
If the listing does not contain the answer, say so and suggest asking the seller in chat.
If the question is unrelated to the book, politely guide the buyer back to the listing.`

type BookFacts struct {
	Name        string
	Description string
	Edition     string
	Publisher   string
	Category    string
	Price       float64
	MRP         float64
}

func listingPrompt(b BookFacts) string {
	var sb strings.Builder
	sb.WriteString("Listing:\n")
	fmt.Fprintf(&sb, "Title: %s\n", b.Name)
	if b.Edition != "" {
		fmt.Fprintf(&sb, "Edition: %s\n", b.Edition)
	}
	if b.Publisher != "" {
		fmt.Fprintf(&sb, "Publisher: %s\n", b.Publisher)
	}
	fmt.Fprintf(&sb, "Category: %s\n", b.Category)
	fmt.Fprintf(&sb, "Price: %.2f\n", b.Price)
	if b.MRP > 0 {
		fmt.Fprintf(&sb, "List price: %.2f\n", b.MRP)
	}
	fmt.Fprintf(&sb, "Description: %s", strings.TrimSpace(b.Description))
	return sb.String()
}

func questionPrompt(q string) string {
	return "Question: " + strings.TrimSpace(q)
}

// Package catalog holds the built-in research topics, question templates and
// the quick-test script.
package catalog

import (
	"strings"

	"github.com/hpungsan/panelist/internal/errors"
)

// Topic is a named research topic with its question set.
type Topic struct {
	Name      string   `json:"name"`
	Questions []string `json:"questions"`
}

// Template is a reusable question set for a common research scenario.
type Template struct {
	Key       string   `json:"key"`
	Questions []string `json:"questions"`
}

// Quick test script.
const QuickTestTopic = "Quick Test"

var quickTestQuestions = []string{
	"What's your favorite type of product to buy?",
	"How do you make purchasing decisions?",
	"What influences your brand choices?",
}

// Topic names used when the question set does not come from a fixed topic.
const (
	TemplateTopic = "Template-Based Research"
	CustomTopic   = "Custom Research"
)

// MaxCustomQuestions caps interactive question entry.
const MaxCustomQuestions = 15

var topics = []Topic{
	{
		Name: "Product Concept Testing",
		Questions: []string{
			"Can you tell me about your typical morning routine and what products you use?",
			"What factors are most important to you when choosing products in this category?",
			"How do you typically discover new products in this category?",
			"What would make you switch from your current brand to a new one?",
			"If I showed you a product with innovative features, what would be your initial reaction?",
			"What concerns, if any, would you have about trying a completely new product?",
			"How much research do you typically do before making a purchase decision?",
			"Where would you expect to find and purchase products like this?",
			"Who else influences your purchase decisions in this category?",
			"What would convince you that a new product is worth trying?",
		},
	},
	{
		Name: "Technology Products",
		Questions: []string{
			"How do you typically discover new technology products?",
			"What features matter most when choosing tech devices?",
			"How important is brand reputation in your tech purchases?",
			"What's your experience with early adoption vs waiting for reviews?",
			"How do you evaluate the value proposition of new tech products?",
			"What role do online reviews play in your tech purchasing decisions?",
		},
	},
	{
		Name: "Food & Beverage",
		Questions: []string{
			"Describe your typical grocery shopping process.",
			"What influences your food purchasing decisions?",
			"How do you discover new food products or brands?",
			"What role does health information play in your choices?",
			"How important are ingredients lists when making food purchases?",
			"What factors make you willing to pay more for food products?",
		},
	},
	{
		Name: "Service Experience",
		Questions: []string{
			"What makes a great customer service experience?",
			"How do you typically research service providers?",
			"What factors determine if you'll recommend a service?",
			"Describe a recent positive service interaction.",
			"How do you handle service disappointments or complaints?",
			"What communication channels do you prefer for service interactions?",
		},
	},
	{
		Name: "Brand Perception",
		Questions: []string{
			"What comes to mind when you hear about [brand name]?",
			"How would you describe this brand's personality?",
			"What sets this brand apart from its competitors?",
			"How does this brand's pricing compare to others in the category?",
			"Would you recommend this brand to friends or family? Why?",
			"What would improve your perception of this brand?",
		},
	},
}

var templates = []Template{
	{
		Key: "brand_awareness",
		Questions: []string{
			"What brands come to mind when you think of [category]?",
			"How did you first hear about [brand]?",
			"What's your overall impression of [brand]?",
			"How does [brand] compare to competitors?",
			"What words would you use to describe [brand]?",
		},
	},
	{
		Key: "purchase_journey",
		Questions: []string{
			"Walk me through your last purchase in this category.",
			"What triggered your need for this product/service?",
			"Where did you research before buying?",
			"What factors influenced your final decision?",
			"How satisfied were you with the purchase process?",
		},
	},
	{
		Key: "user_experience",
		Questions: []string{
			"Describe your typical interaction with [product/service].",
			"What works well in your current experience?",
			"What frustrations do you encounter?",
			"How could the experience be improved?",
			"How often do you use this product/service?",
		},
	},
	{
		Key: "pricing_sensitivity",
		Questions: []string{
			"How important is price in your decision-making process?",
			"What price range would you consider reasonable for this product?",
			"What would justify paying a premium price?",
			"How do you typically compare prices before purchasing?",
			"What payment methods do you prefer?",
		},
	},
}

// Topics returns the fixed research topics in menu order. Callers get copies.
func Topics() []Topic {
	out := make([]Topic, len(topics))
	for i, t := range topics {
		out[i] = Topic{Name: t.Name, Questions: append([]string(nil), t.Questions...)}
	}
	return out
}

// Templates returns the question templates in menu order. Callers get copies.
func Templates() []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		out[i] = Template{Key: t.Key, Questions: append([]string(nil), t.Questions...)}
	}
	return out
}

// QuickTestQuestions returns the three quick-test questions.
func QuickTestQuestions() []string {
	return append([]string(nil), quickTestQuestions...)
}

// TopicQuestions looks up a fixed topic by name, case-insensitively.
func TopicQuestions(name string) ([]string, error) {
	for _, t := range topics {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return append([]string(nil), t.Questions...), nil
		}
	}
	return nil, errors.NewNotFoundKind("topic", name)
}

// TemplateQuestions looks up a template by key.
func TemplateQuestions(key string) ([]string, error) {
	for _, t := range templates {
		if t.Key == key {
			return append([]string(nil), t.Questions...), nil
		}
	}
	return nil, errors.NewNotFoundKind("template", key)
}

// TemplateTitle renders a template key for menus: "brand_awareness" → "Brand Awareness".
func TemplateTitle(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

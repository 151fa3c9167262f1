package widgets

import (
	"log"

	"offerpress/models"
)

// builtinDefinitions are the widget types every deployment ships with.
// Register upserts by type key, so re-running the seed updates rather than
// duplicates.
var builtinDefinitions = []models.WidgetDefinition{
	{
		TypeKey:       TypeTestimonial,
		Name:          "Testimonial",
		Description:   "A customer quote with author, avatar and star rating",
		DefaultConfig: `{"type":"testimonial","author":"A happy customer","quote":"This changed everything for me.","rating":5}`,
		Active:        true,
		Global:        true,
	},
	{
		TypeKey:       TypeCountdown,
		Name:          "Countdown Timer",
		Description:   "Counts down to an offer deadline",
		DefaultConfig: `{"type":"countdown","headline":"Offer ends soon","deadline":"2030-01-01T00:00:00Z","expired_text":"This offer has ended."}`,
		Active:        true,
		Global:        true,
	},
	{
		TypeKey:       TypeComparisonTable,
		Name:          "Comparison Table",
		Description:   "Side-by-side product comparison",
		DefaultConfig: `{"type":"comparison_table","title":"Compare","columns":["Product","Price"],"rows":[]}`,
		Active:        true,
		Global:        true,
	},
	{
		TypeKey:       TypeCTAButton,
		Name:          "Call To Action",
		Description:   "An outbound offer button, the conversion unit",
		DefaultConfig: `{"type":"cta_button","label":"Get the deal","url":"https://example.com/offer","style":"primary"}`,
		Active:        true,
		Global:        true,
	},
	{
		TypeKey:       TypeEmailCapture,
		Name:          "Email Capture",
		Description:   "Inline signup form feeding the site's subscriber list",
		DefaultConfig: `{"type":"email_capture","headline":"Don't miss the next one","button_label":"Subscribe","placeholder":"Your email address"}`,
		Active:        true,
		Global:        true,
	},
}

// SeedDefinitions registers the built-in widget definitions at startup.
func SeedDefinitions(r *Registry) error {
	for i := range builtinDefinitions {
		def := builtinDefinitions[i]
		if err := r.Register(&def); err != nil {
			log.Printf("Error seeding widget definition %s: %v", def.TypeKey, err)
			return err
		}
	}
	log.Printf("Seeded %d widget definitions", len(builtinDefinitions))
	return nil
}

package widgets

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // allow raw HTML passthrough in Markdown
	),
)

func RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// on error, return the original content rather than break the widget
		return content
	}
	return buf.String()
}

var widgetTemplates = template.Must(template.New("widgets").Parse(`
{{define "testimonial"}}<div class="widget widget-testimonial">
  <blockquote>{{.Quote}}</blockquote>
  <footer>
    {{if .AvatarURL}}<img src="{{.AvatarURL}}" alt="{{.Author}}" class="avatar">{{end}}
    <cite>{{.Author}}</cite>
    {{if .Rating}}<span class="rating">{{.Stars}}</span>{{end}}
  </footer>
</div>{{end}}

{{define "countdown"}}<div class="widget widget-countdown" data-deadline="{{.Deadline}}">
  {{if .Headline}}<h3>{{.Headline}}</h3>{{end}}
  {{if .Expired}}<p class="expired">{{.ExpiredText}}</p>{{else}}<p class="remaining">{{.Remaining}}</p>{{end}}
</div>{{end}}

{{define "comparison_table"}}<div class="widget widget-comparison">
  {{if .Title}}<h3>{{.Title}}</h3>{{end}}
  <table>
    <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
  </table>
</div>{{end}}

{{define "cta_button"}}<div class="widget widget-cta">
  <a class="cta-button cta-{{.Style}}" href="{{.URL}}" data-widget-type="cta_button">{{.Label}}</a>
</div>{{end}}

{{define "email_capture"}}<div class="widget widget-email-capture">
  {{if .Headline}}<h3>{{.Headline}}</h3>{{end}}
  <form method="post" action="/subscribe" class="email-capture-form">
    <input type="email" name="email" placeholder="{{.Placeholder}}" required>
    <button type="submit">{{.ButtonLabel}}</button>
  </form>
  <p class="success-message" hidden>{{.SuccessMessage}}</p>
</div>{{end}}
`))

// renderConfig produces the markup for a validated config variant.
func renderConfig(cfg *Config) (string, error) {
	var buf bytes.Buffer

	switch cfg.Type {
	case TypeTestimonial:
		t := cfg.Testimonial
		stars := ""
		for i := 0; i < t.Rating; i++ {
			stars += "★"
		}
		data := struct {
			Quote     template.HTML
			Author    string
			AvatarURL string
			Rating    int
			Stars     string
		}{
			Quote:     template.HTML(RenderMarkdown(t.Quote)),
			Author:    t.Author,
			AvatarURL: t.AvatarURL,
			Rating:    t.Rating,
			Stars:     stars,
		}
		if err := widgetTemplates.ExecuteTemplate(&buf, "testimonial", data); err != nil {
			return "", err
		}

	case TypeCountdown:
		cd := cfg.Countdown
		deadline, err := time.Parse(time.RFC3339, cd.Deadline)
		if err != nil {
			return "", err
		}
		expired := time.Now().After(deadline)
		expiredText := cd.ExpiredText
		if expiredText == "" {
			expiredText = "This offer has ended."
		}
		data := struct {
			Headline    string
			Deadline    string
			Expired     bool
			ExpiredText string
			Remaining   string
		}{
			Headline:    cd.Headline,
			Deadline:    cd.Deadline,
			Expired:     expired,
			ExpiredText: expiredText,
			Remaining:   formatRemaining(time.Until(deadline)),
		}
		if err := widgetTemplates.ExecuteTemplate(&buf, "countdown", data); err != nil {
			return "", err
		}

	case TypeComparisonTable:
		if err := widgetTemplates.ExecuteTemplate(&buf, "comparison_table", cfg.ComparisonTable); err != nil {
			return "", err
		}

	case TypeCTAButton:
		b := cfg.CTAButton
		style := b.Style
		if style == "" {
			style = "primary"
		}
		data := struct {
			Label string
			URL   string
			Style string
		}{Label: b.Label, URL: b.URL, Style: style}
		if err := widgetTemplates.ExecuteTemplate(&buf, "cta_button", data); err != nil {
			return "", err
		}

	case TypeEmailCapture:
		e := cfg.EmailCapture
		data := *e
		if data.ButtonLabel == "" {
			data.ButtonLabel = "Subscribe"
		}
		if data.Placeholder == "" {
			data.Placeholder = "Your email address"
		}
		if data.SuccessMessage == "" {
			data.SuccessMessage = "You're in! Check your inbox."
		}
		if err := widgetTemplates.ExecuteTemplate(&buf, "email_capture", data); err != nil {
			return "", err
		}

	default:
		return "", fmt.Errorf("no template for widget type %q", cfg.Type)
	}

	return buf.String(), nil
}

func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

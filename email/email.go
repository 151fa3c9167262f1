package email

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/smtp"
	"os"

	"offerpress/common"
	"offerpress/models"
	"offerpress/store"
)

// Mailer sends transactional mail over SMTP, configured from the
// environment. Sending is always best-effort in subscriber flows.
type Mailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewMailer() *Mailer {
	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

func (m *Mailer) SendConfirmationEmail(to, siteName, token string) error {
	if m.host == "" {
		return fmt.Errorf("smtp not configured")
	}

	domain := os.Getenv("DOMAIN")
	if domain == "" {
		domain = "http://localhost:8080"
	}

	confirmLink := fmt.Sprintf("%s/confirm/%s", domain, token)

	subject := fmt.Sprintf("You're subscribed to %s", siteName)
	body := fmt.Sprintf(`Hi!

Thanks for subscribing to %s.

To confirm your address, click the link below:

%s

If you didn't subscribe, just ignore this email.
`, siteName, confirmLink)

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", m.from, to, subject, body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}

// SubscribeResult is what the subscribe endpoint reports to the visitor.
type SubscribeResult struct {
	Subscriber        *models.EmailSubscriber
	AlreadySubscribed bool
	Message           string
}

// Service handles subscriber capture for a site.
type Service struct {
	emails *store.EmailQueries
	sites  *store.SiteQueries
	mailer *Mailer
}

func NewService(emails *store.EmailQueries, sites *store.SiteQueries, mailer *Mailer) *Service {
	return &Service{emails: emails, sites: sites, mailer: mailer}
}

// Subscribe records a signup. Subscribing an address that already exists for
// the site is not an error: the visitor gets the same friendly success and
// no second row is created. Confirmation mail is fire-and-forget.
func (s *Service) Subscribe(siteID int, address string) (*SubscribeResult, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	sub, err := s.emails.Create(siteID, address, token)
	if err != nil {
		if common.IsConflict(err) {
			existing, lookupErr := s.emails.GetBySiteAndEmail(siteID, address)
			if lookupErr != nil {
				existing = nil
			}
			return &SubscribeResult{
				Subscriber:        existing,
				AlreadySubscribed: true,
				Message:           "You're already subscribed!",
			}, nil
		}
		return nil, err
	}

	go func() {
		siteName := "this site"
		if site, err := s.sites.GetByID(siteID); err == nil {
			siteName = site.Name
		}
		if err := s.mailer.SendConfirmationEmail(sub.Email, siteName, token); err != nil {
			log.Printf("Error sending confirmation email to %s: %v", sub.Email, err)
		}
	}()

	return &SubscribeResult{
		Subscriber: sub,
		Message:    "Thanks for subscribing! Check your inbox.",
	}, nil
}

// Unsubscribe flips the subscriber's status; the row stays for suppression.
func (s *Service) Unsubscribe(siteID int, address string) error {
	return s.emails.UpdateStatus(siteID, address, "unsubscribed")
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

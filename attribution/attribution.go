package attribution

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"offerpress/common"
	"offerpress/models"
	"offerpress/store"
)

const (
	sessionKey          = "visitor_session"
	sessionCookieName   = "op_visitor_session"
	sessionCookieMaxAge = 60 * 60 * 24 * 365 * 2 // 2 years

	// fingerprint is a fallback correlation key only; 12 hex chars is
	// plenty for correlation and useless for reversal
	fingerprintLength = 12

	// repeat views from the same session inside this window are not counted
	viewThrottleWindow = 30 * time.Minute
)

// IsExternalURL classifies a link destination against the page's origin.
// Evaluation order matters and is fixed: empty, fragment-only, non-http
// schemes, site-relative paths, then origin comparison. Anything that fails
// to parse is not external (fail-safe: internal clicks are the cheap case).
func IsExternalURL(raw, origin string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "/#") {
		return false
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") {
		return false
	}

	// single leading slash is a site-relative path; double is
	// protocol-relative and falls through to origin comparison
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return false
	}

	base, err := url.Parse(origin)
	if err != nil || base.Host == "" {
		return false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return false
	}

	resolved := base.ResolveReference(ref)
	return resolved.Scheme+"://"+resolved.Host != base.Scheme+"://"+base.Host
}

// Recorder persists click and view events. Recording is non-critical by
// contract: failures are logged and swallowed, and the insert runs on its
// own goroutine so the caller's response is never blocked and its
// cancellation never reaches the write.
type Recorder struct {
	events   *store.AnalyticsQueries
	articles *store.ArticleQueries
	salt     string
}

// NewRecorder requires a fingerprint salt; deployments configure it via the
// FINGERPRINT_SALT env var. An empty salt is refused rather than defaulted.
func NewRecorder(events *store.AnalyticsQueries, articles *store.ArticleQueries, salt string) (*Recorder, error) {
	if salt == "" {
		return nil, errors.New("attribution: fingerprint salt is required")
	}
	return &Recorder{events: events, articles: articles, salt: salt}, nil
}

// SessionID returns the visitor's session identifier, minting one when none
// exists. The value persists for the visitor's session lifetime and is
// reused across clicks and views. The server session is preferred; a plain
// cookie covers requests arriving without the session middleware mounted.
func (r *Recorder) SessionID(c *gin.Context) string {
	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		if v, ok := session.Get(sessionKey).(string); ok && v != "" {
			return v
		}
		sessionID := uuid.NewString()
		session.Set(sessionKey, sessionID)
		if err := session.Save(); err != nil {
			log.Printf("Error saving visitor session: %v", err)
		}
		return sessionID
	}

	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	sessionID := uuid.NewString()
	c.SetCookie(
		sessionCookieName,
		sessionID,
		sessionCookieMaxAge,
		"/",
		"",
		false, // secure - would be true behind HTTPS
		true,  // httpOnly
	)
	return sessionID
}

// Fingerprint derives a privacy-preserving visitor key: a salted one-way
// hash of the originating address, truncated. Never reversible to the
// address; used only as a fallback correlation key.
func (r *Recorder) Fingerprint(ip string) string {
	sum := sha256.Sum256([]byte(r.salt + ip))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}

// ClickInput is what the click endpoint hands the recorder. SessionID and
// IsExternal are optional; missing values are derived server-side.
type ClickInput struct {
	SiteID         int
	ArticleID      *int
	WidgetType     string
	WidgetID       *int
	DestinationURL string
	IsExternal     *bool
	SessionID      string
}

// RecordClick classifies and persists one click event. It never returns an
// error: the caller's primary action must not fail because attribution did.
func (r *Recorder) RecordClick(c *gin.Context, in ClickInput) {
	if r == nil || !r.events.Enabled() {
		return
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = r.SessionID(c)
	}

	isExternal := IsExternalURL(in.DestinationURL, common.RequestOrigin(c))
	if in.IsExternal != nil {
		isExternal = *in.IsExternal
	}

	event := models.ClickEvent{
		SiteID:         in.SiteID,
		ArticleID:      in.ArticleID,
		WidgetType:     in.WidgetType,
		WidgetID:       in.WidgetID,
		DestinationURL: in.DestinationURL,
		IsExternal:     isExternal,
		SessionID:      sessionID,
		Fingerprint:    r.Fingerprint(clientIP(c)),
		CreatedAt:      time.Now(),
	}

	articleID := in.ArticleID

	// detached write: not the request's context, not its lifetime
	go func() {
		if err := r.events.InsertClick(&event); err != nil {
			log.Printf("Error saving click event: %v", err)
		}
		if isExternal && articleID != nil {
			if err := r.articles.IncrementClickCount(*articleID); err != nil {
				log.Printf("Error incrementing click counter: %v", err)
			}
		}
	}()
}

// TrackView records an article view, throttled per session so refreshes do
// not inflate counts. Same fire-and-forget semantics as RecordClick.
func (r *Recorder) TrackView(c *gin.Context, siteID, articleID int) {
	if r == nil || !r.events.Enabled() {
		return
	}

	sessionID := r.SessionID(c)
	if r.events.HasRecentView(sessionID, siteID, articleID, viewThrottleWindow) {
		return
	}

	event := models.ViewEvent{
		SiteID:    siteID,
		ArticleID: articleID,
		HashedIP:  r.Fingerprint(clientIP(c)),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}

	go func() {
		if err := r.events.InsertView(&event); err != nil {
			log.Printf("Error saving view event: %v", err)
		}
		if err := r.articles.IncrementViewCount(articleID); err != nil {
			log.Printf("Error incrementing view counter: %v", err)
		}
	}()
}

// clientIP returns the real client address, considering common proxy headers.
func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For can carry multiple addresses, take the first
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}

	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}

	return c.ClientIP()
}

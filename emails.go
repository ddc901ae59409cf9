package twitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/goware/urlx"
)

// EmailExtractor derives contact addresses from a follower's website.
type EmailExtractor interface {
	Extract(ctx context.Context, website string) []string
}

// NopExtractor never finds anything.
type NopExtractor struct{}

func (NopExtractor) Extract(context.Context, string) []string { return nil }

// SimulatedExtractor is a placeholder that does not look at the website at
// all: with Probability it returns contact@<host> and info@<host>.
type SimulatedExtractor struct {
	// Probability of returning addresses. Default 0.3.
	Probability float64
	// Roll returns a value in [0, 1). Default math/rand/v2.Float64.
	Roll func() float64
}

func (s *SimulatedExtractor) Extract(_ context.Context, website string) []string {
	host := websiteHost(website)
	if host == "" {
		return nil
	}
	p := s.Probability
	if p == 0 {
		p = 0.3
	}
	roll := s.Roll
	if roll == nil {
		roll = rand.Float64
	}
	if roll() >= p {
		return nil
	}
	return []string{"contact@" + host, "info@" + host}
}

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)

// PageExtractor fetches the website and collects mailto: links and addresses
// found in the page text. Hosts resolving to loopback, private or link-local
// addresses are not fetched. Any fetch or parse failure yields no addresses.
type PageExtractor struct {
	// Transport defaults to the client's transport when built through NewClient.
	Transport Doer
	// MaxEmails caps the result. Default 5.
	MaxEmails int
	UserAgent string
	// LookupIP resolves website hosts. Default net.DefaultResolver.
	LookupIP func(ctx context.Context, host string) ([]net.IP, error)
}

// errBlockedHost is returned for websites on loopback, private or link-local addresses.
var errBlockedHost = errors.New("website host is not publicly routable")

func (p *PageExtractor) Extract(ctx context.Context, website string) []string {
	if p.Transport == nil || ctx.Err() != nil {
		return nil
	}
	u, err := urlx.Parse(website)
	if err != nil {
		return nil
	}
	target := u.String()

	if err := p.checkHost(ctx, u.Hostname()); err != nil {
		slog.Debug("website skipped", slog.String("url", target), slog.Any("error", err))
		return nil
	}

	body, _, status, err := p.Transport.DoWithHeaderOrder("GET", target, pageHeaders(p.UserAgent), nil, pageHeaderOrder)
	if err != nil {
		slog.Debug("website fetch failed", slog.String("url", target), slog.Any("error", err))
		return nil
	}
	if status != 200 {
		slog.Debug("website non-200", slog.String("url", target), slog.Int("status", status))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	limit := p.MaxEmails
	if limit <= 0 {
		limit = 5
	}
	var emails []string
	seen := make(map[string]bool)
	add := func(addr string) {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" || seen[addr] || len(emails) >= limit || !emailRe.MatchString(addr) {
			return
		}
		seen[addr] = true
		emails = append(emails, addr)
	}

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if unescaped, err := url.QueryUnescape(addr); err == nil {
			addr = unescaped
		}
		for _, a := range strings.Split(addr, ",") {
			add(a)
		}
	})
	for _, m := range emailRe.FindAllString(doc.Text(), -1) {
		add(m)
	}
	return emails
}

// checkHost rejects hosts with any non-public address.
func (p *PageExtractor) checkHost(ctx context.Context, host string) error {
	if host == "" {
		return errBlockedHost
	}
	ips := []net.IP{net.ParseIP(host)}
	if ips[0] == nil {
		lookup := p.LookupIP
		if lookup == nil {
			lookup = func(ctx context.Context, host string) ([]net.IP, error) {
				return net.DefaultResolver.LookupIP(ctx, "ip", host)
			}
		}
		var err error
		if ips, err = lookup(ctx, host); err != nil {
			return fmt.Errorf("resolve %s: %w", host, err)
		}
		if len(ips) == 0 {
			return fmt.Errorf("resolve %s: no addresses", host)
		}
	}
	for _, ip := range ips {
		if !publicIP(ip) {
			return fmt.Errorf("%w: %s -> %s", errBlockedHost, host, ip)
		}
	}
	return nil
}

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

// websiteHost returns the host of a website URL, tolerating a missing scheme.
func websiteHost(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if u, err := urlx.Parse(website); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	host := website
	if i := strings.Index(host, "//"); i >= 0 {
		host = host[i+2:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return host
}

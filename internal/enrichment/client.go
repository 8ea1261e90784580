package enrichment

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrBlockedAddress reports a fetch aimed at a loopback, private, or
// otherwise non-public address.
var ErrBlockedAddress = errors.New("address not allowed")

const (
	maxRedirects = 5
	dialTimeout  = 5 * time.Second
)

// carrier-grade NAT, not covered by netip's IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// NewClient returns the HTTP client used by the website source. Unless
// allowPrivate is set, every dial, including each redirect hop, is checked
// against the resolved IP so only public unicast addresses are reached.
func NewClient(allowPrivate bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if !allowPrivate {
		dialer := &net.Dialer{Timeout: dialTimeout, Control: publicOnly}
		transport.DialContext = dialer.DialContext
		transport.Proxy = nil
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return fmt.Errorf("%w: redirect to %s", ErrBlockedAddress, req.URL.Scheme)
			}
			return nil
		},
	}
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !PublicAddr(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	return nil
}

// PublicAddr reports whether ip is a globally routable unicast address.
func PublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsGlobalUnicast(),
		ip.IsPrivate(),
		ip.IsLoopback(),
		ip.IsLinkLocalUnicast(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

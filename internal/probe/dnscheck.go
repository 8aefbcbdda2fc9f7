package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

type DNSClass string

const (
	DNSResolves      DNSClass = "RESOLVES"
	DNSNXDomain      DNSClass = "NXDOMAIN"
	DNSNoARecord     DNSClass = "NO_A_RECORD"
	DNSServfail      DNSClass = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName   DNSClass = "INVALID_NAME"
	DNSLiteralIPAddr DNSClass = "IP_LITERAL"
)

// DNSStatus explains why a host name did or did not resolve. It is only
// collected after a probe failed with a dns-error, for the logs.
type DNSStatus struct {
	Host          string
	Class         DNSClass
	Addrs         []string
	CNAME         string
	Nameservers   []string
	ResolverError string
}

type Diagnoser struct {
	Resolver *net.Resolver
	Timeout  time.Duration
}

func NewDiagnoser() *Diagnoser {
	return &Diagnoser{Resolver: net.DefaultResolver, Timeout: 3 * time.Second}
}

func (d *Diagnoser) Diagnose(ctx context.Context, host string) DNSStatus {
	s := DNSStatus{Host: strings.TrimSpace(host)}
	switch {
	case net.ParseIP(s.Host) != nil:
		s.Class = DNSLiteralIPAddr
		s.Addrs = []string{s.Host}
		return s
	case s.Host == "" || strings.ContainsAny(s.Host, "/: "):
		s.Class = DNSInvalidName
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	addrs, err := d.Resolver.LookupHost(ctx, s.Host)
	if err == nil && len(addrs) > 0 {
		s.Addrs = addrs
		s.Class = DNSResolves
	} else if err != nil {
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			switch {
			case de.IsNotFound:
				s.Class = DNSNXDomain
			case de.IsTemporary || de.Timeout():
				s.Class = DNSServfail
			}
		}
	}

	if cname, err := d.Resolver.LookupCNAME(ctx, s.Host); err == nil && !strings.EqualFold(cname, s.Host+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}
	if ns, err := d.Resolver.LookupNS(ctx, s.Host); err == nil {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
	}

	// A zone with nameservers but no address records is a missing record,
	// not a missing domain.
	if s.Class == DNSNXDomain && len(s.Nameservers) > 0 {
		s.Class = DNSNoARecord
	}
	if s.Class == "" {
		switch {
		case len(s.Nameservers) > 0:
			s.Class = DNSNoARecord
		case s.ResolverError != "":
			s.Class = DNSServfail
		default:
			s.Class = DNSNXDomain
		}
	}
	return s
}

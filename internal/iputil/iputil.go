package iputil

import (
	"fmt"
	"net"
	"net/http"
)

// ParseCIDRs parses a list of string representations of IP addresses or CIDR notations.
func ParseCIDRs(cidrStrings []string) ([]*net.IPNet, error) {
	if len(cidrStrings) == 0 {
		return nil, nil
	}

	cidrs := make([]*net.IPNet, 0, len(cidrStrings))
	for _, cidrStr := range cidrStrings {
		// Check if it's a single IP address first
		if ip := net.ParseIP(cidrStr); ip != nil {
			// Convert single IP to CIDR mask (/32 for IPv4, /128 for IPv6)
			var mask net.IPMask
			if ip.To4() != nil {
				mask = net.CIDRMask(32, 32)
			} else {
				mask = net.CIDRMask(128, 128)
			}
			cidrs = append(cidrs, &net.IPNet{IP: ip, Mask: mask})
			continue
		}
		_, ipNet, err := net.ParseCIDR(cidrStr)
		if err != nil {
			return nil, fmt.Errorf("invalid IP/CIDR format: %s (%w)", cidrStr, err)
		}
		cidrs = append(cidrs, ipNet)
	}
	return cidrs, nil
}

// IsIPInAnyCIDR checks if the given IP address falls within any of the provided CIDR ranges.
func IsIPInAnyCIDR(ip net.IP, cidrs []*net.IPNet) bool {
	if ip == nil || len(cidrs) == 0 {
		return false
	}

	for _, cidr := range cidrs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// RemoteIP returns the IP of the direct peer of the request. Forwarding
// headers are ignored: the admin API is reached without proxies.
func RemoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// IsAllowed reports whether the direct peer of r is inside allowed.
func IsAllowed(r *http.Request, allowed []*net.IPNet) bool {
	return IsIPInAnyCIDR(net.ParseIP(RemoteIP(r)), allowed)
}

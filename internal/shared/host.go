package shared

import (
	"net"
	"os"
)

const loopbackHost = "127.0.0.1"

var (
	getHostname   = os.Hostname
	lookupIP      = net.LookupIP
	interfaceAddr = net.InterfaceAddrs
)

// ResolveHost picks the address the capture server binds to.
//
// The configured host wins when use_custom_host is set; otherwise the local machine address is used.
func ResolveHost(c ServerConfig) string {
	if c.UseCustomHost && c.Host != "" {
		return c.Host
	}
	return LocalAddress()
}

// LocalAddress resolves this machine's IPv4 address.
//
// A non-loopback address of the hostname is preferred, then one from the interface list. A loopback address
// of the hostname comes next, and 127.0.0.1 is the last resort.
func LocalAddress() string {
	var hostIPs []net.IP
	if name, err := getHostname(); err == nil {
		if ips, err := lookupIP(name); err == nil {
			hostIPs = ips
		}
	}
	if ip := firstIPv4(hostIPs, false); ip != nil {
		return ip.String()
	}

	if addrs, err := interfaceAddr(); err == nil {
		var ips []net.IP
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				ips = append(ips, ipnet.IP)
			}
		}
		if ip := firstIPv4(ips, false); ip != nil {
			return ip.String()
		}
	}

	if ip := firstIPv4(hostIPs, true); ip != nil {
		return ip.String()
	}
	return loopbackHost
}

// firstIPv4 returns the first non-loopback IPv4 address, or with allowLoopback the first IPv4 of any kind.
func firstIPv4(ips []net.IP, allowLoopback bool) net.IP {
	for _, ip := range ips {
		v4 := ip.To4()
		if v4 == nil {
			continue
		}
		if v4.IsLoopback() && !allowLoopback {
			continue
		}
		return v4
	}
	return nil
}

// internal/extract/client.go
//
// Client extractors: user-agent fingerprint, client IP, and GeoIP country.
//
// Context
// -------
// These wrap the third-party parsers so chain steps and "when" predicates
// can ask for an Agent or a country code like any other argument.  The
// uasurfer API never leaks past this file.
//
// Notes
// -----
//   - Country() reports NoMatch when State.Geo is nil or the database has no
//     record, so predicates built on it simply fall through.
//   - IP resolution trusts X-Forwarded-For and X-Real-IP.  Run behind a proxy
//     that overwrites them.
package extract

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"

	"github.com/yanizio/adept-rest/internal/resterr"
)

// Agent carries the UA attributes predicates care about.
type Agent struct {
	Browser   string
	Version   string
	OS        string
	OSVersion string
	Device    string // Desktop, Mobile, Tablet, or Other
	IsBot     bool
	Raw       string
}

// UserAgent parses the User-Agent header.  A missing header yields an empty
// Agent rather than NoMatch; a client that sends nothing is still a client.
func UserAgent() Extractor[Agent] {
	return Func[Agent](func(rc *Context, _ State) (Agent, error) {
		raw, _ := rc.Header("User-Agent")
		return parseAgent(raw), nil
	})
}

func parseAgent(raw string) Agent {
	if raw == "" {
		return Agent{Device: "Other"}
	}
	ua := surfer.Parse(raw)
	a := Agent{
		Browser:   strings.TrimPrefix(ua.Browser.Name.String(), "Browser"),
		Version:   versionString(ua.Browser.Version),
		OS:        strings.TrimPrefix(ua.OS.Name.String(), "OS"),
		OSVersion: versionString(ua.OS.Version),
		IsBot:     ua.IsBot(),
		Raw:       raw,
	}
	switch ua.DeviceType {
	case surfer.DeviceComputer:
		a.Device = "Desktop"
	case surfer.DeviceTablet:
		a.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		a.Device = "Mobile"
	default:
		a.Device = "Other"
	}
	return a
}

// versionString renders 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return strconv.Itoa(int(v.Major))
	}
}

// ClientIP yields the left-most parseable address from X-Forwarded-For or
// X-Real-Ip, falling back to the request's RemoteAddr.
func ClientIP() Extractor[net.IP] {
	return Func[net.IP](func(rc *Context, _ State) (net.IP, error) {
		if ip := clientIP(rc); ip != nil {
			return ip, nil
		}
		return nil, fmt.Errorf("client ip: %w", resterr.ErrNoMatch)
	})
}

func clientIP(rc *Context) net.IP {
	if xff, ok := rc.Header("X-Forwarded-For"); ok {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip, ok := rc.Header("X-Real-Ip"); ok {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if r := rc.Request(); r != nil {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return net.ParseIP(host)
		}
	}
	return nil
}

// Country yields the ISO country code for the client IP.
func Country() Extractor[string] {
	return Func[string](func(rc *Context, st State) (string, error) {
		if st.Geo == nil {
			return "", fmt.Errorf("country: no geo reader: %w", resterr.ErrNoMatch)
		}
		ip := clientIP(rc)
		if ip == nil {
			return "", fmt.Errorf("country: no client ip: %w", resterr.ErrNoMatch)
		}
		rec, err := st.Geo.Country(ip)
		if err != nil || rec.Country.IsoCode == "" {
			return "", fmt.Errorf("country: no record for %s: %w", ip, resterr.ErrNoMatch)
		}
		return rec.Country.IsoCode, nil
	})
}

// Package useragent extracts the operating system and a best-effort device
// model from a User-Agent header.
package useragent

import (
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
)

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

const unknown = "Other"

type Info struct {
	UA          string
	OSName      string
	OSVersion   string
	DeviceModel string
	DeviceType  string
}

// The bundled regex set is large, so it is compiled on first use.
var parser = sync.OnceValue(func() *uaparser.Parser {
	return uaparser.NewFromSaved()
})

func Parse(ua string) Info {
	info := Info{UA: ua}
	if ua == "" {
		return info
	}

	client := parser().Parse(ua)
	if client.Os != nil && client.Os.Family != unknown {
		info.OSName = osName(client.Os.Family)
		info.OSVersion = joinVersion(client.Os.Major, client.Os.Minor, client.Os.Patch, client.Os.PatchMinor)
	}
	if client.Device != nil {
		info.DeviceModel = deviceModel(client.Device)
	}
	info.DeviceType = deviceType(ua, client)
	return info
}

func osName(family string) string {
	switch family {
	case "Mac OS X", "Mac OS":
		return "macOS"
	}
	return family
}

func joinVersion(parts ...string) string {
	var version []string
	for _, p := range parts {
		if p == "" {
			break
		}
		version = append(version, p)
	}
	return strings.Join(version, ".")
}

func deviceModel(d *uaparser.Device) string {
	switch d.Family {
	case unknown, "Spider", "Generic Smartphone", "Generic Feature Phone", "Generic Tablet":
		return ""
	}
	return d.Model
}

func deviceType(ua string, client *uaparser.Client) string {
	var family, os string
	if client.Device != nil {
		family = client.Device.Family
	}
	if client.Os != nil {
		os = client.Os.Family
	}

	switch {
	case family == "Spider":
		return ""
	case family == "iPad" || containsFold(family, "tablet") || containsFold(ua, "tablet"):
		return DeviceTablet
	case os == "Android":
		// Android browsers drop the Mobile token on tablets.
		if strings.Contains(ua, "Mobile") {
			return DeviceMobile
		}
		return DeviceTablet
	case family == "iPhone" || family == "iPod" || containsFold(family, "smartphone") || strings.Contains(ua, "Mobile"):
		return DeviceMobile
	case (os == "" || os == unknown) && (family == "" || family == unknown):
		return ""
	}
	return DeviceDesktop
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

package enrichment

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

// Device categories.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// Device is what a User-Agent string reveals about the client.
type Device struct {
	Category       string
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	Model          string
	Brand          string
}

// brandPrefixes maps device model prefixes to manufacturers.
var brandPrefixes = []struct {
	prefix string
	brand  string
}{
	{"iphone", "Apple"},
	{"ipad", "Apple"},
	{"ipod", "Apple"},
	{"sm-", "Samsung"},
	{"gt-", "Samsung"},
	{"galaxy", "Samsung"},
	{"pixel", "Google"},
	{"nexus", "Google"},
	{"redmi", "Xiaomi"},
	{"mi ", "Xiaomi"},
	{"poco", "Xiaomi"},
	{"huawei", "Huawei"},
	{"honor", "Honor"},
	{"oneplus", "OnePlus"},
	{"moto", "Motorola"},
	{"nokia", "Nokia"},
	{"lm-", "LG"},
	{"cph", "OPPO"},
	{"rmx", "Realme"},
}

// DeviceDetector parses User-Agent strings.
type DeviceDetector struct{}

func NewDeviceDetector() *DeviceDetector {
	return &DeviceDetector{}
}

// Detect parses uaString. An empty string yields the unknown category.
func (d *DeviceDetector) Detect(uaString string) Device {
	if uaString == "" {
		return Device{Category: DeviceUnknown}
	}

	parsed := ua.Parse(uaString)
	return Device{
		Category:       category(parsed),
		Browser:        parsed.Name,
		BrowserVersion: parsed.Version,
		OS:             parsed.OS,
		OSVersion:      parsed.OSVersion,
		Model:          parsed.Device,
		Brand:          brand(parsed),
	}
}

// brand returns the device manufacturer, or "" when it cannot be told.
func brand(parsed ua.UserAgent) string {
	if parsed.OS == ua.IOS || parsed.OS == ua.MacOS {
		return "Apple"
	}
	model := strings.ToLower(parsed.Device)
	for _, b := range brandPrefixes {
		if strings.HasPrefix(model, b.prefix) {
			return b.brand
		}
	}
	return ""
}

func category(parsed ua.UserAgent) string {
	// bots first: crawlers often also claim to be mobile
	switch {
	case parsed.Bot:
		return DeviceBot
	case parsed.Tablet:
		return DeviceTablet
	case parsed.Mobile:
		return DeviceMobile
	case parsed.Desktop:
		return DeviceDesktop
	}
	return DeviceUnknown
}

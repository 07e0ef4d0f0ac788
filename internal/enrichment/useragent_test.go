package enrichment

import (
	"testing"

	ua "github.com/mileusna/useragent"

	"github.com/stretchr/testify/assert"
)

func TestDeviceDetector_Detect_Categories(t *testing.T) {
	d := NewDeviceDetector()

	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"empty", "", DeviceUnknown},
		{"chrome windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", DeviceDesktop},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", DeviceMobile},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 13_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.3 Mobile/15E148 Safari/604.1", DeviceTablet},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", DeviceBot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.ua).Category)
		})
	}
}

func TestDeviceDetector_Detect_BrowserFields(t *testing.T) {
	d := NewDeviceDetector()

	device := d.Detect("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	assert.Equal(t, "Chrome", device.Browser)
	assert.Equal(t, "120.0.0.0", device.BrowserVersion)
	assert.Equal(t, "Windows", device.OS)
}

func TestDeviceDetector_Detect_Brand(t *testing.T) {
	d := NewDeviceDetector()

	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", "Apple"},
		{"windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.userAgent).Brand)
		})
	}
}

func TestBrand_ModelPrefixes(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"SM-S918B", "Samsung"},
		{"Pixel 8", "Google"},
		{"Redmi Note 12", "Xiaomi"},
		{"CPH2451", "OPPO"},
		{"Unknown Phone", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, brand(ua.UserAgent{OS: ua.Android, Device: tt.model}))
		})
	}
}

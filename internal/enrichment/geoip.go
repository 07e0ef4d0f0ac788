package enrichment

import (
	"net"

	geoip2 "github.com/oschwald/geoip2-golang"
)

// Location is the coarse position of a client IP.
type Location struct {
	Country string
	Region  string
	City    string
}

// GeoIPResolver resolves client IPs with a MaxMind database.
// Both City and Country editions are accepted.
type GeoIPResolver struct {
	db *geoip2.Reader
}

// NewGeoIPResolver opens the database at dbPath.
func NewGeoIPResolver(dbPath string) (*GeoIPResolver, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &GeoIPResolver{db: db}, nil
}

// Close closes the database reader.
func (g *GeoIPResolver) Close() error {
	return g.db.Close()
}

// Lookup returns the location of ipStr. Fields it cannot resolve are empty.
func (g *GeoIPResolver) Lookup(ipStr string) Location {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}
	}

	if city, err := g.db.City(ip); err == nil {
		loc := Location{
			Country: city.Country.IsoCode,
			City:    city.City.Names["en"],
		}
		if len(city.Subdivisions) > 0 {
			loc.Region = city.Subdivisions[0].IsoCode
		}
		return loc
	}

	country, err := g.db.Country(ip)
	if err != nil {
		return Location{}
	}
	return Location{Country: country.Country.IsoCode}
}

// NoopLocator resolves nothing. Used when no database is configured.
type NoopLocator struct{}

func (NoopLocator) Lookup(string) Location { return Location{} }

package format

import (
	"cmp"
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"hitstream/internal/enrichment"
	"hitstream/internal/hits/domain"
	"hitstream/internal/shared/events"

	"github.com/samber/lo"
)

var (
	customDimensionKey = regexp.MustCompile(`^cd(\d{1,3})$`)
	customMetricKey    = regexp.MustCompile(`^cm(\d{1,3})$`)
	promotionKey       = regexp.MustCompile(`^promo(\d{1,3})id$`)
	productKey         = regexp.MustCompile(`^pr(\d{1,3})id$`)
	impressionKey      = regexp.MustCompile(`^il(\d{1,3})pi(\d{1,3})id$`)
)

var actionTypes = map[string]int{
	"click":           domain.ActionClick,
	"detail":          domain.ActionDetail,
	"add":             domain.ActionAdd,
	"remove":          domain.ActionRemove,
	"checkout":        domain.ActionCheckout,
	"purchase":        domain.ActionPurchase,
	"refund":          domain.ActionRefund,
	"checkout_option": domain.ActionCheckoutOption,
}

// Formatter turns collected hits into structured hits.
type Formatter struct {
	devices  *enrichment.DeviceDetector
	channels *enrichment.ChannelClassifier
}

func NewFormatter() *Formatter {
	return &Formatter{
		devices:  enrichment.NewDeviceDetector(),
		channels: enrichment.NewChannelClassifier(),
	}
}

// Format maps the Measurement Protocol parameters of e into a Hit.
func (f *Formatter) Format(e events.CollectedHit) (*domain.Hit, error) {
	p := params(e.Params)
	if p.get("t") == "" {
		return nil, domain.ErrMissingHitType
	}
	if p.get("tid") == "" {
		return nil, domain.ErrMissingTrackerID
	}

	location, _ := url.Parse(p.get("dl"))
	if location == nil {
		location = &url.URL{}
	}

	page := domain.Page{
		Hostname:  location.Hostname(),
		PagePath:  firstNonEmpty(p.get("dp"), location.Path),
		PageTitle: p.get("dt"),
		URL:       p.get("dl"),
		Query:     location.RawQuery,
		Referrer:  p.referrer(),
		LinkID:    p.get("linkId"),
	}

	traffic := trafficSource(p, location)
	traffic.Channel = f.channels.Classify(enrichment.TrafficInput{
		Referrer: traffic.Referrer,
		PageHost: page.Hostname,
		Medium:   traffic.Medium,
		ClickID:  traffic.GclID != "" || traffic.DclID != "",
	})

	return &domain.Hit{
		ServerTimeUTC:    e.ServerTimeUTC,
		ClientID:         p.get("cid"),
		UserID:           p.get("uid"),
		HitType:          strings.ToUpper(p.get("t")),
		IsInteraction:    p.get("ni") != "1",
		CustomDimensions: p.indexed(customDimensionKey),
		CustomMetrics:    p.indexed(customMetricKey),
		Page:             page,
		EventInfo: domain.EventInfo{
			Category: p.get("ec"),
			Action:   p.get("ea"),
			Label:    p.get("el"),
			Value:    parseInt(p.get("ev")),
		},
		Promotions:      promotions(p),
		PromotionAction: promotionAction(p),
		Products:        products(p),
		EcommerceAction: ecommerceAction(p),
		Transaction: domain.Transaction{
			ID:           p.get("ti"),
			Affiliation:  p.get("ta"),
			Revenue:      parseFloat(p.get("tr")),
			Tax:          parseFloat(p.get("tt")),
			Shipping:     parseFloat(p.get("ts")),
			Coupon:       p.get("tcc"),
			CurrencyCode: p.get("cu"),
		},
		TrafficSource: traffic,
		Device:        f.device(p, e.UserAgent),
		Geo: domain.Geo{
			Country: e.Country,
			Region:  e.Region,
			City:    e.City,
		},
		Latency: domain.Latency{
			PageLoadTime:         parseInt(p.get("plt")),
			PageDownloadTime:     parseInt(p.get("pdt")),
			DomainLookupTime:     parseInt(p.get("dns")),
			RedirectionTime:      parseInt(p.get("rrt")),
			ServerResponseTime:   parseInt(p.get("srt")),
			ServerConnectionTime: parseInt(p.get("tcp")),
			DomInteractiveTime:   parseInt(p.get("dit")),
			DomContentLoadedTime: parseInt(p.get("clt")),
		},
		ExperimentID:      p.get("xid"),
		ExperimentVariant: p.get("xvar"),
		TrackingID:        p.get("tid"),
		ContainerID:       p.get("gtm"),
		TagVersion:        p.get("v"),
		CacheBuster:       p.get("z"),
	}, nil
}

func (f *Formatter) device(p params, userAgent string) domain.Device {
	d := f.devices.Detect(userAgent)
	return domain.Device{
		Category:               d.Category,
		ScreenColors:           p.get("sd"),
		ScreenResolution:       p.get("sr"),
		BrowserSize:            p.get("vp"),
		JavaEnabled:            p.get("je") != "0",
		Language:               p.get("ul"),
		DocumentEncoding:       p.get("de"),
		FlashVersion:           p.get("fv"),
		Browser:                d.Browser,
		BrowserVersion:         d.BrowserVersion,
		MobileDeviceModel:      d.Model,
		MobileDeviceBranding:   d.Brand,
		OperatingSystem:        d.OS,
		OperatingSystemVersion: d.OSVersion,
		UserAgent:              userAgent,
	}
}

// trafficSource prefers utm_* tagging on the page URL when utm_source is
// present and falls back to the campaign parameters of the hit.
func trafficSource(p params, location *url.URL) domain.TrafficSource {
	utm := location.Query()
	if utm.Get("utm_source") == "" {
		utm = url.Values{}
	}

	return domain.TrafficSource{
		Campaign:     firstNonEmpty(utm.Get("utm_campaign"), p.get("cn")),
		CampaignCode: firstNonEmpty(utm.Get("utm_id"), p.get("ci")),
		Source:       firstNonEmpty(utm.Get("utm_source"), p.get("cs")),
		Medium:       firstNonEmpty(utm.Get("utm_medium"), p.get("cm")),
		Keyword:      firstNonEmpty(utm.Get("utm_keyword"), p.get("ck")),
		AdContent:    firstNonEmpty(utm.Get("utm_content"), p.get("cc")),
		GclID:        firstNonEmpty(utm.Get("gclid"), p.get("gclid")),
		DclID:        firstNonEmpty(utm.Get("dclid"), p.get("dclid")),
		Referrer:     p.referrer(),
		GclSrc:       firstNonEmpty(utm.Get("gclsrc"), p.get("gclsrc")),
	}
}

func promotions(p params) []domain.Promotion {
	promos := lo.FilterMap(p.keys(), func(key string, _ int) (domain.Promotion, bool) {
		m := promotionKey.FindStringSubmatch(key)
		if m == nil {
			return domain.Promotion{}, false
		}
		prefix := "promo" + m[1]
		return domain.Promotion{
			Index:    atoi(m[1]),
			ID:       p.get(key),
			Name:     p.get(prefix + "nm"),
			Creative: p.get(prefix + "cr"),
			Position: p.get(prefix + "ps"),
		}, true
	})
	slices.SortFunc(promos, func(a, b domain.Promotion) int { return cmp.Compare(a.Index, b.Index) })
	return promos
}

func promotionAction(p params) *domain.PromotionAction {
	if action := p.get("promoa"); action != "" {
		isClick := action == "click"
		return &domain.PromotionAction{IsView: !isClick, IsClick: isClick}
	}
	if lo.SomeBy(p.keys(), promotionKey.MatchString) {
		return &domain.PromotionAction{IsView: true}
	}
	return nil
}

// products returns purchased products by index, then impressions by list and index.
func products(p params) []domain.Product {
	isClick := p.get("pa") == "click"
	var list []domain.Product
	var listIndex = map[int]int{}

	for _, key := range p.keys() {
		if m := productKey.FindStringSubmatch(key); m != nil {
			prefix := "pr" + m[1]
			list = append(list, domain.Product{
				Index:            atoi(m[1]),
				SKU:              p.get(key),
				Name:             p.get(prefix + "nm"),
				Brand:            p.get(prefix + "br"),
				Category:         p.get(prefix + "ca"),
				Variant:          p.get(prefix + "va"),
				Price:            p.get(prefix + "pr"),
				Quantity:         p.get(prefix + "qt"),
				CouponCode:       p.get(prefix + "cc"),
				CustomDimensions: p.indexed(regexp.MustCompile(`^` + prefix + `cd(\d{1,3})$`)),
				CustomMetrics:    p.indexed(regexp.MustCompile(`^` + prefix + `cm(\d{1,3})$`)),
				ListName:         p.get("pal"),
				ListPosition:     p.get(prefix + "ps"),
				IsClick:          isClick,
			})
			continue
		}

		if m := impressionKey.FindStringSubmatch(key); m != nil {
			prefix := "il" + m[1] + "pi" + m[2]
			list = append(list, domain.Product{
				Index:            atoi(m[2]),
				SKU:              p.get(key),
				Name:             p.get(prefix + "nm"),
				Brand:            p.get(prefix + "br"),
				Category:         p.get(prefix + "ca"),
				Variant:          p.get(prefix + "va"),
				Price:            p.get(prefix + "pr"),
				CustomDimensions: p.indexed(regexp.MustCompile(`^` + prefix + `cd(\d{1,3})$`)),
				CustomMetrics:    p.indexed(regexp.MustCompile(`^` + prefix + `cm(\d{1,3})$`)),
				ListName:         p.get("il" + m[1] + "nm"),
				ListPosition:     p.get(prefix + "ps"),
				IsImpression:     true,
				IsClick:          isClick,
			})
			listIndex[len(list)-1] = atoi(m[1])
		}
	}

	// sort a permutation so the list index stays attached to its product
	order := make([]int, len(list))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		pa, pb := list[a], list[b]
		if pa.IsImpression != pb.IsImpression {
			if pa.IsImpression {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(listIndex[a], listIndex[b]); c != 0 {
			return c
		}
		return cmp.Compare(pa.Index, pb.Index)
	})

	return lo.Map(order, func(i int, _ int) domain.Product { return list[i] })
}

func ecommerceAction(p params) *domain.EcommerceAction {
	name := p.get("pa")
	if name == "" {
		return nil
	}
	return &domain.EcommerceAction{
		ActionType: actionTypes[name],
		Name:       name,
		Step:       parseInt(p.get("cos")),
		Option:     p.get("col"),
	}
}

type params map[string]string

func (p params) get(key string) string {
	return p[key]
}

func (p params) keys() []string {
	return lo.Keys(p)
}

// referrer prefers the document referrer sent by the tag over the one
// appended by the duplicator.
func (p params) referrer() string {
	return firstNonEmpty(p.get("dr"), p.get("referrer"))
}

// indexed collects the parameters whose key matches re, ordered by the
// index captured by its first group.
func (p params) indexed(re *regexp.Regexp) []domain.IndexedValue {
	values := lo.FilterMap(p.keys(), func(key string, _ int) (domain.IndexedValue, bool) {
		m := re.FindStringSubmatch(key)
		if m == nil {
			return domain.IndexedValue{}, false
		}
		return domain.IndexedValue{Index: atoi(m[1]), Value: p.get(key)}, true
	})
	slices.SortFunc(values, func(a, b domain.IndexedValue) int { return cmp.Compare(a.Index, b.Index) })
	return values
}

func firstNonEmpty(values ...string) string {
	v, _ := lo.Coalesce(values...)
	return v
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseInt(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// parseFloat rejects NaN and infinities, which JSON cannot carry.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

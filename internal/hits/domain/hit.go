package domain

// Hit is a collected Measurement Protocol hit in its structured form.
// Optional numbers are nil when absent or unparseable.
type Hit struct {
	ServerTimeUTC     int64            `json:"serverTimeUtc"`
	ClientID          string           `json:"clientId,omitempty"`
	UserID            string           `json:"userId,omitempty"`
	HitType           string           `json:"hitType"`
	IsInteraction     bool             `json:"isInteraction"`
	CustomDimensions  []IndexedValue   `json:"customDimensions"`
	CustomMetrics     []IndexedValue   `json:"customMetrics"`
	Page              Page             `json:"page"`
	EventInfo         EventInfo        `json:"eventInfo"`
	Promotions        []Promotion      `json:"promotion"`
	PromotionAction   *PromotionAction `json:"promotionAction"`
	Products          []Product        `json:"product"`
	EcommerceAction   *EcommerceAction `json:"ecommerceAction"`
	Transaction       Transaction      `json:"transaction"`
	TrafficSource     TrafficSource    `json:"trafficSource"`
	Device            Device           `json:"device"`
	Geo               Geo              `json:"geo"`
	Latency           Latency          `json:"latencyTracking"`
	ExperimentID      string           `json:"experimentId,omitempty"`
	ExperimentVariant string           `json:"experimentVariant,omitempty"`
	TrackingID        string           `json:"trackingId"`
	ContainerID       string           `json:"containerId,omitempty"`
	TagVersion        string           `json:"tagVersion,omitempty"`
	CacheBuster       string           `json:"cacheBuster,omitempty"`
}

// IndexedValue is a custom dimension or metric slot.
type IndexedValue struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

type Page struct {
	Hostname  string `json:"hostname,omitempty"`
	PagePath  string `json:"pagePath,omitempty"`
	PageTitle string `json:"pageTitle,omitempty"`
	URL       string `json:"url,omitempty"`
	Query     string `json:"query,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	LinkID    string `json:"linkId,omitempty"`
}

type EventInfo struct {
	Category string `json:"eventCategory,omitempty"`
	Action   string `json:"eventAction,omitempty"`
	Label    string `json:"eventLabel,omitempty"`
	Value    *int64 `json:"eventValue"`
}

type Promotion struct {
	Index    int    `json:"promoIndex"`
	ID       string `json:"promoId"`
	Name     string `json:"promoName,omitempty"`
	Creative string `json:"promoCreative,omitempty"`
	Position string `json:"promoPosition,omitempty"`
}

type PromotionAction struct {
	IsView  bool `json:"promoIsView"`
	IsClick bool `json:"promoIsClick"`
}

type Product struct {
	Index            int            `json:"productIndex"`
	SKU              string         `json:"productSKU,omitempty"`
	Name             string         `json:"productName,omitempty"`
	Brand            string         `json:"productBrand,omitempty"`
	Category         string         `json:"productCategory,omitempty"`
	Variant          string         `json:"productVariant,omitempty"`
	Price            string         `json:"productPrice,omitempty"`
	Quantity         string         `json:"productQuantity,omitempty"`
	CouponCode       string         `json:"productCouponCode,omitempty"`
	CustomDimensions []IndexedValue `json:"customDimensions"`
	CustomMetrics    []IndexedValue `json:"customMetrics"`
	ListName         string         `json:"productListName,omitempty"`
	ListPosition     string         `json:"productListPosition,omitempty"`
	IsImpression     bool           `json:"isImpression"`
	IsClick          bool           `json:"isClick"`
}

// Ecommerce action types, numbered as in the Measurement Protocol reporting schema.
const (
	ActionUnknown        = 0
	ActionClick          = 1
	ActionDetail         = 2
	ActionAdd            = 3
	ActionRemove         = 4
	ActionCheckout       = 5
	ActionPurchase       = 6
	ActionRefund         = 7
	ActionCheckoutOption = 8
)

type EcommerceAction struct {
	ActionType int    `json:"action_type"`
	Name       string `json:"name"`
	Step       *int64 `json:"step"`
	Option     string `json:"option,omitempty"`
}

type Transaction struct {
	ID           string   `json:"transactionId,omitempty"`
	Affiliation  string   `json:"affiliation,omitempty"`
	Revenue      *float64 `json:"transactionRevenue"`
	Tax          *float64 `json:"transactionTax"`
	Shipping     *float64 `json:"transactionShipping"`
	Coupon       string   `json:"transactionCoupon,omitempty"`
	CurrencyCode string   `json:"currencyCode,omitempty"`
}

type TrafficSource struct {
	Campaign     string `json:"campaign,omitempty"`
	CampaignCode string `json:"campaignCode,omitempty"`
	Source       string `json:"source,omitempty"`
	Medium       string `json:"medium,omitempty"`
	Keyword      string `json:"keyword,omitempty"`
	AdContent    string `json:"adContent,omitempty"`
	GclID        string `json:"gclId,omitempty"`
	DclID        string `json:"dclId,omitempty"`
	Referrer     string `json:"referrer,omitempty"`
	GclSrc       string `json:"gclSrc,omitempty"`
	Channel      string `json:"channel"`
}

type Device struct {
	Category               string `json:"deviceCategory"`
	ScreenColors           string `json:"screenColors,omitempty"`
	ScreenResolution       string `json:"screenResolution,omitempty"`
	BrowserSize            string `json:"browserSize,omitempty"`
	JavaEnabled            bool   `json:"javaEnabled"`
	Language               string `json:"language,omitempty"`
	DocumentEncoding       string `json:"documentEncoding,omitempty"`
	FlashVersion           string `json:"flashVersion,omitempty"`
	Browser                string `json:"browser,omitempty"`
	BrowserVersion         string `json:"browserVersion,omitempty"`
	MobileDeviceModel      string `json:"mobileDeviceModel,omitempty"`
	MobileDeviceBranding   string `json:"mobileDeviceBranding,omitempty"`
	OperatingSystem        string `json:"operatingSystem,omitempty"`
	OperatingSystemVersion string `json:"operatingSystemVersion,omitempty"`
	UserAgent              string `json:"userAgent,omitempty"`
}

type Geo struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

// Latency holds page timing values in milliseconds.
type Latency struct {
	PageLoadTime         *int64 `json:"pageLoadTime"`
	PageDownloadTime     *int64 `json:"pageDownloadTime"`
	DomainLookupTime     *int64 `json:"domainLookupTime"`
	RedirectionTime      *int64 `json:"redirectionTime"`
	ServerResponseTime   *int64 `json:"serverResponseTime"`
	ServerConnectionTime *int64 `json:"serverConnectionTime"`
	DomInteractiveTime   *int64 `json:"domInteractiveTime"`
	DomContentLoadedTime *int64 `json:"domContentLoadedTime"`
}

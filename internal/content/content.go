// Package content holds the static sections of the site: hero, amenities,
// gallery, excursions and the payment method list.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"casatorpe/internal/config"
)

// AllCategories is the filter value that disables category filtering.
const AllCategories = "Tutte"

//go:embed site.yaml
var siteYAML []byte

type Hero struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Image    string `yaml:"image"`
}

type Amenity struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type GalleryImage struct {
	URL      string `yaml:"url"`
	Alt      string `yaml:"alt"`
	Category string `yaml:"category"`
}

type Excursion struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Distance    string `yaml:"distance"`
	Category    string `yaml:"category"`
	Duration    string `yaml:"duration"`
}

type Site struct {
	Hero       Hero           `yaml:"hero"`
	Amenities  []Amenity      `yaml:"amenities"`
	Gallery    []GalleryImage `yaml:"gallery"`
	Excursions []Excursion    `yaml:"excursions"`
}

// Load parses the embedded site content.
func Load() (*Site, error) {
	return Parse(siteYAML)
}

func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("content: parse site: %w", err)
	}
	if strings.TrimSpace(site.Hero.Title) == "" {
		return nil, errors.New("content: hero title is required")
	}
	for i, ex := range site.Excursions {
		if ex.Name == "" || ex.Category == "" {
			return nil, fmt.Errorf("content: excursion %d needs a name and a category", i)
		}
	}
	return &site, nil
}

// FilterGallery returns the images in category; "" or "Tutte" returns all.
func (s *Site) FilterGallery(category string) []GalleryImage {
	if isAll(category) {
		return s.Gallery
	}
	out := make([]GalleryImage, 0, len(s.Gallery))
	for _, img := range s.Gallery {
		if img.Category == category {
			out = append(out, img)
		}
	}
	return out
}

// FilterExcursions returns the excursions in category; "" or "Tutte" returns all.
func (s *Site) FilterExcursions(category string) []Excursion {
	if isAll(category) {
		return s.Excursions
	}
	out := make([]Excursion, 0, len(s.Excursions))
	for _, ex := range s.Excursions {
		if ex.Category == category {
			out = append(out, ex)
		}
	}
	return out
}

// GalleryCategories lists "Tutte" followed by the distinct non-empty image
// categories in first-seen order.
func (s *Site) GalleryCategories() []string {
	cats := make([]string, 0, len(s.Gallery))
	for _, img := range s.Gallery {
		cats = append(cats, img.Category)
	}
	return Categories(cats)
}

func (s *Site) ExcursionCategories() []string {
	cats := make([]string, 0, len(s.Excursions))
	for _, ex := range s.Excursions {
		cats = append(cats, ex.Category)
	}
	return Categories(cats)
}

// Categories prepends "Tutte" to the distinct non-empty values, keeping the
// order in which they first appear.
func Categories(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := []string{AllCategories}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func isAll(category string) bool {
	category = strings.TrimSpace(category)
	return category == "" || category == AllCategories
}

// depositAmount is the EUR amount the PayPal buttons charge.
const depositAmount = "100.00"

// PaymentOption is one payment method shown to guests. Exactly one of Link,
// Address or Checkout is set.
type PaymentOption struct {
	ID       string
	Name     string
	Icon     string
	Link     string
	Address  string
	Network  string
	Checkout *ScriptCheckout
}

// ScriptCheckout is a checkout rendered in the page by a provider script
// rather than reached through a link.
type ScriptCheckout struct {
	SDKURL string
	Amount string
}

// PaymentOptions lists the methods whose client id, link or address is
// configured, in a fixed order.
func PaymentOptions(cfg config.Config) []PaymentOption {
	var out []PaymentOption
	if id := cfg.PayPalClientID; id != "" {
		out = append(out, PaymentOption{
			ID:   "paypal",
			Name: "PayPal",
			Icon: "💳",
			Checkout: &ScriptCheckout{
				SDKURL: "https://www.paypal.com/sdk/js?client-id=" + url.QueryEscape(id) + "&currency=EUR",
				Amount: depositAmount,
			},
		})
	}
	if cfg.RevolutPaymentLink != "" {
		out = append(out, PaymentOption{ID: "revolut", Name: "Revolut", Icon: "💷", Link: cfg.RevolutPaymentLink})
	}
	crypto := []struct {
		id, name, icon, address, network string
	}{
		{"bitcoin", "Bitcoin", "₿", cfg.BTCAddress, "Bitcoin Network"},
		{"ethereum", "Ethereum", "Ξ", cfg.ETHAddress, "Ethereum Network (ERC-20)"},
		{"usdt", "USDT", "₮", cfg.USDTAddress, "Ethereum Network (ERC-20)"},
	}
	for _, c := range crypto {
		if c.address == "" {
			continue
		}
		out = append(out, PaymentOption{ID: c.id, Name: c.name, Icon: c.icon, Address: c.address, Network: c.network})
	}
	return out
}

package models

import (
	"encoding/base64"
	"fmt"
)

// Storage keys for the store credentials
const (
	KeyShopURL  = "shopifyShopUrl"
	KeyAPIToken = "shopifyApiToken"
)

// Settings holds the credentials used to publish to the store
type Settings struct {
	ShopURL  string `json:"shopifyShopUrl" bson:"shopifyShopUrl"`
	APIToken string `json:"shopifyApiToken" bson:"shopifyApiToken"`
}

// Configured reports whether both credentials are present
func (s Settings) Configured() bool {
	return s.ShopURL != "" && s.APIToken != ""
}

// Masked returns a copy safe to show back to users
func (s Settings) Masked() Settings {
	if len(s.APIToken) <= 4 {
		if s.APIToken != "" {
			s.APIToken = "****"
		}
		return s
	}
	s.APIToken = "****" + s.APIToken[len(s.APIToken)-4:]
	return s
}

// InlineImage is image bytes with their media type
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// DataURL encodes the image as a data: URL
func (i InlineImage) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

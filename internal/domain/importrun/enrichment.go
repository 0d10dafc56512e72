package importrun

import (
	"github.com/tidwall/gjson"
)

type EnrichmentKind string

const (
	EnrichmentSuccess            EnrichmentKind = "success"
	EnrichmentNotFound           EnrichmentKind = "not_found"
	EnrichmentInvalidLanguage    EnrichmentKind = "invalid_language"
	EnrichmentNetworkUnreachable EnrichmentKind = "network_unreachable"
	EnrichmentUnknownFailure     EnrichmentKind = "unknown_failure"
)

// Reason is the diagnostic text logged for a failed classification.
func (k EnrichmentKind) Reason() string {
	switch k {
	case EnrichmentNotFound:
		return "product not found"
	case EnrichmentInvalidLanguage:
		return "invalid language"
	case EnrichmentNetworkUnreachable:
		return "could not resolve host"
	case EnrichmentUnknownFailure:
		return "product not found"
	default:
		return ""
	}
}

// API response fields used for classification.
const (
	responseMessagePath   = "msg"
	responseStatusPath    = "statusCode"
	responseCatalogIDPath = "data.GeneralInfo.IcecatId"
	responseGTINPath      = "data.GeneralInfo.GTIN.0"

	ResponseHostFailureKey = "COULD_NOT_RESOLVE_HOST"

	statusProductNotFound = 4
	statusInvalidLanguage = 2
)

// EnrichmentResult is a classified API response. Only Success results carry
// CatalogID, OriginalGTIN and Payload.
type EnrichmentResult struct {
	Kind         EnrichmentKind
	Language     string
	URL          string
	CatalogID    string
	OriginalGTIN string
	Payload      []byte
	Detail       string
}

func (r EnrichmentResult) OK() bool {
	return r.Kind == EnrichmentSuccess
}

// Classify maps a raw response body to exactly one result kind. Precedence is
// msg == "OK", then statusCode 4 / 2, then the host failure indicator, then unknown.
func Classify(body string, language string) EnrichmentResult {
	result := EnrichmentResult{Kind: EnrichmentUnknownFailure, Language: language}
	if !gjson.Valid(body) {
		result.Detail = "response is not valid json"
		return result
	}

	parsed := gjson.Parse(body)
	if !parsed.IsObject() {
		result.Detail = "response is not a json object"
		return result
	}

	if msg := parsed.Get(responseMessagePath); msg.Exists() && msg.String() == "OK" {
		catalogID := parsed.Get(responseCatalogIDPath)
		if !catalogID.Exists() || catalogID.String() == "" {
			result.Detail = "response has no catalog id"
			return result
		}
		result.Kind = EnrichmentSuccess
		result.CatalogID = catalogID.String()
		result.OriginalGTIN = parsed.Get(responseGTINPath).String()
		result.Payload = []byte(body)
		return result
	}

	if status := parsed.Get(responseStatusPath); status.Exists() {
		switch status.Int() {
		case statusProductNotFound:
			result.Kind = EnrichmentNotFound
			return result
		case statusInvalidLanguage:
			result.Kind = EnrichmentInvalidLanguage
			return result
		}
		result.Detail = "unexpected status code " + status.String()
	}

	if parsed.Get(ResponseHostFailureKey).Exists() {
		result.Kind = EnrichmentNetworkUnreachable
		result.Detail = ""
		return result
	}

	return result
}

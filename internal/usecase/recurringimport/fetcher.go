package recurringimport

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
	"icecatimport/internal/ports"
)

// EnrichmentFetcher builds the request for a key and classifies the response.
type EnrichmentFetcher struct {
	http    ports.HTTPFetcher
	baseURL string
}

func NewEnrichmentFetcher(http ports.HTTPFetcher, baseURL string) EnrichmentFetcher {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return EnrichmentFetcher{http: http, baseURL: base}
}

// BuildURL orders parameters as UserName, Language, then GTIN or Brand and ProductCode.
func (f EnrichmentFetcher) BuildURL(key importrun.IdentityKey, language string, loginUser string) string {
	var b strings.Builder
	b.WriteString(f.baseURL)
	if strings.Contains(f.baseURL, "?") {
		b.WriteString("&")
	} else {
		b.WriteString("?")
	}

	b.WriteString("UserName=")
	b.WriteString(url.QueryEscape(loginUser))
	b.WriteString("&Language=")
	b.WriteString(url.QueryEscape(language))
	if key.IsGTIN() {
		b.WriteString("&GTIN=")
		b.WriteString(url.QueryEscape(key.GTIN()))
	} else {
		b.WriteString("&Brand=")
		b.WriteString(url.QueryEscape(key.Brand()))
		b.WriteString("&ProductCode=")
		b.WriteString(url.QueryEscape(key.ProductCode()))
	}
	return b.String()
}

// Fetch performs one attempt. Transport errors and panics become UnknownFailure.
func (f EnrichmentFetcher) Fetch(ctx context.Context, key importrun.IdentityKey, language string, loginUser string) (result importrun.EnrichmentResult) {
	requestURL := f.BuildURL(key, language, loginUser)

	defer func() {
		if r := recover(); r != nil {
			result = unknownFailure(requestURL, language, errs.FromPanic(r))
		}
	}()

	if f.http == nil {
		return unknownFailure(requestURL, language, errors.New("http fetcher is not configured"))
	}

	body, err := f.http.Fetch(ctx, requestURL)
	if err != nil {
		return unknownFailure(requestURL, language, err)
	}

	result = importrun.Classify(body, language)
	result.URL = requestURL
	return result
}

func unknownFailure(requestURL string, language string, err error) importrun.EnrichmentResult {
	return importrun.EnrichmentResult{
		Kind:     importrun.EnrichmentUnknownFailure,
		Language: language,
		URL:      requestURL,
		Detail:   err.Error(),
	}
}

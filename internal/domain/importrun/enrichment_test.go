package importrun

import "testing"

func TestClassifySuccessExtractsIdentifiers(t *testing.T) {
	body := `{"msg":"OK","data":{"GeneralInfo":{"IcecatId":"999","GTIN":["0123456789012"]}}}`

	got := Classify(body, "EN")
	if got.Kind != EnrichmentSuccess {
		t.Fatalf("Classify() kind = %q, want success", got.Kind)
	}
	if got.CatalogID != "999" {
		t.Fatalf("CatalogID = %q, want 999", got.CatalogID)
	}
	if got.OriginalGTIN != "0123456789012" {
		t.Fatalf("OriginalGTIN = %q", got.OriginalGTIN)
	}
	if string(got.Payload) != body {
		t.Fatalf("Payload = %q", got.Payload)
	}
	if got.Language != "EN" {
		t.Fatalf("Language = %q", got.Language)
	}
}

func TestClassifyNumericCatalogID(t *testing.T) {
	got := Classify(`{"msg":"OK","data":{"GeneralInfo":{"IcecatId":81234,"GTIN":[]}}}`, "DE")
	if got.Kind != EnrichmentSuccess || got.CatalogID != "81234" || got.OriginalGTIN != "" {
		t.Fatalf("Classify() = %+v", got)
	}
}

func TestClassifyPrecedence(t *testing.T) {
	cases := []struct {
		name string
		body string
		want EnrichmentKind
	}{
		{name: "not found", body: `{"statusCode":4}`, want: EnrichmentNotFound},
		{name: "not found as string", body: `{"statusCode":"4"}`, want: EnrichmentNotFound},
		{name: "invalid language", body: `{"statusCode":2}`, want: EnrichmentInvalidLanguage},
		{name: "host failure", body: `{"COULD_NOT_RESOLVE_HOST":"dns lookup failed"}`, want: EnrichmentNetworkUnreachable},
		{name: "msg before status", body: `{"msg":"OK","statusCode":4,"data":{"GeneralInfo":{"IcecatId":"1","GTIN":["1"]}}}`, want: EnrichmentSuccess},
		{name: "status before host failure", body: `{"statusCode":2,"COULD_NOT_RESOLVE_HOST":true}`, want: EnrichmentInvalidLanguage},
		{name: "other status falls to host failure", body: `{"statusCode":9,"COULD_NOT_RESOLVE_HOST":true}`, want: EnrichmentNetworkUnreachable},
		{name: "msg not ok", body: `{"msg":"Error","statusCode":4}`, want: EnrichmentNotFound},
		{name: "ok without catalog id", body: `{"msg":"OK","data":{}}`, want: EnrichmentUnknownFailure},
		{name: "other status", body: `{"statusCode":7}`, want: EnrichmentUnknownFailure},
		{name: "empty object", body: `{}`, want: EnrichmentUnknownFailure},
		{name: "array", body: `[1,2]`, want: EnrichmentUnknownFailure},
		{name: "not json", body: `<html>502</html>`, want: EnrichmentUnknownFailure},
		{name: "empty body", body: ``, want: EnrichmentUnknownFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.body, "EN")
			if got.Kind != tc.want {
				t.Fatalf("Classify(%s) kind = %q, want %q", tc.body, got.Kind, tc.want)
			}
			if got.Kind != EnrichmentSuccess && (got.CatalogID != "" || got.Payload != nil) {
				t.Fatalf("non-success result carries payload: %+v", got)
			}
		})
	}
}

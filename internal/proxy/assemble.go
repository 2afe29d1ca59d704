package proxy

//
// Assembling the final response
//

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	oohttp "github.com/ooni/oohttp"
	"github.com/wirescope/wirescope/internal/certinfo"
	"github.com/wirescope/wirescope/internal/decompress"
	"github.com/wirescope/wirescope/internal/model"
)

// executionSummary contains the information about the execution that
// does not come from the final response.
type executionSummary struct {
	Chain           []model.RedirectHop
	Hostname        string
	Now             time.Time
	Port            string
	RequestBodySize *int
	RequestHeaders  map[string]string
	ResolvedIPs     []string
	ServerIP        string
	Timing          model.TimingInfo
	TLS             *certinfo.Captured
	URL             string
}

// textContentTypes contains the substrings identifying textual content.
var textContentTypes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/javascript",
	"application/x-javascript",
	"application/ecmascript",
	"application/x-www-form-urlencoded",
	"+json",
	"+xml",
}

// isTextContent returns whether we should return the body as text. A
// missing content type counts as text.
func isTextContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	lower := strings.ToLower(contentType)
	for _, pattern := range textContentTypes {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// headersSize estimates the size of the response headers on the wire
// including the status line.
func headersSize(proto string, code int, headers map[string]string) int {
	statusLine := fmt.Sprintf("%s %d %s", proto, code, oohttp.StatusText(code))
	size := len(statusLine) + 2
	for key, value := range headers {
		size += len(key) + 2 + len(value) + 2
	}
	return size
}

// assemble builds the successful response from the final response, its
// raw body and the summary of the execution.
func assemble(resp *oohttp.Response, raw []byte, summary *executionSummary) *model.ProxyResponse {
	headers := flattenHeaders(resp.Header)
	encoding, hasEncoding := headers["content-encoding"]
	body, err := decompress.Decompress(raw, encoding)
	if err != nil {
		return model.NewErrorResponse(model.ErrCodeDecompression, err.Error())
	}

	data := &model.ResponseData{
		Status:         uint16(resp.StatusCode),
		StatusText:     oohttp.StatusText(resp.StatusCode),
		Headers:        headers,
		RequestHeaders: summary.RequestHeaders,
		Size:           len(body),
		Timing:         summary.Timing,
		URL:            summary.URL,
		Redirected:     len(summary.Chain) > 0,
		RedirectChain:  summary.Chain,
		ResolvedIPs:    summary.ResolvedIPs,
	}
	if isTextContent(headers["content-type"]) {
		data.Body = strings.ToValidUTF8(string(body), "\uFFFD")
	} else {
		encoded := base64.StdEncoding.EncodeToString(body)
		data.BodyBase64 = &encoded
		data.IsBinary = true
	}

	headerSize := headersSize(resp.Proto, resp.StatusCode, headers)
	sizes := &model.SizeBreakdown{
		Headers: headerSize,
		Body:    len(body),
		Total:   headerSize + len(body),
	}
	if hasEncoding {
		compressed, uncompressed := len(raw), len(body)
		sizes.Compressed = &compressed
		sizes.Uncompressed = &uncompressed
		sizes.Encoding = &encoding
		if uncompressed > 0 {
			ratio := float64(compressed) / float64(uncompressed)
			sizes.CompressionRatio = &ratio
		}
	}
	data.SizeBreakdown = sizes

	if summary.TLS != nil {
		data.TLS = newTLSInfo(summary.TLS, summary.Now)
	}
	if summary.ServerIP != "" {
		data.ServerIP = &summary.ServerIP
	}
	if resp.Proto != "" {
		data.Protocol = &resp.Proto
	}
	if value, found := headers["connection"]; found {
		data.Connection = &value
	}
	if value, found := headers["server"]; found {
		data.ServerSoftware = &value
	}
	fromCache, resourceType := false, "fetch"
	data.FromCache = &fromCache
	data.ResourceType = &resourceType
	data.RequestBodySize = summary.RequestBodySize
	hostname, port := summary.Hostname, summary.Port
	data.Hostname, data.Port = &hostname, &port
	return model.NewSuccessResponse(data)
}

// newTLSInfo converts the captured certificate information.
func newTLSInfo(captured *certinfo.Captured, now time.Time) *model.TLSInfo {
	info := &model.TLSInfo{
		Protocol: &captured.Protocol,
		Cipher:   &captured.Cipher,
		SANs:     captured.SANs,
	}
	if captured.Issuer != "" {
		info.Issuer = &captured.Issuer
	}
	if captured.Subject != "" {
		info.Subject = &captured.Subject
	}
	if captured.ValidFrom > 0 || captured.ValidTo > 0 {
		valid := certinfo.IsValid(captured.ValidFrom, captured.ValidTo, now)
		info.ValidFrom = &captured.ValidFrom
		info.ValidTo = &captured.ValidTo
		info.Valid = &valid
	}
	return info
}

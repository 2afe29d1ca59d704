package model

//
// Request execution data model. The JSON field names are the ones
// expected by the browser extension and the web UI.
//

// ProxyRequest describes the request to execute.
type ProxyRequest struct {
	// Method is the MANDATORY HTTP method (case insensitive).
	Method string `json:"method"`

	// URL is the MANDATORY absolute URL.
	URL string `json:"url"`

	// Headers contains OPTIONAL request headers.
	Headers map[string]string `json:"headers,omitempty"`

	// Body is the OPTIONAL request body.
	Body *string `json:"body,omitempty"`

	// Timeout is the OPTIONAL per-operation timeout in milliseconds.
	Timeout *uint64 `json:"timeout,omitempty"`
}

// TimingInfo contains the per-phase durations in milliseconds.
type TimingInfo struct {
	Total    uint64  `json:"total"`
	DNS      *uint64 `json:"dns,omitempty"`
	TCP      *uint64 `json:"tcp,omitempty"`
	TLS      *uint64 `json:"tls,omitempty"`
	TTFB     *uint64 `json:"ttfb,omitempty"`
	Download *uint64 `json:"download,omitempty"`
	Blocked  *uint64 `json:"blocked,omitempty"`
}

// RedirectHop describes a redirect we followed.
type RedirectHop struct {
	URL      string            `json:"url"`
	Status   uint16            `json:"status"`
	Duration uint64            `json:"duration"`
	Headers  map[string]string `json:"headers,omitempty"`
	Opaque   *bool             `json:"opaque,omitempty"`
	Message  *string           `json:"message,omitempty"`
}

// TLSInfo describes the TLS session and the leaf certificate of the first hop.
type TLSInfo struct {
	Protocol  *string  `json:"protocol,omitempty"`
	Cipher    *string  `json:"cipher,omitempty"`
	Issuer    *string  `json:"issuer,omitempty"`
	Subject   *string  `json:"subject,omitempty"`
	ValidFrom *uint64  `json:"validFrom,omitempty"`
	ValidTo   *uint64  `json:"validTo,omitempty"`
	Valid     *bool    `json:"valid,omitempty"`
	SANs      []string `json:"sans,omitempty"`
}

// SizeBreakdown contains the response size information.
type SizeBreakdown struct {
	Headers          int      `json:"headers"`
	Body             int      `json:"body"`
	Total            int      `json:"total"`
	Compressed       *int     `json:"compressed,omitempty"`
	Uncompressed     *int     `json:"uncompressed,omitempty"`
	Encoding         *string  `json:"encoding,omitempty"`
	CompressionRatio *float64 `json:"compressionRatio,omitempty"`
}

// ResponseData is the data returned on success.
type ResponseData struct {
	Status          uint16            `json:"status"`
	StatusText      string            `json:"statusText"`
	Headers         map[string]string `json:"headers"`
	RequestHeaders  map[string]string `json:"requestHeaders,omitempty"`
	Body            string            `json:"body"`
	BodyBase64      *string           `json:"bodyBase64,omitempty"`
	IsBinary        bool              `json:"isBinary"`
	Size            int               `json:"size"`
	Timing          TimingInfo        `json:"timing"`
	URL             string            `json:"url"`
	Redirected      bool              `json:"redirected"`
	RedirectChain   []RedirectHop     `json:"redirectChain,omitempty"`
	TLS             *TLSInfo          `json:"tls,omitempty"`
	SizeBreakdown   *SizeBreakdown    `json:"sizeBreakdown,omitempty"`
	ServerIP        *string           `json:"serverIp,omitempty"`
	Protocol        *string           `json:"protocol,omitempty"`
	FromCache       *bool             `json:"fromCache,omitempty"`
	ResourceType    *string           `json:"resourceType,omitempty"`
	RequestBodySize *int              `json:"requestBodySize,omitempty"`
	Connection      *string           `json:"connection,omitempty"`
	ServerSoftware  *string           `json:"serverSoftware,omitempty"`
	Hostname        *string           `json:"hostname,omitempty"`
	Port            *string           `json:"port,omitempty"`
	ResolvedIPs     []string          `json:"resolvedIps,omitempty"`
}

// ErrorData is the data returned on failure.
type ErrorData struct {
	Message string  `json:"message"`
	Code    string  `json:"code"`
	Name    *string `json:"name,omitempty"`
}

// ProxyResponse is the result of executing a ProxyRequest. Exactly one
// of Data and Error is set: use NewSuccessResponse and NewErrorResponse
// to construct instances of this struct.
type ProxyResponse struct {
	Success bool          `json:"success"`
	Data    *ResponseData `json:"data,omitempty"`
	Error   *ErrorData    `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful ProxyResponse.
func NewSuccessResponse(data *ResponseData) *ProxyResponse {
	return &ProxyResponse{Success: true, Data: data}
}

// NewErrorResponse creates a failed ProxyResponse.
func NewErrorResponse(code, message string) *ProxyResponse {
	return &ProxyResponse{
		Success: false,
		Error: &ErrorData{
			Message: message,
			Code:    code,
		},
	}
}

// These are the error codes that may appear inside ErrorData.Code.
const (
	ErrCodeInvalidURL       = "INVALID_URL"
	ErrCodeInvalidMethod    = "INVALID_METHOD"
	ErrCodeDNS              = "DNS_ERROR"
	ErrCodeConnectionFailed = "CONNECTION_FAILED"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeTLS              = "TLS_ERROR"
	ErrCodeHTTP             = "HTTP_ERROR"
	ErrCodeRequestFailed    = "REQUEST_FAILED"
	ErrCodeBodyRead         = "BODY_READ_ERROR"
	ErrCodeTooManyRedirects = "TOO_MANY_REDIRECTS"
	ErrCodeDecompression    = "DECOMPRESSION_ERROR"
	ErrCodeRequestBuild     = "REQUEST_BUILD_ERROR"
	ErrCodeProxyDisabled    = "PROXY_DISABLED"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeRateLimited      = "RATE_LIMITED"
)

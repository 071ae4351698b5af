// The http plugin performs outbound HTTP requests on behalf of a host. The
// timeout parameter bounds the request itself; nothing else in the process
// blocks, so no further cancellation plumbing is needed.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattjoyce/sprocket/internal/log"
	"github.com/mattjoyce/sprocket/internal/protocol"
	"github.com/mattjoyce/sprocket/internal/sdk"
)

const defaultTimeoutSeconds = 30

func main() {
	log.Setup(os.Getenv("SPROCKET_LOG_LEVEL"))
	newPlugin().Main()
}

func newPlugin() *sdk.Plugin {
	p := sdk.New(protocol.Metadata{
		Name:        "http",
		Version:     "1.0.0",
		Description: "HTTP client for REST API calls and web requests",
		Author:      "Sprocket Team",
		Tags:        []string{"http", "web", "api", "rest"},
	})

	outputs := map[string]protocol.ParamSpec{
		"status_code": {Type: protocol.TypeNumber, Description: "HTTP status code"},
		"headers":     {Type: protocol.TypeObject, Description: "Response headers"},
		"body":        {Type: protocol.TypeString, Description: "Response body"},
	}

	p.Register("get", protocol.ActionSpec{
		Description: "Perform HTTP GET request",
		Inputs: map[string]protocol.ParamSpec{
			"url":     {Type: protocol.TypeString, Required: true, Description: "URL to request"},
			"headers": {Type: protocol.TypeObject, Description: "Request headers"},
			"timeout": {Type: protocol.TypeNumber, Default: defaultTimeoutSeconds, Description: "Request timeout in seconds"},
		},
		Outputs: outputs,
	}, func(params sdk.Params) (protocol.Result, error) {
		return doRequest(http.MethodGet, params)
	})

	p.Register("post", protocol.ActionSpec{
		Description: "Perform HTTP POST request",
		Inputs: map[string]protocol.ParamSpec{
			"url":     {Type: protocol.TypeString, Required: true, Description: "URL to request"},
			"body":    {Type: protocol.TypeString, Description: "Request body"},
			"headers": {Type: protocol.TypeObject, Description: "Request headers"},
			"timeout": {Type: protocol.TypeNumber, Default: defaultTimeoutSeconds, Description: "Request timeout in seconds"},
		},
		Outputs: outputs,
	}, func(params sdk.Params) (protocol.Result, error) {
		return doRequest(http.MethodPost, params)
	})

	return p
}

// httpRequest is the typed shape of the get/post action inputs.
type httpRequest struct {
	url     string
	body    string
	headers map[string]string
	timeout time.Duration
}

func parseRequest(params sdk.Params) (httpRequest, error) {
	url, err := params.String("url")
	if err != nil {
		return httpRequest{}, err
	}

	headers := make(map[string]string)
	for k, v := range params.ObjectDefault("headers") {
		headers[k] = fmt.Sprintf("%v", v)
	}

	seconds := params.NumberDefault("timeout", defaultTimeoutSeconds)
	if seconds <= 0 {
		seconds = defaultTimeoutSeconds
	}

	return httpRequest{
		url:     url,
		body:    params.StringDefault("body", ""),
		headers: headers,
		timeout: time.Duration(seconds * float64(time.Second)),
	}, nil
}

func doRequest(method string, params sdk.Params) (protocol.Result, error) {
	req, err := parseRequest(params)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if method != http.MethodGet {
		bodyReader = strings.NewReader(req.body)
	}

	httpReq, err := http.NewRequest(method, req.url, bodyReader)
	if err != nil {
		return nil, err
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	client := &http.Client{Timeout: req.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	respHeaders := make(map[string]any, len(resp.Header))
	for k, vs := range resp.Header {
		respHeaders[k] = strings.Join(vs, ", ")
	}

	return protocol.Result{
		"status_code": resp.StatusCode,
		"headers":     respHeaders,
		"body":        string(respBody),
	}, nil
}

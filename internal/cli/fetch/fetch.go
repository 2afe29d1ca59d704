// Package fetch implements the fetch subcommand.
package fetch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/montanaflynn/stats"
	"github.com/wirescope/wirescope/internal/cli/root"
	"github.com/wirescope/wirescope/internal/log/handlers/cli"
	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
)

// errInvalidHeader indicates that a -H argument is not in the "Name: value" form.
var errInvalidHeader = errors.New("invalid header: expected 'Name: value'")

// executor executes requests.
type executor interface {
	Execute(ctx context.Context, req *model.ProxyRequest) *model.ProxyResponse
}

func init() {
	cmd := root.Command("fetch", "Execute a request and print the annotated result.")
	method := cmd.Flag("request", "HTTP method (default GET, or POST with --data)").Short('X').String()
	headers := cmd.Flag("header", "Add a 'Name: value' request header").Short('H').Strings()
	data := cmd.Flag("data", "Request body").Short('d').String()
	timeout := cmd.Flag("timeout", "Per-operation timeout in milliseconds").Uint64()
	count := cmd.Flag("count", "Execute the request this many times and summarize timing").Short('c').Default("1").Int()
	tlsVersion := cmd.Flag("tls-version", "Force the TLS version (TLSv1.2 or TLSv1.3)").String()
	url := cmd.Arg("url", "The URL to fetch").Required().String()

	cmd.Action(func(_ *kingpin.ParseContext) error {
		cfg, err := root.Init()
		if err != nil {
			log.WithError(err).Error("cannot load the configuration")
			return err
		}
		req, err := newRequest(*method, *url, *headers, *data, *timeout)
		if err != nil {
			log.WithError(err).Error("invalid request")
			return err
		}
		ex := root.NewExecutor(cfg, log.Log)
		if *tlsVersion != "" {
			config := &tls.Config{}
			if err := netxlite.ConfigureTLSVersion(config, *tlsVersion); err != nil {
				log.WithError(err).Errorf("cannot use %s", *tlsVersion)
				return err
			}
			ex.TLSConfig = config
		}
		return run(context.Background(), ex, req, *count, os.Stdout)
	})
}

// newRequest creates the request from the command line arguments.
func newRequest(method, url string, headers []string, data string, timeout uint64) (*model.ProxyRequest, error) {
	req := &model.ProxyRequest{
		Method: method,
		URL:    url,
	}
	if req.Method == "" {
		req.Method = "GET"
		if data != "" {
			req.Method = "POST"
		}
	}
	for _, header := range headers {
		name, value, found := strings.Cut(header, ":")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidHeader, header)
		}
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Headers[name] = strings.TrimSpace(value)
	}
	if data != "" {
		req.Body = &data
	}
	if timeout > 0 {
		req.Timeout = &timeout
	}
	return req, nil
}

// run executes the request count times, prints the last result as
// JSON and, when count is larger than one, logs a timing summary.
func run(ctx context.Context, ex executor, req *model.ProxyRequest, count int, w io.Writer) error {
	if count < 1 {
		count = 1
	}
	var responses []*model.ProxyResponse
	for idx := 0; idx < count; idx++ {
		resp := ex.Execute(ctx, req)
		if !resp.Success {
			log.Warnf("#%d: %s: %s", idx+1, resp.Error.Code, resp.Error.Message)
		} else {
			log.Debugf("#%d: %d %s in %dms", idx+1, resp.Data.Status, resp.Data.StatusText, resp.Data.Timing.Total)
		}
		responses = append(responses, resp)
	}
	data, err := json.MarshalIndent(responses[len(responses)-1], "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", data)
	if count > 1 {
		log.WithFields(summarize(responses)).Info("timing summary")
	}
	return nil
}

// summarize computes the fields of the timing_summary typed log.
func summarize(responses []*model.ProxyResponse) log.Fields {
	phases := []struct {
		name  string
		value func(*model.TimingInfo) *uint64
	}{
		{"dns", func(ti *model.TimingInfo) *uint64 { return ti.DNS }},
		{"tcp", func(ti *model.TimingInfo) *uint64 { return ti.TCP }},
		{"tls", func(ti *model.TimingInfo) *uint64 { return ti.TLS }},
		{"ttfb", func(ti *model.TimingInfo) *uint64 { return ti.TTFB }},
		{"download", func(ti *model.TimingInfo) *uint64 { return ti.Download }},
		{"total", func(ti *model.TimingInfo) *uint64 { return &ti.Total }},
	}
	var (
		failures int
		rows     []cli.SummaryRow
		sizes    stats.Float64Data
	)
	samples := make([]stats.Float64Data, len(phases))
	for _, resp := range responses {
		if !resp.Success {
			failures++
			continue
		}
		sizes = append(sizes, float64(resp.Data.Size))
		for idx, phase := range phases {
			if value := phase.value(&resp.Data.Timing); value != nil {
				samples[idx] = append(samples[idx], float64(*value))
			}
		}
	}
	for idx, phase := range phases {
		if row, ok := newSummaryRow(phase.name, samples[idx]); ok {
			rows = append(rows, row)
		}
	}
	fields := log.Fields{
		"type":     "timing_summary",
		"requests": len(responses),
		"failures": failures,
		"rows":     rows,
	}
	if size, err := sizes.Median(); err == nil {
		fields["size"] = size
	}
	return fields
}

// newSummaryRow computes the statistics of the given samples.
func newSummaryRow(phase string, data stats.Float64Data) (cli.SummaryRow, bool) {
	if data.Len() <= 0 {
		return cli.SummaryRow{}, false
	}
	row := cli.SummaryRow{Phase: phase}
	row.Min, _ = data.Min()
	row.Median, _ = data.Median()
	row.P90, _ = stats.PercentileNearestRank(data, 90)
	row.Max, _ = data.Max()
	return row, true
}
